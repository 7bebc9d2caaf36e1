package models

import (
	"strings"
	"time"
)

type User struct {
	ID                     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email                  string `gorm:"unique;not null" json:"email"`
	Username               string `gorm:"unique;not null" json:"username"`
	PasswordHash           string `gorm:"not null" json:"-"` // json:"-" prevents password from being exposed in API
	ProfilePic             string `json:"profile_pic"`
	Verified               bool   `gorm:"default:false" json:"verified"`
	EmailVerificationToken string `json:"-"`
	AdminLinked            bool   `gorm:"default:false" json:"admin_linked"` // set while an Admin shares this email
	Badges                 string `gorm:"type:text" json:"badges"`           // comma-joined badge slugs
}

type Admin struct {
	ID                     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email                  string `gorm:"unique;not null" json:"email"`
	PasswordHash           string `gorm:"not null" json:"-"`
	Permissions            string `gorm:"type:text" json:"permissions"` // comma-joined Permission names
	RequiresPasswordChange bool   `gorm:"default:false" json:"requires_password_change"`
	Default                bool   `gorm:"default:false" json:"default"` // seeded account; never deletable, email fixed
}

type BlogPost struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"` // markdown
	AuthorID  uint      `gorm:"index" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	Comments  []Comment `gorm:"foreignKey:PostID" json:"comments"`
}

// Comment authorship is tagged: staff comments carry Staff=true with
// AuthorID zero and render as the server staff voice, never as a user.
type Comment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	AuthorID  uint      `json:"author_id"`
	Staff     bool      `gorm:"default:false" json:"staff"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type UserPost struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Badge struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug        string `gorm:"unique;not null;index" json:"slug"`
	Name        string `gorm:"not null" json:"name"`
	Emoji       string `json:"emoji"`
	Description string `gorm:"type:text" json:"description"`
}

// SiteConfig is a single row; each field group is gated by its own
// admin permission (styles, content, shop, settings).
type SiteConfig struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	HomeContent    string `gorm:"type:text" json:"home_content"`
	ShopEnabled    bool   `gorm:"default:false" json:"shop_enabled"`
	SftpHost       string `json:"sftp_host"`
	SftpPort       string `json:"sftp_port"`
	SftpUser       string `json:"sftp_user"`
	SftpPass       string `json:"-"`
}

// Permission is one of the nine admin capabilities. Every mutating
// staff operation is gated by exactly one of them.
type Permission string

const (
	ManageContent    Permission = "manageContent"
	ManageStyles     Permission = "manageStyles"
	ManageBlogs      Permission = "manageBlogs"
	ManageUsers      Permission = "manageUsers"
	ManageAdmins     Permission = "manageAdmins"
	ManageSettings   Permission = "manageSettings"
	ManageShop       Permission = "manageShop"
	ManageBadges     Permission = "manageBadges"
	ModerateComments Permission = "moderateComments"
)

// AllPermissions lists every capability in the order the console shows them.
var AllPermissions = []Permission{
	ManageContent, ManageStyles, ManageBlogs, ManageUsers, ManageAdmins,
	ManageSettings, ManageShop, ManageBadges, ModerateComments,
}

// AdminBadgeSlug is the protected badge granted to admin-linked users.
// It cannot be deleted and is only revoked by unlinking the admin account.
const AdminBadgeSlug = "badge_admin"

func (a *Admin) HasPermission(p Permission) bool {
	for _, have := range strings.Split(a.Permissions, ",") {
		if Permission(strings.TrimSpace(have)) == p {
			return true
		}
	}
	return false
}

func (a *Admin) SetPermissions(perms []Permission) {
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, string(p))
	}
	a.Permissions = strings.Join(names, ",")
}

func (a *Admin) PermissionList() []Permission {
	var perms []Permission
	for _, name := range strings.Split(a.Permissions, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			perms = append(perms, Permission(name))
		}
	}
	return perms
}

// ParsePermission validates a capability name from a form or API payload.
func ParsePermission(name string) (Permission, bool) {
	for _, p := range AllPermissions {
		if string(p) == name {
			return p, true
		}
	}
	return "", false
}

func (u *User) BadgeSlugs() []string {
	var slugs []string
	for _, s := range strings.Split(u.Badges, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			slugs = append(slugs, s)
		}
	}
	return slugs
}

func (u *User) HasBadge(slug string) bool {
	for _, s := range u.BadgeSlugs() {
		if s == slug {
			return true
		}
	}
	return false
}

// AddBadge is a no-op if the user already holds the badge.
func (u *User) AddBadge(slug string) {
	if u.HasBadge(slug) {
		return
	}
	u.Badges = strings.Join(append(u.BadgeSlugs(), slug), ",")
}

func (u *User) RemoveBadge(slug string) {
	var kept []string
	for _, s := range u.BadgeSlugs() {
		if s != slug {
			kept = append(kept, s)
		}
	}
	u.Badges = strings.Join(kept, ",")
}
