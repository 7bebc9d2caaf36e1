package admin

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/NXINGNICK/whitegate/cache"
	"github.com/NXINGNICK/whitegate/common"
	"github.com/NXINGNICK/whitegate/models"
)

type AdminModule struct {
	db *gorm.DB
}

func NewAdminModule(db *gorm.DB) *AdminModule {
	return &AdminModule{db: db}
}

func (a *AdminModule) RegisterRoutes(router *gin.Engine) {
	// Reserved entry route: the admin login is reached directly, never
	// linked from normal navigation.
	router.GET("/adminlogin", a.loginPage)
	router.POST("/adminlogin", a.loginPost)
	router.GET("/admin", a.adminRoot)

	adminGroup := router.Group("/admin")
	adminGroup.Use(a.requireAdmin)
	{
		adminGroup.GET("/dashboard", a.dashboard)
		adminGroup.POST("/content", a.updateContent)
		adminGroup.POST("/styles", a.updateStyles)
		adminGroup.POST("/settings", a.updateSettings)
		adminGroup.POST("/shop/toggle", a.toggleShop)

		adminGroup.GET("/blogs", a.blogsPage)
		adminGroup.POST("/blogs", a.createBlog)
		adminGroup.DELETE("/blogs/:id", a.deleteBlog)

		adminGroup.GET("/admins", a.adminsPage)
		adminGroup.POST("/admins", a.createAdmin)
		adminGroup.POST("/admins/:id", a.updateAdmin)
		adminGroup.DELETE("/admins/:id", a.deleteAdmin)

		adminGroup.GET("/badges", a.badgesPage)
		adminGroup.POST("/badges", a.createBadge)
		adminGroup.POST("/badges/:id", a.updateBadge)
		adminGroup.DELETE("/badges/:id", a.deleteBadge)

		adminGroup.GET("/users", a.usersPage)
		adminGroup.POST("/users/:id/badges", a.assignBadge)
		adminGroup.DELETE("/users/:id/badges/:slug", a.removeBadge)
	}

	router.GET("/admin/logout", a.logout)
}

func (a *AdminModule) requireAdmin(c *gin.Context) {
	adminID, ok := common.CurrentAdminID(c)
	if !ok {
		c.Redirect(http.StatusFound, "/adminlogin")
		c.Abort()
		return
	}

	var admin models.Admin
	if err := a.db.First(&admin, adminID).Error; err != nil {
		common.ClearSession(c)
		c.Redirect(http.StatusFound, "/adminlogin")
		c.Abort()
		return
	}

	c.Set("admin", &admin)
	c.Next()
}

// gate is the authorization predicate every mutating staff operation
// consults before touching any registry.
func gate(actor *models.Admin, p models.Permission) error {
	if actor == nil || !actor.HasPermission(p) {
		return common.ErrPermissionDenied
	}
	return nil
}

// Authenticate checks credentials against the admin registry.
func (a *AdminModule) Authenticate(email, password string) (*models.Admin, error) {
	var admin models.Admin
	if err := a.db.Where("email = ?", email).First(&admin).Error; err != nil {
		return nil, common.ErrInvalidCredentials
	}
	if !common.CheckPasswordHash(password, admin.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}
	return &admin, nil
}

// CreateAdmin adds an admin account. A user sharing the new email is
// linked and granted the admin badge. If the acting admin is the
// default account still on its seeded credential, creating a successor
// clears its password-change flag and invalidates the seeded password.
func (a *AdminModule) CreateAdmin(actor *models.Admin, email, password string, perms []models.Permission) (*models.Admin, error) {
	if err := gate(actor, models.ManageAdmins); err != nil {
		return nil, err
	}
	if email == "" || password == "" {
		return nil, common.ErrMissingFields
	}

	var existing models.Admin
	err := a.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, common.ErrDuplicateAdminEmail
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hash, err := common.HashPassword(password)
	if err != nil {
		return nil, err
	}

	admin := models.Admin{
		Email:        email,
		PasswordHash: hash,
	}
	admin.SetPermissions(perms)
	if err := a.db.Create(&admin).Error; err != nil {
		return nil, err
	}

	if err := a.linkUserByEmail(email); err != nil {
		return nil, err
	}

	if actor.Default && actor.RequiresPasswordChange {
		actor.RequiresPasswordChange = false
		// The seeded credential is retired once a successor exists.
		actor.PasswordHash = ""
		if err := a.db.Save(actor).Error; err != nil {
			return nil, err
		}
	}

	return &admin, nil
}

// UpdateAdmin edits an admin account. The default admin's email is
// fixed. A password change must match its confirmation; an admin
// changing its own password clears its password-change flag. Changing
// the email moves the admin link from the old user to the new one.
func (a *AdminModule) UpdateAdmin(actor *models.Admin, id uint, newEmail, newPassword, confirm string, perms []models.Permission) error {
	if err := gate(actor, models.ManageAdmins); err != nil {
		return err
	}

	var admin models.Admin
	if err := a.db.First(&admin, id).Error; err != nil {
		return common.ErrNotFound
	}
	if newEmail == "" {
		return common.ErrMissingFields
	}
	if admin.Default && newEmail != admin.Email {
		return common.ErrProtectedAccount
	}
	if newEmail != admin.Email {
		var existing models.Admin
		err := a.db.Where("email = ? AND id <> ?", newEmail, id).First(&existing).Error
		if err == nil {
			return common.ErrDuplicateAdminEmail
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
	}

	if newPassword != "" {
		if newPassword != confirm {
			return common.ErrPasswordMismatch
		}
		hash, err := common.HashPassword(newPassword)
		if err != nil {
			return err
		}
		admin.PasswordHash = hash
		if actor.ID == admin.ID && admin.RequiresPasswordChange {
			admin.RequiresPasswordChange = false
		}
	}

	oldEmail := admin.Email
	admin.Email = newEmail
	admin.SetPermissions(perms)

	if err := a.db.Save(&admin).Error; err != nil {
		return err
	}

	if oldEmail != newEmail {
		if err := a.unlinkUserByEmail(oldEmail); err != nil {
			return err
		}
		if err := a.linkUserByEmail(newEmail); err != nil {
			return err
		}
	}

	if actor.ID == admin.ID {
		*actor = admin
	}
	return nil
}

// DeleteAdmin removes an admin account. The last remaining admin and
// the default account are never deletable, whoever asks.
func (a *AdminModule) DeleteAdmin(actor *models.Admin, id uint) error {
	if err := gate(actor, models.ManageAdmins); err != nil {
		return err
	}

	var admin models.Admin
	if err := a.db.First(&admin, id).Error; err != nil {
		return common.ErrNotFound
	}

	var count int64
	if err := a.db.Model(&models.Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count <= 1 {
		return common.ErrLastAdmin
	}
	if admin.Default {
		return common.ErrProtectedAccount
	}

	if err := a.db.Delete(&admin).Error; err != nil {
		return err
	}
	return a.unlinkUserByEmail(admin.Email)
}

func (a *AdminModule) linkUserByEmail(email string) error {
	var user models.User
	err := a.db.Where("email = ?", email).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	user.AdminLinked = true
	user.AddBadge(models.AdminBadgeSlug)
	return a.db.Save(&user).Error
}

func (a *AdminModule) unlinkUserByEmail(email string) error {
	var user models.User
	err := a.db.Where("email = ?", email).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	user.AdminLinked = false
	user.RemoveBadge(models.AdminBadgeSlug)
	return a.db.Save(&user).Error
}

// CreateBadge mints a badge, deriving a unique slug from its name.
func (a *AdminModule) CreateBadge(actor *models.Admin, name, emoji, description string) (*models.Badge, error) {
	if err := gate(actor, models.ManageBadges); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" || emoji == "" {
		return nil, common.ErrMissingFields
	}

	slug := generateSlug(name)
	base := slug
	for n := 2; ; n++ {
		var existing models.Badge
		if err := a.db.Where("slug = ?", slug).First(&existing).Error; err == gorm.ErrRecordNotFound {
			break
		}
		slug = base + "-" + strconv.Itoa(n)
	}

	badge := models.Badge{
		Slug:        slug,
		Name:        name,
		Emoji:       emoji,
		Description: description,
	}
	if err := a.db.Create(&badge).Error; err != nil {
		return nil, err
	}
	return &badge, nil
}

func (a *AdminModule) UpdateBadge(actor *models.Admin, id uint, name, emoji, description string) error {
	if err := gate(actor, models.ManageBadges); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" || emoji == "" {
		return common.ErrMissingFields
	}

	var badge models.Badge
	if err := a.db.First(&badge, id).Error; err != nil {
		return common.ErrNotFound
	}
	badge.Name = name
	badge.Emoji = emoji
	badge.Description = description
	return a.db.Save(&badge).Error
}

// DeleteBadge removes a badge and cascades the removal through every
// user's badge set. The admin badge is protected.
func (a *AdminModule) DeleteBadge(actor *models.Admin, id uint) error {
	if err := gate(actor, models.ManageBadges); err != nil {
		return err
	}

	var badge models.Badge
	if err := a.db.First(&badge, id).Error; err != nil {
		return common.ErrNotFound
	}
	if badge.Slug == models.AdminBadgeSlug {
		return common.ErrProtectedBadge
	}

	if err := a.db.Delete(&badge).Error; err != nil {
		return err
	}

	var users []models.User
	if err := a.db.Find(&users).Error; err != nil {
		return err
	}
	for i := range users {
		if users[i].HasBadge(badge.Slug) {
			users[i].RemoveBadge(badge.Slug)
			if err := a.db.Save(&users[i]).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *AdminModule) AssignBadge(actor *models.Admin, userID uint, slug string) error {
	if err := gate(actor, models.ManageUsers); err != nil {
		return err
	}

	var badge models.Badge
	if err := a.db.Where("slug = ?", slug).First(&badge).Error; err != nil {
		return common.ErrNotFound
	}
	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		return common.ErrNotFound
	}

	user.AddBadge(slug)
	return a.db.Save(&user).Error
}

// RemoveUserBadge takes a badge off a user. The admin badge of a
// currently linked user is only removed via admin management.
func (a *AdminModule) RemoveUserBadge(actor *models.Admin, userID uint, slug string) error {
	if err := gate(actor, models.ManageUsers); err != nil {
		return err
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		return common.ErrNotFound
	}
	if slug == models.AdminBadgeSlug && user.AdminLinked {
		return common.ErrUseAdminManagement
	}

	user.RemoveBadge(slug)
	return a.db.Save(&user).Error
}

// CreateBlogPost publishes a post attributed to the user account linked
// to the acting admin, when one exists.
func (a *AdminModule) CreateBlogPost(actor *models.Admin, title, content string) (*models.BlogPost, error) {
	if err := gate(actor, models.ManageBlogs); err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, common.ErrMissingFields
	}

	var authorID uint
	var linked models.User
	if err := a.db.Where("email = ?", actor.Email).First(&linked).Error; err == nil {
		authorID = linked.ID
	}

	post := models.BlogPost{
		Title:     title,
		Content:   content,
		AuthorID:  authorID,
		CreatedAt: time.Now(),
	}
	if err := a.db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (a *AdminModule) DeleteBlogPost(actor *models.Admin, id uint) error {
	if err := gate(actor, models.ManageBlogs); err != nil {
		return err
	}

	result := a.db.Delete(&models.BlogPost{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound
	}

	if err := a.db.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	if err := cache.ClearCache(id); err != nil {
		log.Printf("failed to clear post cache for %d: %v", id, err)
	}
	return nil
}

func (a *AdminModule) siteConfig() (*models.SiteConfig, error) {
	var cfg models.SiteConfig
	if err := a.db.First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ToggleShop flips shop visibility and returns the new state.
func (a *AdminModule) ToggleShop(actor *models.Admin) (bool, error) {
	if err := gate(actor, models.ManageShop); err != nil {
		return false, err
	}
	cfg, err := a.siteConfig()
	if err != nil {
		return false, err
	}
	cfg.ShopEnabled = !cfg.ShopEnabled
	if err := a.db.Save(cfg).Error; err != nil {
		return false, err
	}
	return cfg.ShopEnabled, nil
}

func (a *AdminModule) UpdateStyles(actor *models.Admin, primary, secondary string) error {
	if err := gate(actor, models.ManageStyles); err != nil {
		return err
	}
	cfg, err := a.siteConfig()
	if err != nil {
		return err
	}
	cfg.PrimaryColor = primary
	cfg.SecondaryColor = secondary
	return a.db.Save(cfg).Error
}

func (a *AdminModule) UpdateHomeContent(actor *models.Admin, content string) error {
	if err := gate(actor, models.ManageContent); err != nil {
		return err
	}
	cfg, err := a.siteConfig()
	if err != nil {
		return err
	}
	cfg.HomeContent = content
	return a.db.Save(cfg).Error
}

// UpdateSftpConfig captures the SFTP settings verbatim; nothing is
// validated or transmitted here.
func (a *AdminModule) UpdateSftpConfig(actor *models.Admin, host, port, user, pass string) error {
	if err := gate(actor, models.ManageSettings); err != nil {
		return err
	}
	cfg, err := a.siteConfig()
	if err != nil {
		return err
	}
	cfg.SftpHost = host
	cfg.SftpPort = port
	cfg.SftpUser = user
	if pass != "" {
		cfg.SftpPass = pass
	}
	return a.db.Save(cfg).Error
}

func generateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		if r == ' ' || r == '_' {
			return '-'
		}
		return -1
	}, slug)

	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	if slug == "" {
		slug = "badge"
	}
	return slug
}
