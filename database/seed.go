package database

import (
	"log"
	"os"
	"time"

	"github.com/NXINGNICK/whitegate/common"
	"github.com/NXINGNICK/whitegate/models"

	"gorm.io/gorm"
)

// SeedDefaults creates the records the site cannot run without: the
// default admin account, the protected admin badge and the site
// configuration row. It is idempotent and safe to run on every start.
func SeedDefaults(db *gorm.DB) error {
	if err := seedDefaultAdmin(db); err != nil {
		return err
	}
	if err := seedBadges(db); err != nil {
		return err
	}
	return seedSiteConfig(db)
}

func seedDefaultAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Admin{}).Where("`default` = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := defaultAdminEmail()
	password := os.Getenv("DEFAULT_ADMIN_PASSWORD")
	if password == "" {
		password = "adminpassword"
	}

	hash, err := common.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.Admin{
		Email:        email,
		PasswordHash: hash,
		// The seeded credential is a bootstrap secret; force a change
		// (or a successor account) before normal console use.
		RequiresPasswordChange: true,
		Default:                true,
	}
	admin.SetPermissions(models.AllPermissions)

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	// Link a user account sharing the default admin's email, if present.
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err == nil {
		user.AdminLinked = true
		user.AddBadge(models.AdminBadgeSlug)
		if err := db.Save(&user).Error; err != nil {
			return err
		}
	}

	log.Printf("seeded default admin account %s (password change required)", email)
	return nil
}

func defaultAdminEmail() string {
	email := os.Getenv("DEFAULT_ADMIN_EMAIL")
	if email == "" {
		email = "admin@mmpcs.net"
	}
	return email
}

func seedBadges(db *gorm.DB) error {
	var badge models.Badge
	err := db.Where("slug = ?", models.AdminBadgeSlug).First(&badge).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	return db.Create(&models.Badge{
		Slug:        models.AdminBadgeSlug,
		Name:        "Server Admin",
		Emoji:       "👑",
		Description: "Official Server Administrator.",
	}).Error
}

func seedSiteConfig(db *gorm.DB) error {
	var cfg models.SiteConfig
	err := db.First(&cfg).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	return db.Create(&models.SiteConfig{
		PrimaryColor:   "blue-600",
		SecondaryColor: "green-500",
		HomeContent:    "Welcome to our Minecraft server! Grab your pickaxe and join us.",
		ShopEnabled:    false,
		SftpPort:       "22",
	}).Error
}

// SeedSampleContent fills an empty site with the demo records shown on
// a fresh install: a verified player, the admin-linked staff profile,
// an Early Bird badge, two blog posts with a comment thread and one
// community post. Skipped entirely once any user exists.
func SeedSampleContent(db *gorm.DB) error {
	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return nil
	}

	earlyBird := models.Badge{
		Slug:        "early_bird",
		Name:        "Early Bird",
		Emoji:       "🐦",
		Description: "Joined during the first week.",
	}
	if err := db.Where("slug = ?", earlyBird.Slug).FirstOrCreate(&earlyBird).Error; err != nil {
		return err
	}

	hash, err := common.HashPassword("changeme")
	if err != nil {
		return err
	}

	player := models.User{
		Email:        "test@example.com",
		Username:     "TestUser",
		PasswordHash: hash,
		Verified:     true,
		Badges:       "early_bird",
	}
	if err := db.Create(&player).Error; err != nil {
		return err
	}

	// The staff profile sharing the default admin's email: linked,
	// badged, and the author of the seeded posts.
	staff := models.User{
		Email:        defaultAdminEmail(),
		Username:     "AdminLink",
		PasswordHash: hash,
		Verified:     true,
		AdminLinked:  true,
	}
	staff.AddBadge(models.AdminBadgeSlug)
	staff.AddBadge(earlyBird.Slug)
	if err := db.Create(&staff).Error; err != nil {
		return err
	}

	welcome := models.BlogPost{
		Title:     "Welcome to the Server!",
		Content:   "This is the first blog post. Enjoy your stay!",
		AuthorID:  staff.ID,
		CreatedAt: time.Now(),
	}
	if err := db.Create(&welcome).Error; err != nil {
		return err
	}

	update := models.BlogPost{
		Title:     "New Update v1.1",
		Content:   "We have updated the server with new features.",
		AuthorID:  staff.ID,
		CreatedAt: time.Now(),
	}
	if err := db.Create(&update).Error; err != nil {
		return err
	}

	comments := []models.Comment{
		{PostID: update.ID, AuthorID: player.ID, Content: "Great update!", CreatedAt: time.Now()},
		{PostID: update.ID, Staff: true, Content: "Glad you like it!", CreatedAt: time.Now()},
	}
	if err := db.Create(&comments).Error; err != nil {
		return err
	}

	return db.Create(&models.UserPost{
		AuthorID:  player.ID,
		Content:   "Having fun mining!",
		CreatedAt: time.Now(),
	}).Error
}
