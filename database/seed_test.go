package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/NXINGNICK/whitegate/common"
	"github.com/NXINGNICK/whitegate/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, RunMigrations(db))
	return db
}

func TestSeedDefaults(t *testing.T) {
	db := setupTestDB(t)

	assert.NoError(t, SeedDefaults(db))

	var admin models.Admin
	assert.NoError(t, db.Where("`default` = ?", true).First(&admin).Error)
	assert.Equal(t, "admin@mmpcs.net", admin.Email)
	assert.True(t, admin.RequiresPasswordChange)
	assert.True(t, common.CheckPasswordHash("adminpassword", admin.PasswordHash))
	for _, p := range models.AllPermissions {
		assert.True(t, admin.HasPermission(p))
	}

	var badge models.Badge
	assert.NoError(t, db.Where("slug = ?", models.AdminBadgeSlug).First(&badge).Error)

	var cfg models.SiteConfig
	assert.NoError(t, db.First(&cfg).Error)
	assert.False(t, cfg.ShopEnabled)
	assert.Equal(t, "blue-600", cfg.PrimaryColor)
}

func TestSeedDefaults_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	assert.NoError(t, SeedDefaults(db))
	assert.NoError(t, SeedDefaults(db))

	var admins, badges, configs int64
	db.Model(&models.Admin{}).Count(&admins)
	db.Model(&models.Badge{}).Count(&badges)
	db.Model(&models.SiteConfig{}).Count(&configs)
	assert.Equal(t, int64(1), admins)
	assert.Equal(t, int64(1), badges)
	assert.Equal(t, int64(1), configs)
}

func TestMigrations_AutoIncrementPrimaryKeys(t *testing.T) {
	db := setupTestDB(t)

	first := models.User{Email: "a@example.com", Username: "A", PasswordHash: "x"}
	second := models.User{Email: "b@example.com", Username: "B", PasswordHash: "x"}
	assert.NoError(t, db.Create(&first).Error)
	assert.NoError(t, db.Create(&second).Error)

	assert.NotZero(t, first.ID)
	assert.Equal(t, first.ID+1, second.ID)
}

func TestSeedSampleContent_SkippedWhenUsersExist(t *testing.T) {
	db := setupTestDB(t)

	db.Create(&models.User{Email: "steve@example.com", Username: "Steve", PasswordHash: "x", Verified: true})

	assert.NoError(t, SeedSampleContent(db))

	var posts int64
	db.Model(&models.BlogPost{}).Count(&posts)
	assert.Equal(t, int64(0), posts)
}

func TestSeedSampleContent(t *testing.T) {
	db := setupTestDB(t)

	assert.NoError(t, SeedDefaults(db))
	assert.NoError(t, SeedSampleContent(db))

	var player models.User
	assert.NoError(t, db.Where("email = ?", "test@example.com").First(&player).Error)
	assert.True(t, player.Verified)
	assert.True(t, player.HasBadge("early_bird"))

	var posts, comments, userPosts int64
	db.Model(&models.BlogPost{}).Count(&posts)
	db.Model(&models.Comment{}).Count(&comments)
	db.Model(&models.UserPost{}).Count(&userPosts)
	assert.Equal(t, int64(2), posts)
	assert.Equal(t, int64(2), comments)
	assert.Equal(t, int64(1), userPosts)
}

func TestSeedSampleContent_AdminLinkedProfile(t *testing.T) {
	db := setupTestDB(t)

	assert.NoError(t, SeedDefaults(db))
	assert.NoError(t, SeedSampleContent(db))

	var staff models.User
	assert.NoError(t, db.Where("admin_linked = ?", true).First(&staff).Error)
	assert.Equal(t, "admin@mmpcs.net", staff.Email)
	assert.True(t, staff.Verified)
	assert.True(t, staff.HasBadge(models.AdminBadgeSlug))
	assert.True(t, staff.HasBadge("early_bird"))

	var seeded []models.BlogPost
	assert.NoError(t, db.Find(&seeded).Error)
	assert.Len(t, seeded, 2)
	for _, post := range seeded {
		assert.Equal(t, staff.ID, post.AuthorID)
	}
}
