package blog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/NXINGNICK/whitegate/common"
	"github.com/NXINGNICK/whitegate/models"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.AutoMigrate(&models.User{}, &models.Admin{}, &models.BlogPost{}, &models.Comment{})
	return db
}

func createTestPost(db *gorm.DB, title string) *models.BlogPost {
	post := &models.BlogPost{Title: title, Content: "Hello **world**", CreatedAt: time.Now()}
	db.Create(post)
	return post
}

func TestAddUserComment(t *testing.T) {
	db := setupTestDB()
	b := NewBlogModule(db)

	post := createTestPost(db, "Welcome")

	comment, err := b.AddUserComment(7, post.ID, "Great news!")
	assert.NoError(t, err)
	assert.Equal(t, uint(7), comment.AuthorID)
	assert.False(t, comment.Staff)

	_, err = b.AddUserComment(7, post.ID, "  ")
	assert.ErrorIs(t, err, common.ErrMissingFields)

	_, err = b.AddUserComment(7, 999, "hello?")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAddStaffComment(t *testing.T) {
	db := setupTestDB()
	b := NewBlogModule(db)

	post := createTestPost(db, "Welcome")

	mod := &models.Admin{Email: "mod@example.com"}
	mod.SetPermissions([]models.Permission{models.ModerateComments})
	db.Create(mod)

	comment, err := b.AddStaffComment(mod, post.ID, "Pinned.")
	assert.NoError(t, err)
	assert.True(t, comment.Staff)
	assert.Equal(t, uint(0), comment.AuthorID)
}

func TestAddStaffComment_PermissionDenied(t *testing.T) {
	db := setupTestDB()
	b := NewBlogModule(db)

	post := createTestPost(db, "Welcome")

	intruder := &models.Admin{Email: "other@example.com"}
	intruder.SetPermissions([]models.Permission{models.ManageBlogs})
	db.Create(intruder)

	_, err := b.AddStaffComment(intruder, post.ID, "Pinned.")
	assert.ErrorIs(t, err, common.ErrPermissionDenied)

	_, err = b.AddStaffComment(nil, post.ID, "Pinned.")
	assert.ErrorIs(t, err, common.ErrPermissionDenied)

	var count int64
	db.Model(&models.Comment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCommentsAreAppendOnlyOrdered(t *testing.T) {
	db := setupTestDB()
	b := NewBlogModule(db)

	post := createTestPost(db, "Welcome")

	_, err := b.AddUserComment(1, post.ID, "first")
	assert.NoError(t, err)
	_, err = b.AddUserComment(2, post.ID, "second")
	assert.NoError(t, err)

	var loaded models.BlogPost
	err = db.Preload("Comments", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_at ASC, id ASC")
	}).First(&loaded, post.ID).Error
	assert.NoError(t, err)
	assert.Len(t, loaded.Comments, 2)
	assert.Equal(t, "first", loaded.Comments[0].Content)
	assert.Equal(t, "second", loaded.Comments[1].Content)
}

func TestCommentAuthors_SkipsStaff(t *testing.T) {
	db := setupTestDB()
	b := NewBlogModule(db)

	db.Create(&models.User{Email: "steve@example.com", Username: "Steve", Verified: true})

	comments := []models.Comment{
		{AuthorID: 1, Content: "hi"},
		{Staff: true, Content: "welcome"},
	}

	names := b.commentAuthors(comments)
	assert.Equal(t, "Steve", names[1])
	assert.Len(t, names, 1)
}

func TestRenderMarkdown(t *testing.T) {
	html := renderMarkdown("# Title\n\nSome **bold** text")
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<strong>bold</strong>")
}

func TestRenderMarkdown_GFMTable(t *testing.T) {
	html := renderMarkdown("| a | b |\n|---|---|\n| 1 | 2 |")
	assert.Contains(t, html, "<table>")
}
