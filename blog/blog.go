package blog

import (
	"bytes"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
	"gorm.io/gorm"

	"github.com/NXINGNICK/whitegate/cache"
	"github.com/NXINGNICK/whitegate/common"
	"github.com/NXINGNICK/whitegate/models"
)

type BlogModule struct {
	db *gorm.DB
}

// markdown renderer configured with Goldmark and useful extensions
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,     // tables, strikethrough, task lists, autolinks (GFM set)
		extension.Linkify, // linkify raw URLs
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithUnsafe(), // allow raw HTML passthrough in Markdown
	),
)

const cacheMaxAge = 24 * time.Hour

func NewBlogModule(db *gorm.DB) *BlogModule {
	return &BlogModule{db: db}
}

func (b *BlogModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/blog", b.index)
	router.GET("/blog/:id", b.post)
	router.POST("/blog/:id/comments", b.addComment)
}

// AddUserComment appends a comment in the voice of a registered user.
func (b *BlogModule) AddUserComment(userID, postID uint, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, common.ErrMissingFields
	}
	var post models.BlogPost
	if err := b.db.First(&post, postID).Error; err != nil {
		return nil, common.ErrNotFound
	}

	comment := models.Comment{
		PostID:    postID,
		AuthorID:  userID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := b.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// AddStaffComment appends a comment in the staff voice. Only admins
// holding the comment-moderation capability may speak as staff.
func (b *BlogModule) AddStaffComment(actor *models.Admin, postID uint, content string) (*models.Comment, error) {
	if actor == nil || !actor.HasPermission(models.ModerateComments) {
		return nil, common.ErrPermissionDenied
	}
	if strings.TrimSpace(content) == "" {
		return nil, common.ErrMissingFields
	}
	var post models.BlogPost
	if err := b.db.First(&post, postID).Error; err != nil {
		return nil, common.ErrNotFound
	}

	comment := models.Comment{
		PostID:    postID,
		Staff:     true,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := b.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (b *BlogModule) index(c *gin.Context) {
	var posts []models.BlogPost
	if err := b.db.Order("created_at DESC").Find(&posts).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "blog_error.html", gin.H{"error": "Failed to load blog posts"})
		return
	}

	errs, notices := common.TakeFlashes(c)
	c.HTML(http.StatusOK, "blog_index.html", gin.H{
		"posts":   posts,
		"authors": b.authorNames(posts),
		"errors":  errs,
		"notices": notices,
	})
}

func (b *BlogModule) post(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.HTML(http.StatusNotFound, "blog_error.html", gin.H{"error": "Post not found"})
		return
	}

	var post models.BlogPost
	if err := b.db.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	}).First(&post, id).Error; err != nil {
		c.HTML(http.StatusNotFound, "blog_error.html", gin.H{"error": "Post not found"})
		return
	}

	_, loggedIn := common.CurrentUserID(c)
	_, adminLoggedIn := common.CurrentAdminID(c)

	errs, notices := common.TakeFlashes(c)
	c.HTML(http.StatusOK, "blog_post.html", gin.H{
		"post":           post,
		"contentHTML":    template.HTML(b.renderPost(&post)),
		"commentAuthors": b.commentAuthors(post.Comments),
		"canComment":     loggedIn || adminLoggedIn,
		"errors":         errs,
		"notices":        notices,
	})
}

func (b *BlogModule) addComment(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.HTML(http.StatusNotFound, "blog_error.html", gin.H{"error": "Post not found"})
		return
	}
	postID := uint(id)
	content := c.PostForm("content")

	if adminID, ok := common.CurrentAdminID(c); ok {
		var admin models.Admin
		if err := b.db.First(&admin, adminID).Error; err != nil {
			common.ClearSession(c)
			c.Redirect(http.StatusFound, "/adminlogin")
			return
		}
		if _, err := b.AddStaffComment(&admin, postID, content); err != nil {
			common.FlashError(c, err.Error())
		} else {
			common.FlashNotice(c, "Comment added.")
		}
		c.Redirect(http.StatusFound, "/blog/"+c.Param("id"))
		return
	}

	userID, ok := common.CurrentUserID(c)
	if !ok {
		common.FlashError(c, "You must be logged in to comment.")
		c.Redirect(http.StatusFound, "/blog/"+c.Param("id"))
		return
	}

	if _, err := b.AddUserComment(userID, postID, content); err != nil {
		common.FlashError(c, err.Error())
	} else {
		common.FlashNotice(c, "Comment added.")
	}
	c.Redirect(http.StatusFound, "/blog/"+c.Param("id"))
}

// renderPost returns the post body as HTML, served from the file cache
// when a fresh rendering exists.
func (b *BlogModule) renderPost(post *models.BlogPost) string {
	if html, ok := cache.ReadCache(post.ID, post.Content, cacheMaxAge); ok {
		return html
	}
	html := renderMarkdown(post.Content)
	if err := cache.WriteCache(post.ID, post.Content, html); err != nil {
		log.Printf("failed to cache post %d: %v", post.ID, err)
	}
	return html
}

func (b *BlogModule) authorNames(posts []models.BlogPost) map[uint]string {
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		if p.AuthorID != 0 {
			ids = append(ids, p.AuthorID)
		}
	}
	return b.usernames(ids)
}

func (b *BlogModule) commentAuthors(comments []models.Comment) map[uint]string {
	ids := make([]uint, 0, len(comments))
	for _, cm := range comments {
		if !cm.Staff {
			ids = append(ids, cm.AuthorID)
		}
	}
	return b.usernames(ids)
}

func (b *BlogModule) usernames(ids []uint) map[uint]string {
	names := make(map[uint]string)
	if len(ids) == 0 {
		return names
	}
	var users []models.User
	b.db.Where("id IN ?", ids).Find(&users)
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names
}

func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		// On a render error, fall back to the raw source so the page
		// still shows something.
		return content
	}
	return buf.String()
}
