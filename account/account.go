package account

import (
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/NXINGNICK/whitegate/common"
	emailpkg "github.com/NXINGNICK/whitegate/email"
	"github.com/NXINGNICK/whitegate/models"
)

type AccountModule struct {
	db   *gorm.DB
	mail *emailpkg.EmailService
}

func NewAccountModule(db *gorm.DB, mail *emailpkg.EmailService) *AccountModule {
	return &AccountModule{db: db, mail: mail}
}

func (m *AccountModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/login", m.loginPage)
	router.POST("/login", m.loginPost)
	router.GET("/register", m.registerPage)
	router.POST("/register", m.registerPost)
	router.POST("/verify", m.verifyPost)
	router.GET("/verify/:token", m.verifyToken)
	router.GET("/logout", m.logout)

	authed := router.Group("")
	authed.Use(m.requireUser)
	{
		authed.GET("/profile", m.profilePage)
		authed.POST("/profile", m.profilePost)
		authed.POST("/community", m.communityPost)
	}

	router.GET("/community", m.communityPage)
}

func (m *AccountModule) requireUser(c *gin.Context) {
	userID, ok := common.CurrentUserID(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}

	var user models.User
	if err := m.db.First(&user, userID).Error; err != nil {
		common.ClearSession(c)
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}

	c.Set("user", &user)
	c.Next()
}

// Register creates an unverified user with no badges. Email and
// username must both be free.
func (m *AccountModule) Register(email, username, password string) (*models.User, error) {
	if email == "" || username == "" || password == "" {
		return nil, common.ErrMissingFields
	}

	var existing models.User
	err := m.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, common.ErrDuplicateEmail
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	err = m.db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, common.ErrDuplicateUsername
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hash, err := common.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:                  email,
		Username:               username,
		PasswordHash:           hash,
		Verified:               false,
		EmailVerificationToken: uuid.NewString(),
	}
	if err := m.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate checks credentials against the user registry. An
// unverified account never authenticates, even with the right password.
func (m *AccountModule) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	if err := m.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, common.ErrInvalidCredentials
	}
	if !common.CheckPasswordHash(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}
	if !user.Verified {
		return nil, common.ErrNotVerified
	}
	return &user, nil
}

// VerifyEmail marks the account verified and discards the pending
// token. Unknown emails are reported, not silently ignored.
func (m *AccountModule) VerifyEmail(email string) error {
	var user models.User
	if err := m.db.Where("email = ?", email).First(&user).Error; err != nil {
		return common.ErrUnknownAccount
	}
	user.Verified = true
	user.EmailVerificationToken = ""
	return m.db.Save(&user).Error
}

func (m *AccountModule) VerifyByToken(token string) error {
	var user models.User
	if err := m.db.Where("email_verification_token = ?", token).First(&user).Error; err != nil {
		return common.ErrUnknownAccount
	}
	user.Verified = true
	user.EmailVerificationToken = ""
	return m.db.Save(&user).Error
}

// UpdateProfile changes the username (uniqueness enforced) and, when
// picURL is non-empty, the profile picture.
func (m *AccountModule) UpdateProfile(userID uint, username, picURL string) error {
	var user models.User
	if err := m.db.First(&user, userID).Error; err != nil {
		return common.ErrNotFound
	}

	if username == "" {
		return common.ErrMissingFields
	}

	if username != user.Username {
		var existing models.User
		err := m.db.Where("username = ? AND id <> ?", username, userID).First(&existing).Error
		if err == nil {
			return common.ErrDuplicateUsername
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		user.Username = username
	}
	if picURL != "" {
		user.ProfilePic = picURL
	}
	return m.db.Save(&user).Error
}

// CreateUserPost appends a community post; the image reference is
// accepted verbatim as a display URL.
func (m *AccountModule) CreateUserPost(userID uint, content, imageURL string) (*models.UserPost, error) {
	if strings.TrimSpace(content) == "" {
		return nil, common.ErrMissingFields
	}
	post := models.UserPost{
		AuthorID:  userID,
		Content:   content,
		ImageURL:  imageURL,
		CreatedAt: time.Now(),
	}
	if err := m.db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (m *AccountModule) ListUserPosts() ([]models.UserPost, error) {
	var posts []models.UserPost
	err := m.db.Order("created_at DESC, id DESC").Find(&posts).Error
	return posts, err
}

func (m *AccountModule) loginPage(c *gin.Context) {
	if _, ok := common.CurrentUserID(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	errs, notices := common.TakeFlashes(c)
	c.HTML(http.StatusOK, "login.html", gin.H{"errors": errs, "notices": notices})
}

func (m *AccountModule) loginPost(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	user, err := m.Authenticate(email, password)
	if err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"errors": []string{err.Error()},
			"email":  email,
		})
		return
	}

	common.SetUserSession(c, user.ID)
	common.FlashNotice(c, "Login successful!")
	c.Redirect(http.StatusFound, "/")
}

func (m *AccountModule) registerPage(c *gin.Context) {
	if _, ok := common.CurrentUserID(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "register.html", gin.H{})
}

func (m *AccountModule) registerPost(c *gin.Context) {
	email := c.PostForm("email")
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := m.Register(email, username, password)
	if err != nil {
		c.HTML(http.StatusBadRequest, "register.html", gin.H{
			"errors":   []string{err.Error()},
			"email":    email,
			"username": username,
		})
		return
	}

	if m.mail.Configured() {
		if mailErr := m.mail.SendVerificationEmail(user.Email, user.EmailVerificationToken); mailErr != nil {
			log.Printf("failed to send verification email to %s: %v", user.Email, mailErr)
		}
	}

	common.FlashNotice(c, "Registration successful! Please verify your email before logging in.")
	c.Redirect(http.StatusFound, "/login")
}

// verifyPost is the simulated verification used when SMTP is not
// configured: the login page posts the email straight back.
func (m *AccountModule) verifyPost(c *gin.Context) {
	email := c.PostForm("email")
	if err := m.VerifyEmail(email); err != nil {
		common.FlashError(c, err.Error())
		c.Redirect(http.StatusFound, "/login")
		return
	}
	common.FlashNotice(c, "Email "+email+" verified successfully! You can now log in.")
	c.Redirect(http.StatusFound, "/login")
}

func (m *AccountModule) verifyToken(c *gin.Context) {
	token := c.Param("token")
	if err := m.VerifyByToken(token); err != nil {
		common.FlashError(c, "Invalid or expired verification link.")
		c.Redirect(http.StatusFound, "/login")
		return
	}
	common.FlashNotice(c, "Email verified successfully! You can now log in.")
	c.Redirect(http.StatusFound, "/login")
}

func (m *AccountModule) logout(c *gin.Context) {
	common.ClearSession(c)
	c.Redirect(http.StatusFound, "/")
}

func (m *AccountModule) profilePage(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	var badges []models.Badge
	slugs := user.BadgeSlugs()
	if len(slugs) > 0 {
		m.db.Where("slug IN ?", slugs).Find(&badges)
	}

	errs, notices := common.TakeFlashes(c)
	c.HTML(http.StatusOK, "profile.html", gin.H{
		"user":    user,
		"badges":  badges,
		"errors":  errs,
		"notices": notices,
	})
}

func (m *AccountModule) profilePost(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	username := c.PostForm("username")

	picURL := ""
	if file, err := c.FormFile("profile_pic"); err == nil {
		url, saveErr := m.saveUpload(c, file)
		if saveErr != nil {
			common.FlashError(c, "Failed to store profile picture.")
			c.Redirect(http.StatusFound, "/profile")
			return
		}
		picURL = url
	}

	if err := m.UpdateProfile(user.ID, username, picURL); err != nil {
		common.FlashError(c, err.Error())
		c.Redirect(http.StatusFound, "/profile")
		return
	}

	common.FlashNotice(c, "Profile updated successfully!")
	c.Redirect(http.StatusFound, "/profile")
}

func (m *AccountModule) communityPage(c *gin.Context) {
	posts, err := m.ListUserPosts()
	if err != nil {
		c.HTML(http.StatusInternalServerError, "community.html", gin.H{
			"errors": []string{"Failed to load community posts"},
		})
		return
	}

	authors := m.authorNames(posts)

	var user *models.User
	if userID, ok := common.CurrentUserID(c); ok {
		var u models.User
		if err := m.db.First(&u, userID).Error; err == nil {
			user = &u
		}
	}

	errs, notices := common.TakeFlashes(c)
	c.HTML(http.StatusOK, "community.html", gin.H{
		"posts":   posts,
		"authors": authors,
		"user":    user,
		"errors":  errs,
		"notices": notices,
	})
}

func (m *AccountModule) communityPost(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	content := c.PostForm("content")

	imageURL := c.PostForm("image_url")
	if file, err := c.FormFile("image"); err == nil {
		url, saveErr := m.saveUpload(c, file)
		if saveErr != nil {
			common.FlashError(c, "Failed to store image.")
			c.Redirect(http.StatusFound, "/community")
			return
		}
		imageURL = url
	}

	if _, err := m.CreateUserPost(user.ID, content, imageURL); err != nil {
		common.FlashError(c, err.Error())
		c.Redirect(http.StatusFound, "/community")
		return
	}

	common.FlashNotice(c, "Post created!")
	c.Redirect(http.StatusFound, "/community")
}

func (m *AccountModule) authorNames(posts []models.UserPost) map[uint]string {
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.AuthorID)
	}
	names := make(map[uint]string)
	if len(ids) == 0 {
		return names
	}
	var users []models.User
	m.db.Where("id IN ?", ids).Find(&users)
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names
}

// saveUpload stores an uploaded file under public/uploads and returns
// the URL it will be served from. Names are random so uploads never
// collide or clobber each other.
func (m *AccountModule) saveUpload(c *gin.Context, file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(filepath.Join("public", "uploads"), 0755); err != nil {
		return "", err
	}
	name := uuid.NewString() + filepath.Ext(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join("public", "uploads", name)); err != nil {
		return "", err
	}
	return "/public/uploads/" + name, nil
}
