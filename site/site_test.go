package site

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/NXINGNICK/whitegate/models"
)

func setupTest() (*gin.Engine, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.AutoMigrate(&models.User{}, &models.BlogPost{}, &models.SiteConfig{})
	db.Create(&models.SiteConfig{
		PrimaryColor:   "blue-600",
		SecondaryColor: "green-500",
		HomeContent:    "Welcome to our Minecraft server!",
	})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	store := cookie.NewStore([]byte("secret"))
	router.Use(sessions.Sessions("test-session", store))
	router.SetFuncMap(template.FuncMap{"now": time.Now})
	router.LoadHTMLGlob("views/*.html")

	NewSiteModule(db).RegisterRoutes(router)
	return router, db
}

func TestHomePage(t *testing.T) {
	router, db := setupTest()

	db.Create(&models.BlogPost{Title: "Latest News", Content: "hi", CreatedAt: time.Now()})

	req, _ := http.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome to our Minecraft server!")
	assert.Contains(t, w.Body.String(), "Latest News")
}

func TestNotFound(t *testing.T) {
	router, _ := setupTest()

	req, _ := http.NewRequest("GET", "/no-such-page", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
