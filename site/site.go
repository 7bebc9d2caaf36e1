package site

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/NXINGNICK/whitegate/common"
	"github.com/NXINGNICK/whitegate/models"
)

type SiteModule struct {
	db *gorm.DB
}

func NewSiteModule(db *gorm.DB) *SiteModule {
	return &SiteModule{db: db}
}

func (s *SiteModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/", s.index)
	router.NoRoute(s.notFound)
}

func (s *SiteModule) index(c *gin.Context) {
	var cfg models.SiteConfig
	if err := s.db.First(&cfg).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "notfound.html", gin.H{})
		return
	}

	var latest []models.BlogPost
	s.db.Order("created_at DESC").Limit(3).Find(&latest)

	var user *models.User
	if userID, ok := common.CurrentUserID(c); ok {
		var u models.User
		if err := s.db.First(&u, userID).Error; err == nil {
			user = &u
		}
	}
	_, adminLoggedIn := common.CurrentAdminID(c)

	errs, notices := common.TakeFlashes(c)
	c.HTML(http.StatusOK, "home.html", gin.H{
		"config":  &cfg,
		"latest":  latest,
		"user":    user,
		"isAdmin": adminLoggedIn,
		"errors":  errs,
		"notices": notices,
	})
}

func (s *SiteModule) notFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "notfound.html", gin.H{})
}
