package shop

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/NXINGNICK/whitegate/common"
	"github.com/NXINGNICK/whitegate/models"
)

type ShopModule struct {
	db *gorm.DB
}

func NewShopModule(db *gorm.DB) *ShopModule {
	return &ShopModule{db: db}
}

func (s *ShopModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/shop", s.page)
}

// page shows the shop when enabled. A disabled shop renders the
// coming-soon placeholder for the public, but any active admin session
// still sees the full page as a preview.
func (s *ShopModule) page(c *gin.Context) {
	var cfg models.SiteConfig
	if err := s.db.First(&cfg).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "shop_closed.html", gin.H{})
		return
	}

	_, adminLoggedIn := common.CurrentAdminID(c)
	if !cfg.ShopEnabled && !adminLoggedIn {
		c.HTML(http.StatusOK, "shop_closed.html", gin.H{})
		return
	}

	c.HTML(http.StatusOK, "shop.html", gin.H{
		"config":  &cfg,
		"preview": adminLoggedIn && !cfg.ShopEnabled,
	})
}
