package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/NXINGNICK/whitegate/account"
	"github.com/NXINGNICK/whitegate/admin"
	"github.com/NXINGNICK/whitegate/blog"
	"github.com/NXINGNICK/whitegate/cache"
	"github.com/NXINGNICK/whitegate/common"
	"github.com/NXINGNICK/whitegate/database"
	emailpkg "github.com/NXINGNICK/whitegate/email"
	"github.com/NXINGNICK/whitegate/shop"
	"github.com/NXINGNICK/whitegate/site"
	"github.com/NXINGNICK/whitegate/status"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db := common.ConnectDb()
	if db == nil {
		log.Fatal("Failed to connect to database")
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	if err := database.SeedDefaults(db); err != nil {
		log.Fatal("Failed to seed defaults:", err)
	}
	if os.Getenv("SEED_SAMPLE_CONTENT") == "1" {
		if err := database.SeedSampleContent(db); err != nil {
			log.Fatal("Failed to seed sample content:", err)
		}
	}

	if err := cache.ClearOldCache(7 * 24 * time.Hour); err != nil {
		log.Printf("cache sweep failed: %v", err)
	}

	router := gin.Default()

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		log.Fatal("SESSION_SECRET environment variable not set")
	}

	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   false,
	})

	router.Use(sessions.Sessions("whitegate-session", store))

	router.SetFuncMap(map[string]interface{}{
		"now": func() time.Time {
			return time.Now()
		},
	})

	router.LoadHTMLGlob("*/views/*.html")

	router.Static("/public", "./public")

	mail := emailpkg.NewEmailService()

	site.NewSiteModule(db).RegisterRoutes(router)
	account.NewAccountModule(db, mail).RegisterRoutes(router)
	blog.NewBlogModule(db).RegisterRoutes(router)
	shop.NewShopModule(db).RegisterRoutes(router)
	admin.NewAdminModule(db).RegisterRoutes(router)

	statusModule := status.NewStatusModule(nil)
	statusModule.RegisterRoutes(router)
	statusModule.Start()
	defer statusModule.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting server on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
