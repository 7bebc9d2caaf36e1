package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/NXINGNICK/whitegate/common"
	"github.com/NXINGNICK/whitegate/models"
)

func (a *AdminModule) adminRoot(c *gin.Context) {
	if _, ok := common.CurrentAdminID(c); ok {
		c.Redirect(http.StatusFound, "/admin/dashboard")
		return
	}
	c.Redirect(http.StatusFound, "/adminlogin")
}

func (a *AdminModule) loginPage(c *gin.Context) {
	if _, ok := common.CurrentAdminID(c); ok {
		c.Redirect(http.StatusFound, "/admin/dashboard")
		return
	}
	errs, notices := common.TakeFlashes(c)
	c.HTML(http.StatusOK, "admin_login.html", gin.H{"errors": errs, "notices": notices})
}

func (a *AdminModule) loginPost(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	admin, err := a.Authenticate(email, password)
	if err != nil {
		c.HTML(http.StatusUnauthorized, "admin_login.html", gin.H{
			"errors": []string{err.Error()},
			"email":  email,
		})
		return
	}

	common.SetAdminSession(c, admin.ID)

	if admin.RequiresPasswordChange {
		// Session is established; steer to account management first.
		common.FlashError(c, "Security requirement: please change your password or create a new admin account.")
		c.Redirect(http.StatusFound, "/admin/admins")
		return
	}
	c.Redirect(http.StatusFound, "/admin/dashboard")
}

func (a *AdminModule) logout(c *gin.Context) {
	common.ClearSession(c)
	c.Redirect(http.StatusFound, "/")
}

func (a *AdminModule) dashboard(c *gin.Context) {
	admin := c.MustGet("admin").(*models.Admin)
	cfg, err := a.siteConfig()
	if err != nil {
		c.HTML(http.StatusInternalServerError, "admin_error.html", gin.H{"error": "Failed to load site configuration"})
		return
	}

	errs, notices := common.TakeFlashes(c)
	c.HTML(http.StatusOK, "admin_dashboard.html", gin.H{
		"admin":   admin,
		"config":  cfg,
		"errors":  errs,
		"notices": notices,
	})
}

func (a *AdminModule) updateContent(c *gin.Context) {
	admin := c.MustGet("admin").(*models.Admin)
	if err := a.UpdateHomeContent(admin, c.PostForm("content")); err != nil {
		common.FlashError(c, err.Error())
	} else {
		common.FlashNotice(c, "Content changes saved.")
	}
	c.Redirect(http.StatusFound, "/admin/dashboard")
}

func (a *AdminModule) updateStyles(c *gin.Context) {
	admin := c.MustGet("admin").(*models.Admin)
	if err := a.UpdateStyles(admin, c.PostForm("primary_color"), c.PostForm("secondary_color")); err != nil {
		common.FlashError(c, err.Error())
	} else {
		common.FlashNotice(c, "Styles updated.")
	}
	c.Redirect(http.StatusFound, "/admin/dashboard")
}

func (a *AdminModule) updateSettings(c *gin.Context) {
	admin := c.MustGet("admin").(*models.Admin)
	err := a.UpdateSftpConfig(admin,
		c.PostForm("sftp_host"), c.PostForm("sftp_port"),
		c.PostForm("sftp_user"), c.PostForm("sftp_pass"))
	if err != nil {
		common.FlashError(c, err.Error())
	} else {
		common.FlashNotice(c, "SFTP settings saved.")
	}
	c.Redirect(http.StatusFound, "/admin/dashboard")
}

func (a *AdminModule) toggleShop(c *gin.Context) {
	admin := c.MustGet("admin").(*models.Admin)
	enabled, err := a.ToggleShop(admin)
	if err != nil {
		common.FlashError(c, err.Error())
		c.Redirect(http.StatusFound, "/admin/dashboard")
		return
	}
	if enabled {
		common.FlashNotice(c, "Shop page enabled.")
	} else {
		common.FlashNotice(c, "Shop page disabled.")
	}
	c.Redirect(http.StatusFound, "/admin/dashboard")
}

func (a *AdminModule) blogsPage(c *gin.Context) {
	admin := c.MustGet("admin").(*models.Admin)

	var posts []models.BlogPost
	if err := a.db.Order("created_at DESC").Find(&posts).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "admin_error.html", gin.H{"error": "Failed to load blog posts"})
		return
	}

	errs, notices := common.TakeFlashes(c)
	c.HTML(http.StatusOK, "admin_blogs.html", gin.H{
		"admin":   admin,
		"posts":   posts,
		"errors":  errs,
		"notices": notices,
	})
}

func (a *AdminModule) createBlog(c *gin.Context) {
	admin := c.MustGet("admin").(*models.Admin)
	if _, err := a.CreateBlogPost(admin, c.PostForm("title"), c.PostForm("content")); err != nil {
		common.FlashError(c, err.Error())
	} else {
		common.FlashNotice(c, "Blog post created.")
	}
	c.Redirect(http.StatusFound, "/admin/blogs")
}

func (a *AdminModule) deleteBlog(c *gin.Context) {
	admin := c.MustGet("admin").(*models.Admin)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := a.DeleteBlogPost(admin, uint(id)); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "blog post deleted"})
}

func (a *AdminModule) adminsPage(c *gin.Context) {
	admin := c.MustGet("admin").(*models.Admin)

	var admins []models.Admin
	if err := a.db.Order("id").Find(&admins).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "admin_error.html", gin.H{"error": "Failed to load admins"})
		return
	}

	errs, notices := common.TakeFlashes(c)
	c.HTML(http.StatusOK, "admin_admins.html", gin.H{
		"admin":       admin,
		"admins":      admins,
		"permissions": models.AllPermissions,
		"errors":      errs,
		"notices":     notices,
	})
}

func permissionsFromForm(c *gin.Context) []models.Permission {
	var perms []models.Permission
	for _, name := range c.PostFormArray("permissions") {
		if p, ok := models.ParsePermission(name); ok {
			perms = append(perms, p)
		}
	}
	return perms
}

func (a *AdminModule) createAdmin(c *gin.Context) {
	admin := c.MustGet("admin").(*models.Admin)
	_, err := a.CreateAdmin(admin, c.PostForm("email"), c.PostForm("password"), permissionsFromForm(c))
	if err != nil {
		common.FlashError(c, err.Error())
	} else {
		common.FlashNotice(c, "New admin account created.")
	}
	c.Redirect(http.StatusFound, "/admin/admins")
}

func (a *AdminModule) updateAdmin(c *gin.Context) {
	admin := c.MustGet("admin").(*models.Admin)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		common.FlashError(c, "invalid admin id")
		c.Redirect(http.StatusFound, "/admin/admins")
		return
	}

	err = a.UpdateAdmin(admin, uint(id),
		c.PostForm("email"),
		c.PostForm("password"), c.PostForm("password_confirm"),
		permissionsFromForm(c))
	if err != nil {
		common.FlashError(c, err.Error())
	} else {
		common.FlashNotice(c, "Admin account updated.")
	}
	c.Redirect(http.StatusFound, "/admin/admins")
}

func (a *AdminModule) deleteAdmin(c *gin.Context) {
	admin := c.MustGet("admin").(*models.Admin)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := a.DeleteAdmin(admin, uint(id)); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "admin account deleted"})
}

func (a *AdminModule) badgesPage(c *gin.Context) {
	admin := c.MustGet("admin").(*models.Admin)

	var badges []models.Badge
	if err := a.db.Order("id").Find(&badges).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "admin_error.html", gin.H{"error": "Failed to load badges"})
		return
	}

	errs, notices := common.TakeFlashes(c)
	c.HTML(http.StatusOK, "admin_badges.html", gin.H{
		"admin":   admin,
		"badges":  badges,
		"errors":  errs,
		"notices": notices,
	})
}

func (a *AdminModule) createBadge(c *gin.Context) {
	admin := c.MustGet("admin").(*models.Admin)
	_, err := a.CreateBadge(admin, c.PostForm("name"), c.PostForm("emoji"), c.PostForm("description"))
	if err != nil {
		common.FlashError(c, err.Error())
	} else {
		common.FlashNotice(c, "Badge created.")
	}
	c.Redirect(http.StatusFound, "/admin/badges")
}

func (a *AdminModule) updateBadge(c *gin.Context) {
	admin := c.MustGet("admin").(*models.Admin)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		common.FlashError(c, "invalid badge id")
		c.Redirect(http.StatusFound, "/admin/badges")
		return
	}

	err = a.UpdateBadge(admin, uint(id), c.PostForm("name"), c.PostForm("emoji"), c.PostForm("description"))
	if err != nil {
		common.FlashError(c, err.Error())
	} else {
		common.FlashNotice(c, "Badge updated.")
	}
	c.Redirect(http.StatusFound, "/admin/badges")
}

func (a *AdminModule) deleteBadge(c *gin.Context) {
	admin := c.MustGet("admin").(*models.Admin)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := a.DeleteBadge(admin, uint(id)); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "badge deleted"})
}

func (a *AdminModule) usersPage(c *gin.Context) {
	admin := c.MustGet("admin").(*models.Admin)

	var users []models.User
	if err := a.db.Order("id").Find(&users).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "admin_error.html", gin.H{"error": "Failed to load users"})
		return
	}
	var badges []models.Badge
	if err := a.db.Order("id").Find(&badges).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "admin_error.html", gin.H{"error": "Failed to load badges"})
		return
	}

	errs, notices := common.TakeFlashes(c)
	c.HTML(http.StatusOK, "admin_users.html", gin.H{
		"admin":   admin,
		"users":   users,
		"badges":  badges,
		"errors":  errs,
		"notices": notices,
	})
}

func (a *AdminModule) assignBadge(c *gin.Context) {
	admin := c.MustGet("admin").(*models.Admin)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		common.FlashError(c, "invalid user id")
		c.Redirect(http.StatusFound, "/admin/users")
		return
	}

	if err := a.AssignBadge(admin, uint(id), c.PostForm("badge")); err != nil {
		common.FlashError(c, err.Error())
	} else {
		common.FlashNotice(c, "Badge assigned.")
	}
	c.Redirect(http.StatusFound, "/admin/users")
}

func (a *AdminModule) removeBadge(c *gin.Context) {
	admin := c.MustGet("admin").(*models.Admin)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := a.RemoveUserBadge(admin, uint(id), c.Param("slug")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "badge removed"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrProtectedAccount),
		errors.Is(err, common.ErrProtectedBadge),
		errors.Is(err, common.ErrLastAdmin),
		errors.Is(err, common.ErrUseAdminManagement):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
