package common

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionUserKey  = "user_id"
	sessionAdminKey = "admin_id"
)

// SetUserSession establishes a user session. User and admin sessions
// are mutually exclusive, so any admin session is cleared first.
func SetUserSession(c *gin.Context, userID uint) {
	session := sessions.Default(c)
	session.Delete(sessionAdminKey)
	session.Set(sessionUserKey, userID)
	session.Save()
}

// SetAdminSession establishes an admin session and clears any user session.
func SetAdminSession(c *gin.Context, adminID uint) {
	session := sessions.Default(c)
	session.Delete(sessionUserKey)
	session.Set(sessionAdminKey, adminID)
	session.Save()
}

func ClearSession(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
}

func CurrentUserID(c *gin.Context) (uint, bool) {
	session := sessions.Default(c)
	v := session.Get(sessionUserKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func CurrentAdminID(c *gin.Context) (uint, bool) {
	session := sessions.Default(c)
	v := session.Get(sessionAdminKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// FlashError queues a transient error notice for the next rendered page.
func FlashError(c *gin.Context, msg string) {
	session := sessions.Default(c)
	session.AddFlash(msg, "error")
	session.Save()
}

func FlashNotice(c *gin.Context, msg string) {
	session := sessions.Default(c)
	session.AddFlash(msg, "notice")
	session.Save()
}

// TakeFlashes drains queued notices. Reading flashes consumes them, so
// each message displays exactly once.
func TakeFlashes(c *gin.Context) (errs []string, notices []string) {
	session := sessions.Default(c)
	for _, f := range session.Flashes("error") {
		if s, ok := f.(string); ok {
			errs = append(errs, s)
		}
	}
	for _, f := range session.Flashes("notice") {
		if s, ok := f.(string); ok {
			notices = append(notices, s)
		}
	}
	session.Save()
	return errs, notices
}
