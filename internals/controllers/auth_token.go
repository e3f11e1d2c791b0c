package controllers

import (
	"net/http"
	"time"

	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/auth"
	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/config"
	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/middleware"

	"github.com/gin-gonic/gin"
)

// SessionCookies writes and clears the session token cookie
type SessionCookies struct {
	Config config.CookieConfig
}

func (s SessionCookies) Set(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, token, maxAge, "/", s.Config.Domain, s.Config.IsSecure, s.Config.HttpOnly)
}

func (s SessionCookies) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", s.Config.Domain, s.Config.IsSecure, s.Config.HttpOnly)
}

// respond sets the cookie and returns {message, success, token, user}
func (s SessionCookies) respond(c *gin.Context, message string, res *auth.LoginResult) {
	s.Set(c, res.Token, res.ExpiresAt)
	ok(c, http.StatusOK, message, gin.H{
		"token":     res.Token,
		"expiresAt": res.ExpiresAt.UTC(),
		"user":      res.User,
	})
}
