package controllers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/auth"
	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateTTL    = 10 * time.Minute
)

// GoogleAuthController handles only Google-specific OAuth logic. Both the
// browser redirect flow and the token-based flow end in FederatedLogin with a
// Google ID token.
type GoogleAuthController struct {
	Flow       *auth.FlowManager
	Config     *oauth2.Config
	Cookies    SessionCookies
	Production bool
}

// NewGoogleAuthController initializes the config once at startup
func NewGoogleAuthController(flow *auth.FlowManager, cfg config.GoogleConfig, cookies SessionCookies, production bool) *GoogleAuthController {
	return &GoogleAuthController{
		Flow: flow,
		Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		Cookies:    cookies,
		Production: production,
	}
}

// Login redirects the user to Google's consent page
func (g *GoogleAuthController) Login(c *gin.Context) {
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, int(oauthStateTTL.Seconds()), "/", g.Cookies.Config.Domain, g.Cookies.Config.IsSecure, true)

	c.Redirect(http.StatusTemporaryRedirect, g.Config.AuthCodeURL(state))
}

// Callback exchanges the authorization code and signs the user in with the
// returned ID token
func (g *GoogleAuthController) Callback(c *gin.Context) {
	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(state), []byte(c.Query("state"))) != 1 {
		respondError(c, &auth.ValidationError{Field: "state", Message: "does not match"}, g.Production)
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", g.Cookies.Config.Domain, g.Cookies.Config.IsSecure, true)

	code := c.Query("code")
	if code == "" {
		respondError(c, &auth.ValidationError{Field: "code", Message: "is required"}, g.Production)
		return
	}

	token, err := g.Config.Exchange(c.Request.Context(), code)
	if err != nil {
		respondError(c, auth.ErrUpstream, g.Production)
		return
	}
	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		respondError(c, auth.ErrUpstream, g.Production)
		return
	}

	// no way to carry an authenticator code through the redirect, so accounts
	// with one enabled get ErrMFARequired and must use the token endpoint
	res, err := g.Flow.FederatedLogin(c.Request.Context(), idToken, "")
	if err != nil {
		respondError(c, err, g.Production)
		return
	}
	g.Cookies.respond(c, "Google login successful", res)
}

// TokenLogin accepts an ID token obtained by the frontend (Google Identity
// Services), plus mfaCode for accounts with an authenticator app
func (g *GoogleAuthController) TokenLogin(c *gin.Context) {
	var body auth.FederatedInput
	if err := bindStrict(c, &body); err != nil {
		respondError(c, err, g.Production)
		return
	}

	res, err := g.Flow.FederatedLogin(c.Request.Context(), body.Credential, body.MFACode)
	if err != nil {
		respondError(c, err, g.Production)
		return
	}
	g.Cookies.respond(c, "Google login successful", res)
}
