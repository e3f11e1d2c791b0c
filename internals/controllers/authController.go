package controllers

import (
	"net/http"

	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/auth"
	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/middleware"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Flow       *auth.FlowManager
	Cookies    SessionCookies
	Production bool
}

func NewAuthController(flow *auth.FlowManager, cookies SessionCookies, production bool) *AuthController {
	return &AuthController{
		Flow:       flow,
		Cookies:    cookies,
		Production: production,
	}
}

func (a *AuthController) Signup(c *gin.Context) {
	var body auth.SignupInput
	if err := bindStrict(c, &body); err != nil {
		respondError(c, err, a.Production)
		return
	}

	if err := a.Flow.RequestSignup(c.Request.Context(), body); err != nil {
		respondError(c, err, a.Production)
		return
	}

	ok(c, http.StatusCreated, "Signup successful, please verify OTP", nil)
}

// Login is the first login step: the password is checked and a code is mailed
func (a *AuthController) Login(c *gin.Context) {
	var body auth.LoginInput
	if err := bindStrict(c, &body); err != nil {
		respondError(c, err, a.Production)
		return
	}

	if err := a.Flow.RequestLogin(c.Request.Context(), body.Email, body.Password); err != nil {
		respondError(c, err, a.Production)
		return
	}

	ok(c, http.StatusOK, "OTP sent to email, please verify to login", nil)
}

func (a *AuthController) Me(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		respondError(c, auth.ErrInvalidToken, a.Production)
		return
	}

	user, err := a.Flow.UserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err, a.Production)
		return
	}
	ok(c, http.StatusOK, "Authenticated", gin.H{"user": user})
}

// Logout only clears the cookie; session tokens are stateless and expire on their own
func (a *AuthController) Logout(c *gin.Context) {
	a.Cookies.Clear(c)
	ok(c, http.StatusOK, "Logged out successfully", nil)
}
