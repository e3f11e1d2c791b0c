package controllers

import (
	"net/http"

	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/auth"
	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/middleware"

	"github.com/gin-gonic/gin"
)

type MFAController struct {
	Flow       *auth.FlowManager
	Production bool
}

func NewMFAController(flow *auth.FlowManager, production bool) *MFAController {
	return &MFAController{Flow: flow, Production: production}
}

func (m *MFAController) Setup2FA(c *gin.Context) {
	// set by RequireAuth
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		respondError(c, auth.ErrInvalidToken, m.Production)
		return
	}

	setup, err := m.Flow.SetupMFA(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err, m.Production)
		return
	}

	ok(c, http.StatusOK, "Scan the QR code with your authenticator app, then activate it with a code", gin.H{
		"secret":     setup.Secret,
		"otpauthUrl": setup.URL,
		"qrCode":     setup.QRCode,
	})
}

func (m *MFAController) Activate2FA(c *gin.Context) {
	var body auth.MFACodeInput
	if err := bindStrict(c, &body); err != nil {
		respondError(c, err, m.Production)
		return
	}

	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		respondError(c, auth.ErrInvalidToken, m.Production)
		return
	}

	if err := m.Flow.ActivateMFA(c.Request.Context(), claims.UserID, body.Code); err != nil {
		respondError(c, err, m.Production)
		return
	}

	ok(c, http.StatusOK, "Authenticator app enabled", nil)
}
