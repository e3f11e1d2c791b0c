package controllers

import (
	"net/http"

	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/auth"

	"github.com/gin-gonic/gin"
)

// otpBody leaves out mfaCode, which only the login step takes
type otpBody struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifySignup confirms the email address with the code sent at signup
func (a *AuthController) VerifySignup(c *gin.Context) {
	var body otpBody
	if err := bindStrict(c, &body); err != nil {
		respondError(c, err, a.Production)
		return
	}

	if err := a.Flow.ConfirmSignupOTP(c.Request.Context(), body.Email, body.OTP); err != nil {
		respondError(c, err, a.Production)
		return
	}

	ok(c, http.StatusOK, "Email verified successfully", nil)
}

func (a *AuthController) ResendSignupOTP(c *gin.Context) {
	var body auth.EmailInput
	if err := bindStrict(c, &body); err != nil {
		respondError(c, err, a.Production)
		return
	}

	if err := a.Flow.ResendSignupOTP(c.Request.Context(), body.Email); err != nil {
		respondError(c, err, a.Production)
		return
	}

	ok(c, http.StatusOK, "A new verification code has been sent to your email", nil)
}

// VerifyLogin is the second login step. Accounts with an authenticator app
// also send mfaCode.
func (a *AuthController) VerifyLogin(c *gin.Context) {
	var body auth.OTPInput
	if err := bindStrict(c, &body); err != nil {
		respondError(c, err, a.Production)
		return
	}

	res, err := a.Flow.ConfirmLoginOTP(c.Request.Context(), body.Email, body.OTP, body.MFACode)
	if err != nil {
		respondError(c, err, a.Production)
		return
	}

	a.Cookies.respond(c, "Login successful", res)
}

func (a *AuthController) ForgotPassword(c *gin.Context) {
	var body auth.EmailInput
	if err := bindStrict(c, &body); err != nil {
		respondError(c, err, a.Production)
		return
	}

	if err := a.Flow.RequestPasswordReset(c.Request.Context(), body.Email); err != nil {
		respondError(c, err, a.Production)
		return
	}

	ok(c, http.StatusOK, "Password reset link sent to your email", nil)
}

// ResetPassword takes the token from the reset link as otp
func (a *AuthController) ResetPassword(c *gin.Context) {
	var body auth.ResetInput
	if err := bindStrict(c, &body); err != nil {
		respondError(c, err, a.Production)
		return
	}

	if err := a.Flow.ConfirmPasswordReset(c.Request.Context(), body.Email, body.OTP, body.NewPassword); err != nil {
		respondError(c, err, a.Production)
		return
	}

	ok(c, http.StatusOK, "Password reset successful", nil)
}
