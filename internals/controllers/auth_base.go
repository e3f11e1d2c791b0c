package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/auth"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type errorMapping struct {
	err     error
	status  int
	message string
}

// checked in order; the first sentinel that matches wins
var errorMappings = []errorMapping{
	{auth.ErrNotFound, http.StatusNotFound, "User not found"},
	{auth.ErrConflict, http.StatusConflict, "User already exists"},
	{auth.ErrInvalidCredentials, http.StatusBadRequest, "Invalid credentials"},
	{auth.ErrNotVerified, http.StatusBadRequest, "Verify email first"},
	{auth.ErrInvalidOrExpiredOTP, http.StatusBadRequest, "Invalid or expired OTP"},
	{auth.ErrInvalidOTP, http.StatusBadRequest, "Invalid OTP"},
	{auth.ErrExpired, http.StatusBadRequest, "OTP expired"},
	{auth.ErrAlreadyVerified, http.StatusBadRequest, "Email already verified"},
	{auth.ErrMFARequired, http.StatusBadRequest, "Authenticator code required"},
	{auth.ErrInvalidMFACode, http.StatusBadRequest, "Invalid authenticator code"},
	{auth.ErrMFANotSetUp, http.StatusBadRequest, "Authenticator app is not set up"},
	{auth.ErrMFAAlreadyEnabled, http.StatusBadRequest, "Authenticator app is already enabled"},
	{auth.ErrInvalidToken, http.StatusUnauthorized, "Invalid or expired token"},
	{auth.ErrUpstream, http.StatusBadGateway, "Google auth failed"},
	{auth.ErrMFAUnavailable, http.StatusServiceUnavailable, "Authenticator support is not configured"},
}

// respondError translates a flow error into the failure body {message, success:false}.
// Unexpected errors only expose their detail outside production.
func respondError(c *gin.Context, err error, production bool) {
	var verr *auth.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"message": verr.Error(), "success": false})
		return
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			c.JSON(m.status, gin.H{"message": m.message, "success": false})
			return
		}
	}

	body := gin.H{"message": "Internal server error", "success": false}
	if !production {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}

// bindStrict decodes a JSON object into obj, rejecting keys that are not an
// exact match of one of obj's json tags. encoding/json alone would accept
// "Email" for "email".
func bindStrict(c *gin.Context, obj any) error {
	raw, err := c.GetRawData()
	if err != nil {
		return &auth.ValidationError{Field: "body", Message: "failed to read body"}
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return &auth.ValidationError{Field: "body", Message: "must be a JSON object"}
	}

	allowed := jsonKeys(obj)
	for k := range keys {
		if !allowed[k] {
			return &auth.ValidationError{Field: k, Message: "unknown field"}
		}
	}

	if err := binding.JSON.BindBody(raw, obj); err != nil {
		return &auth.ValidationError{Field: "body", Message: fmt.Sprintf("malformed: %v", err)}
	}
	return nil
}

func jsonKeys(obj any) map[string]bool {
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	keys := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			keys[name] = true
		}
	}
	return keys
}

func ok(c *gin.Context, status int, message string, extra gin.H) {
	body := gin.H{"message": message, "success": true}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}
