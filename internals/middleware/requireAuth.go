package middleware

import (
	"net/http"
	"strings"

	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/auth"
	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/models"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie the session token is stored in
const SessionCookieName = "Authorization"

const claimsKey = "claims"

type RequireAuthMiddleware struct {
	Tokens *auth.TokenManager
}

func NewRequireAuthMiddleware(tokens *auth.TokenManager) *RequireAuthMiddleware {
	return &RequireAuthMiddleware{Tokens: tokens}
}

// RequireAuth accepts the session token as "Authorization: Bearer <token>" or
// from the Authorization cookie. Tokens are verified without a store lookup.
func (m *RequireAuthMiddleware) RequireAuth(c *gin.Context) {
	tokenString := bearerToken(c.GetHeader("Authorization"))
	if tokenString == "" {
		tokenString, _ = c.Cookie(SessionCookieName)
	}
	if tokenString == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required", "success": false})
		return
	}

	claims, err := m.Tokens.Verify(tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token", "success": false})
		return
	}

	c.Set(claimsKey, claims)
	c.Next() // continue to the next handler
}

// RequireRole must run after RequireAuth
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFrom(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required", "success": false})
			return
		}
		for _, r := range roles {
			if claims.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden", "success": false})
	}
}

// ClaimsFrom returns the claims stored by RequireAuth, or nil
func ClaimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
