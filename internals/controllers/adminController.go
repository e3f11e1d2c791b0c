package controllers

import (
	"net/http"

	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/auth"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	Flow       *auth.FlowManager
	Production bool
}

func NewAdminController(flow *auth.FlowManager, production bool) *AdminController {
	return &AdminController{Flow: flow, Production: production}
}

func (a *AdminController) GetUser(c *gin.Context) {
	user, err := a.Flow.UserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, a.Production)
		return
	}
	ok(c, http.StatusOK, "User found", gin.H{"user": user})
}

// Health reports liveness for load balancers and the frontend
func Health(appName, environment string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "active",
			"environment": environment,
			"message":     appName + " API is running",
		})
	}
}

// NotFound is the catch-all for unknown routes
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":  "Route not found",
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
	})
}
