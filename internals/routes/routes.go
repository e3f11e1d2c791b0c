package routes

import (
	"time"

	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/auth"
	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/config"
	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/controllers"
	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/middleware"
	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps are the services the HTTP layer is built from
type Deps struct {
	Config *config.Config
	Flow   *auth.FlowManager
	Tokens *auth.TokenManager
}

func SetupRouter(deps Deps) *gin.Engine {
	cfg := deps.Config
	production := cfg.IsProduction()

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	cookies := controllers.SessionCookies{Config: cfg.Cookie}

	// Instantiate the "Class"
	authMiddleware := middleware.NewRequireAuthMiddleware(deps.Tokens)
	authCtrl := controllers.NewAuthController(deps.Flow, cookies, production)
	googleAuthCtrl := controllers.NewGoogleAuthController(deps.Flow, cfg.Google, cookies, production)
	mfaCtrl := controllers.NewMFAController(deps.Flow, production)
	adminCtrl := controllers.NewAdminController(deps.Flow, production)

	health := controllers.Health(cfg.AppName, cfg.Environment)
	r.GET("/", health)

	api := r.Group("/api")
	api.GET("/health", health)

	public := api.Group("/auth")
	{
		public.POST("/signup", authCtrl.Signup)
		public.POST("/verify-otp", authCtrl.VerifySignup)
		public.POST("/resend-otp", authCtrl.ResendSignupOTP)

		public.POST("/login", authCtrl.Login)
		public.POST("/verify-login-otp", authCtrl.VerifyLogin)

		public.POST("/forgot-password", authCtrl.ForgotPassword)
		public.POST("/reset-password", authCtrl.ResetPassword)

		public.POST("/google", googleAuthCtrl.TokenLogin)
		public.GET("/google", googleAuthCtrl.Login)
		public.GET("/google/callback", googleAuthCtrl.Callback)

		public.POST("/logout", authCtrl.Logout)
	}

	protected := api.Group("/auth")
	protected.Use(authMiddleware.RequireAuth)
	{
		protected.GET("/me", authCtrl.Me)
		protected.POST("/2fa/setup", mfaCtrl.Setup2FA)
		protected.POST("/2fa/activate", mfaCtrl.Activate2FA)
	}

	admin := api.Group("/admin")
	admin.Use(authMiddleware.RequireAuth, middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/users/:id", adminCtrl.GetUser)
	}

	r.NoRoute(controllers.NotFound)
	return r
}
