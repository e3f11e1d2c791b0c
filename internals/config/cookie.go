package config

// CookieConfig defines the shared security baseline for all cookies issued by the server
type CookieConfig struct {
	// Domain for the cookies
	Domain string `env:"COOKIE_DOMAIN"`
	// IsSecure indicates if cookies should be marked as Secure
	IsSecure bool `env:"SECURE_COOKIE" envDefault:"true"`
	// HttpOnly is always true; the session cookie must never be readable by scripts
	HttpOnly bool
}
