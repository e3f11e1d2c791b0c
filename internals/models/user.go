package models

import "time"

// Role is the authorization level embedded into session tokens
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is both the gorm row and the Mongo document for an account.
// Credential and second-factor secrets never leave the server (json:"-").
type User struct {
	ID        string `gorm:"column:id;primaryKey" bson:"_id" json:"id"`
	FirstName string `gorm:"column:first_name" bson:"first_name" json:"firstName"`
	LastName  string `gorm:"column:last_name" bson:"last_name" json:"lastName"`
	Email     string `gorm:"column:email;uniqueIndex;not null" bson:"email" json:"email"`
	Password  string `gorm:"column:password" bson:"password,omitempty" json:"-"` // bcrypt hash, empty for Google-only accounts
	Gender    string `gorm:"column:gender" bson:"gender,omitempty" json:"gender,omitempty"`
	Phone     string `gorm:"column:phone" bson:"phone,omitempty" json:"phone,omitempty"`

	IsVerified bool `gorm:"column:is_verified;default:false;index" bson:"is_verified" json:"isVerified"`
	Role       Role `gorm:"column:role;default:user" bson:"role" json:"role"`

	// OAuth2 / Social Login
	GoogleID string `gorm:"column:google_id;index" bson:"google_id,omitempty" json:"-"`

	// Multi-Factor Authentication
	TwoFAEnabled bool   `gorm:"column:two_fa_enabled;default:false" bson:"two_fa_enabled" json:"twoFAEnabled"`
	TwoFASecret  string `gorm:"column:two_fa_secret" bson:"two_fa_secret,omitempty" json:"-"`
	// TwoFALastStep blocks replay of an authenticator code inside its window
	TwoFALastStep int64 `gorm:"column:two_fa_last_step;default:0" bson:"two_fa_last_step" json:"-"`

	CreatedAt time.Time `gorm:"column:created_at" bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" bson:"updated_at" json:"updatedAt"`
}

// PublicUser is the only shape of a user that is serialized to clients
type PublicUser struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}

// Public projects the user onto its client-safe fields
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
	}
}
