// Package store persists users and their pending challenges.
//
// Three backends share the same contracts: gorm over sqlite (default), MongoDB,
// and an in-memory store for development and tests. Reads and writes are not
// wrapped in transactions; concurrent writers to the same record follow
// last-write-wins.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/models"
)

var (
	// ErrNotFound is returned when no user or challenge matches the lookup
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when inserting a user whose email already exists
	ErrDuplicate = errors.New("duplicate email")
)

// UserUpdate lists the fields a Save may change; nil fields are left untouched
type UserUpdate struct {
	Password     *string
	IsVerified   *bool
	GoogleID     *string
	TwoFASecret  *string
	TwoFAEnabled *bool
	// TwoFALastStep is the last accepted TOTP time step
	TwoFALastStep *int64
}

// Users is the user record store
type Users interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Insert(ctx context.Context, u *models.User) error
	Save(ctx context.Context, id string, upd UserUpdate) error
	Delete(ctx context.Context, id string) error
	// DeleteUnverifiedBefore purges accounts that never confirmed their signup code
	DeleteUnverifiedBefore(ctx context.Context, before time.Time) (int64, error)
}

// Challenges stores at most one pending challenge per user
type Challenges interface {
	Get(ctx context.Context, userID string) (*models.Challenge, error)
	// Put replaces any challenge already stored for c.UserID
	Put(ctx context.Context, c *models.Challenge) error
	Delete(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Store bundles both repositories of one backend
type Store interface {
	Users() Users
	Challenges() Challenges
	Close(ctx context.Context) error
}

func (u UserUpdate) apply(user *models.User, now time.Time) {
	if u.Password != nil {
		user.Password = *u.Password
	}
	if u.IsVerified != nil {
		user.IsVerified = *u.IsVerified
	}
	if u.GoogleID != nil {
		user.GoogleID = *u.GoogleID
	}
	if u.TwoFASecret != nil {
		user.TwoFASecret = *u.TwoFASecret
	}
	if u.TwoFAEnabled != nil {
		user.TwoFAEnabled = *u.TwoFAEnabled
	}
	if u.TwoFALastStep != nil {
		user.TwoFALastStep = *u.TwoFALastStep
	}
	user.UpdatedAt = now
}

// fields maps the update onto column/document keys shared by gorm and Mongo
func (u UserUpdate) fields(now time.Time) map[string]any {
	f := map[string]any{"updated_at": now}
	if u.Password != nil {
		f["password"] = *u.Password
	}
	if u.IsVerified != nil {
		f["is_verified"] = *u.IsVerified
	}
	if u.GoogleID != nil {
		f["google_id"] = *u.GoogleID
	}
	if u.TwoFASecret != nil {
		f["two_fa_secret"] = *u.TwoFASecret
	}
	if u.TwoFAEnabled != nil {
		f["two_fa_enabled"] = *u.TwoFAEnabled
	}
	if u.TwoFALastStep != nil {
		f["two_fa_last_step"] = *u.TwoFALastStep
	}
	return f
}
