package models

import (
	"crypto/subtle"
	"time"
)

// ChallengeKind tags the pending proof a user has to present
type ChallengeKind string

const (
	// ChallengeOTP is the 6-digit code gating signup verification and login
	ChallengeOTP ChallengeKind = "otp"
	// ChallengeReset is the random token mailed in a password reset link
	ChallengeReset ChallengeKind = "reset"
)

// Challenge is the single pending proof for a user, keyed by UserID.
// No record means no challenge; writing one replaces the previous one.
type Challenge struct {
	UserID    string        `gorm:"column:user_id;primaryKey" bson:"_id"`
	Kind      ChallengeKind `gorm:"column:kind;not null" bson:"kind"`
	Secret    string        `gorm:"column:secret;not null" bson:"secret"`
	ExpiresAt time.Time     `gorm:"column:expires_at;index" bson:"expires_at"`
	CreatedAt time.Time     `gorm:"column:created_at" bson:"created_at"`
}

// Expired reports whether the challenge can no longer be consumed at now
func (c *Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// SecretMatches compares in constant time and only against a challenge of the given kind
func (c *Challenge) SecretMatches(kind ChallengeKind, secret string) bool {
	if c == nil || c.Kind != kind || secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Secret), []byte(secret)) == 1
}
