package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps users and challenges in a relational database through gorm
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// Migrate creates or updates the tables of both repositories
func (s *GormStore) Migrate() error {
	return s.DB.AutoMigrate(&models.User{}, &models.Challenge{})
}

func (s *GormStore) Users() Users           { return gormUsers{s.DB} }
func (s *GormStore) Challenges() Challenges { return gormChallenges{s.DB} }

func (s *GormStore) Close(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormUsers struct{ db *gorm.DB }

func (r gormUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, gormErr(err)
	}
	return &user, nil
}

func (r gormUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, gormErr(err)
	}
	return &user, nil
}

func (r gormUsers) Insert(ctx context.Context, u *models.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r gormUsers) Save(ctx context.Context, id string, upd UserUpdate) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(upd.fields(time.Now()))
	if result.Error != nil {
		return fmt.Errorf("save user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r gormUsers) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (r gormUsers) DeleteUnverifiedBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("is_verified = ? AND created_at < ?", false, before).Delete(&models.User{})
	return result.RowsAffected, result.Error
}

type gormChallenges struct{ db *gorm.DB }

func (r gormChallenges) Get(ctx context.Context, userID string) (*models.Challenge, error) {
	var c models.Challenge
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, gormErr(err)
	}
	return &c, nil
}

func (r gormChallenges) Put(ctx context.Context, c *models.Challenge) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	// One row per user: a new challenge overwrites kind, secret and expiry together
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"kind", "secret", "expires_at", "created_at"}),
	}).Create(c).Error
	if err != nil {
		return fmt.Errorf("put challenge: %w", err)
	}
	return nil
}

func (r gormChallenges) Delete(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Challenge{}).Error
}

func (r gormChallenges) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", before).Delete(&models.Challenge{})
	return result.RowsAffected, result.Error
}

func gormErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
