package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meetscribe/meetscribe/internal/database"
	apperrors "github.com/meetscribe/meetscribe/internal/errors"
	"github.com/meetscribe/meetscribe/internal/logger"
)

// Store persists users and usage records.
type Store struct {
	db  *database.DB
	log *logger.Logger
}

func NewStore(db *database.DB, log *logger.Logger) *Store {
	return &Store{db: db, log: log.WithComponent("user.store")}
}

// Create inserts a new user. Emails are stored lowercased.
func (s *Store) Create(ctx context.Context, u *User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.RecordingTimeLimit == 0 {
		u.RecordingTimeLimit = DefaultRecordingTimeLimit
	}
	if u.SubscriptionPlan == "" {
		u.SubscriptionPlan = PlanFree
	}
	if u.SubscriptionStatus == "" {
		u.SubscriptionStatus = SubscriptionActive
	}
	err := s.db.WithContext(ctx).Create(u).Error
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return apperrors.AlreadyExists("user")
		}
		return apperrors.DatabaseError(fmt.Errorf("create user: %w", err))
	}
	return nil
}

// Get returns the user with the given id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("user", id.String())
	}
	if err != nil {
		return nil, apperrors.DatabaseError(fmt.Errorf("get user: %w", err))
	}
	return &u, nil
}

// GetByEmail returns the user with the given email, case-insensitively.
func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).
		First(&u, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("user", email)
	}
	if err != nil {
		return nil, apperrors.DatabaseError(fmt.Errorf("get user by email: %w", err))
	}
	return &u, nil
}

// SetRecordingTimeUsed writes the recomputed usage counter.
func (s *Store) SetRecordingTimeUsed(ctx context.Context, id uuid.UUID, seconds int) error {
	res := s.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Update("recording_time_used", seconds)
	if res.Error != nil {
		return apperrors.DatabaseError(fmt.Errorf("set recording time: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("user", id.String())
	}
	return nil
}

// TrackUsage records one consumption event.
func (s *Store) TrackUsage(ctx context.Context, rec *Usage) error {
	if !ValidService(rec.Service) {
		return apperrors.InvalidInput("service", "must be one of speech, meeting, ai")
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return apperrors.DatabaseError(fmt.Errorf("track usage: %w", err))
	}
	return nil
}

// UsageTotal sums tracked duration for a user and service.
func (s *Store) UsageTotal(ctx context.Context, userID uuid.UUID, service string) (int, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&Usage{}).
		Where("user_id = ? AND service = ?", userID, service).
		Select("COALESCE(SUM(duration_seconds), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.DatabaseError(fmt.Errorf("sum usage: %w", err))
	}
	return int(total), nil
}
