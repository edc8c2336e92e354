// Package user holds user accounts, subscription limits, and recording-time
// usage tracking.
package user

import (
	"github.com/google/uuid"

	"github.com/meetscribe/meetscribe/internal/database"
)

// Subscription plans.
const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// Subscription statuses.
const (
	SubscriptionActive    = "active"
	SubscriptionInactive  = "inactive"
	SubscriptionCancelled = "cancelled"
)

// DefaultRecordingTimeLimit is the free-plan recording allowance in seconds.
const DefaultRecordingTimeLimit = 10800

// User is an account that owns meetings and recording quota.
type User struct {
	database.BaseModel
	Name         string `gorm:"size:60;not null" json:"name"`
	Email        string `gorm:"size:254;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	RecordingTimeUsed  int `gorm:"default:0" json:"recordingTimeUsed"`
	RecordingTimeLimit int `gorm:"default:10800" json:"recordingTimeLimit"`

	SubscriptionPlan   string `gorm:"size:20;default:free" json:"subscriptionPlan"`
	SubscriptionStatus string `gorm:"size:20;default:active" json:"subscriptionStatus"`
}

func (User) TableName() string { return "users" }

// Usage service names.
const (
	ServiceSpeech  = "speech"
	ServiceMeeting = "meeting"
	ServiceAI      = "ai"
)

// ValidService reports whether s is a trackable usage service.
func ValidService(s string) bool {
	switch s {
	case ServiceSpeech, ServiceMeeting, ServiceAI:
		return true
	}
	return false
}

// Usage is one tracked consumption event against a service.
type Usage struct {
	database.BaseModel
	UserID          uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	Service         string    `gorm:"size:20;index;not null" json:"service"`
	DurationSeconds int       `gorm:"default:0" json:"durationSeconds"`
}

func (Usage) TableName() string { return "usage_records" }
