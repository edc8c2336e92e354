// Package meeting defines the meeting record and its persistence store.
// A meeting owns the transcript, speaker names, and analysis produced by a
// recording session.
package meeting

import (
	"time"

	"github.com/google/uuid"

	"github.com/meetscribe/meetscribe/internal/database"
	"github.com/meetscribe/meetscribe/internal/summarize"
	"github.com/meetscribe/meetscribe/internal/transcript"
)

// Meeting status values.
const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// ValidStatus reports whether s is a recognized meeting status.
func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Meeting is a scheduled or recorded meeting owned by a user. Transcript,
// speaker names, and summary are stored as JSON columns so the persisted
// shape matches what the client sends back on reload.
type Meeting struct {
	database.BaseModel
	UserID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"userId"`
	Title       string     `gorm:"size:100;not null" json:"title"`
	Description string     `gorm:"size:500" json:"description"`
	StartTime   time.Time  `gorm:"not null" json:"startTime"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	Status      string     `gorm:"size:20;index;default:scheduled" json:"status"`
	Tags        []string   `gorm:"serializer:json" json:"tags"`

	Transcriptions []transcript.Utterance `gorm:"serializer:json" json:"transcriptions"`
	SpeakerNames   map[string]string      `gorm:"serializer:json" json:"speakerNames"`
	Summary        *summarize.Analysis    `gorm:"serializer:json" json:"summary,omitempty"`
}

// TableName overrides the default pluralization.
func (Meeting) TableName() string { return "meetings" }
