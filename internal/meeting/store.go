package meeting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meetscribe/meetscribe/internal/database"
	apperrors "github.com/meetscribe/meetscribe/internal/errors"
	"github.com/meetscribe/meetscribe/internal/logger"
	"github.com/meetscribe/meetscribe/internal/transcript"
)

// ListFilter narrows and pages a meeting listing. All fields are optional.
type ListFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
}

// Page is one page of a meeting listing.
type Page struct {
	Items []Meeting `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
	Pages int       `json:"pages"`
}

// Store persists meetings. All queries are scoped to the owning user.
type Store struct {
	db  *database.DB
	log *logger.Logger
}

func NewStore(db *database.DB, log *logger.Logger) *Store {
	return &Store{db: db, log: log.WithComponent("meeting.store")}
}

// Create inserts a new meeting for the given owner.
func (s *Store) Create(ctx context.Context, m *Meeting) error {
	if m.Status == "" {
		m.Status = StatusScheduled
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperrors.DatabaseError(fmt.Errorf("create meeting: %w", err))
	}
	return nil
}

// Get returns the meeting with the given id owned by userID.
func (s *Store) Get(ctx context.Context, userID, id uuid.UUID) (*Meeting, error) {
	var m Meeting
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("meeting", id.String())
	}
	if err != nil {
		return nil, apperrors.DatabaseError(fmt.Errorf("get meeting: %w", err))
	}
	return &m, nil
}

// List returns a page of the user's meetings, newest start time first.
// Search matches title, description, and tags case-insensitively.
func (s *Store) List(ctx context.Context, userID uuid.UUID, f ListFilter) (*Page, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 10
	}

	q := s.db.WithContext(ctx).Model(&Meeting{}).Where("user_id = ?", userID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?",
			like, like, like,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, apperrors.DatabaseError(fmt.Errorf("count meetings: %w", err))
	}

	var items []Meeting
	err := q.Order("start_time DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&items).Error
	if err != nil {
		return nil, apperrors.DatabaseError(fmt.Errorf("list meetings: %w", err))
	}

	pages := int((total + int64(f.Limit) - 1) / int64(f.Limit))
	return &Page{
		Items: items,
		Total: total,
		Page:  f.Page,
		Limit: f.Limit,
		Pages: pages,
	}, nil
}

// Update saves the full meeting record. The meeting must already exist and
// belong to the user on the record.
func (s *Store) Update(ctx context.Context, m *Meeting) error {
	res := s.db.WithContext(ctx).
		Model(&Meeting{}).
		Where("id = ? AND user_id = ?", m.ID, m.UserID).
		Select("*").
		Omit("id", "user_id", "created_at").
		Updates(m)
	if res.Error != nil {
		return apperrors.DatabaseError(fmt.Errorf("update meeting: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("meeting", m.ID.String())
	}
	return nil
}

// SaveTranscript writes only the transcript-related columns. Used by
// autosave so concurrent metadata edits are not clobbered.
func (s *Store) SaveTranscript(ctx context.Context, userID, id uuid.UUID, utterances []transcript.Utterance, names map[string]string) error {
	res := s.db.WithContext(ctx).
		Model(&Meeting{}).
		Where("id = ? AND user_id = ?", id, userID).
		Select("transcriptions", "speaker_names").
		Updates(&Meeting{Transcriptions: utterances, SpeakerNames: names})
	if res.Error != nil {
		return apperrors.DatabaseError(fmt.Errorf("save transcript: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("meeting", id.String())
	}
	return nil
}

// SetStatus updates the meeting status and, when end is non-nil, the end time.
func (s *Store) SetStatus(ctx context.Context, userID, id uuid.UUID, status string, end *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if end != nil {
		updates["end_time"] = *end
	}
	res := s.db.WithContext(ctx).
		Model(&Meeting{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return apperrors.DatabaseError(fmt.Errorf("set meeting status: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("meeting", id.String())
	}
	return nil
}

// Delete soft-deletes the meeting.
func (s *Store) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Meeting{})
	if res.Error != nil {
		return apperrors.DatabaseError(fmt.Errorf("delete meeting: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("meeting", id.String())
	}
	return nil
}
