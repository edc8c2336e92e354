package meeting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/meetscribe/meetscribe/internal/errors"
	"github.com/meetscribe/meetscribe/internal/user"
)

// RecordedSpans returns the start/end pair of every meeting the user owns,
// for recording quota accounting.
func (s *Store) RecordedSpans(ctx context.Context, userID uuid.UUID) ([]user.Span, error) {
	var rows []Meeting
	err := s.db.WithContext(ctx).
		Select("start_time", "end_time").
		Where("user_id = ?", userID).
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.DatabaseError(fmt.Errorf("load meeting spans: %w", err))
	}
	spans := make([]user.Span, 0, len(rows))
	for _, m := range rows {
		spans = append(spans, user.Span{Start: m.StartTime, End: m.EndTime})
	}
	return spans, nil
}

// CloseOpenSpans sets the end time of completed meetings that were left
// without one, typically after a client disconnected mid-recording.
func (s *Store) CloseOpenSpans(ctx context.Context, userID uuid.UUID, end time.Time) (int, error) {
	res := s.db.WithContext(ctx).
		Model(&Meeting{}).
		Where("user_id = ? AND end_time IS NULL AND status IN ?", userID,
			[]string{StatusInProgress, StatusCompleted}).
		Updates(map[string]interface{}{
			"end_time": end,
			"status":   StatusCompleted,
		})
	if res.Error != nil {
		return 0, apperrors.DatabaseError(fmt.Errorf("close open spans: %w", res.Error))
	}
	return int(res.RowsAffected), nil
}
