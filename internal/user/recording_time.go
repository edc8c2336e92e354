package user

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/meetscribe/meetscribe/internal/errors"
	"github.com/meetscribe/meetscribe/internal/logger"
)

// Span is the recorded start and end of one meeting. End is nil while the
// meeting is still open.
type Span struct {
	Start time.Time
	End   *time.Time
}

// MeetingTimes supplies recorded meeting spans for quota accounting.
type MeetingTimes interface {
	// RecordedSpans returns start/end pairs for every meeting the user owns.
	RecordedSpans(ctx context.Context, userID uuid.UUID) ([]Span, error)
	// CloseOpenSpans backfills the end time of meetings left open and
	// returns how many were closed.
	CloseOpenSpans(ctx context.Context, userID uuid.UUID, end time.Time) (int, error)
}

// RecordingTimeReport is the quota snapshot returned to clients.
type RecordingTimeReport struct {
	TimeUsed       int     `json:"timeUsed"`
	TimeLimit      int     `json:"timeLimit"`
	RemainingTime  int     `json:"remainingTime"`
	PercentageUsed float64 `json:"percentageUsed"`
}

// RecordingTimeService reconciles the per-user recording counter against the
// durations actually recorded on meetings. The stored counter is a cache;
// meeting spans are the source of truth.
type RecordingTimeService struct {
	store    *Store
	meetings MeetingTimes
	log      *logger.Logger
	now      func() time.Time
}

func NewRecordingTimeService(store *Store, meetings MeetingTimes, log *logger.Logger) *RecordingTimeService {
	return &RecordingTimeService{
		store:    store,
		meetings: meetings,
		log:      log.WithComponent("recording-time"),
		now:      time.Now,
	}
}

// Report recomputes time used from meeting spans, reconciles the stored
// counter when it has drifted, and returns the quota snapshot.
func (s *RecordingTimeService) Report(ctx context.Context, userID uuid.UUID) (*RecordingTimeReport, error) {
	u, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	spans, err := s.meetings.RecordedSpans(ctx, userID)
	if err != nil {
		return nil, err
	}
	used := sumSpans(spans)

	if used != u.RecordingTimeUsed {
		s.log.Info("Reconciling recording time counter", map[string]interface{}{
			logger.FieldUserID: userID.String(),
			"stored":           u.RecordingTimeUsed,
			"computed":         used,
		})
		if err := s.store.SetRecordingTimeUsed(ctx, userID, used); err != nil {
			return nil, err
		}
	}

	return buildReport(used, u.RecordingTimeLimit), nil
}

// Consume closes any meetings left without an end time, records the reported
// speech usage, and returns the refreshed quota snapshot.
func (s *RecordingTimeService) Consume(ctx context.Context, userID uuid.UUID, seconds int) (*RecordingTimeReport, error) {
	if seconds < 0 {
		return nil, apperrors.InvalidInput("duration", "must not be negative")
	}

	closed, err := s.meetings.CloseOpenSpans(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	if closed > 0 {
		s.log.Info("Backfilled open meeting end times", map[string]interface{}{
			logger.FieldUserID: userID.String(),
			"closed":           closed,
		})
	}

	if seconds > 0 {
		err = s.store.TrackUsage(ctx, &Usage{
			UserID:          userID,
			Service:         ServiceSpeech,
			DurationSeconds: seconds,
		})
		if err != nil {
			return nil, err
		}
	}

	return s.Report(ctx, userID)
}

// Allowed reports whether the user still has recording quota left.
func (s *RecordingTimeService) Allowed(ctx context.Context, userID uuid.UUID) (bool, *RecordingTimeReport, error) {
	report, err := s.Report(ctx, userID)
	if err != nil {
		return false, nil, err
	}
	return report.RemainingTime > 0, report, nil
}

func sumSpans(spans []Span) int {
	total := 0
	for _, span := range spans {
		if span.End == nil || span.End.Before(span.Start) {
			continue
		}
		total += int(span.End.Sub(span.Start) / time.Second)
	}
	return total
}

func buildReport(used, limit int) *RecordingTimeReport {
	if limit <= 0 {
		limit = DefaultRecordingTimeLimit
	}
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	pct := float64(used) / float64(limit) * 100
	if pct > 100 {
		pct = 100
	}
	return &RecordingTimeReport{
		TimeUsed:       used,
		TimeLimit:      limit,
		RemainingTime:  remaining,
		PercentageUsed: pct,
	}
}
