package user

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/meetscribe/meetscribe/internal/database"
	"github.com/meetscribe/meetscribe/internal/logger"
)

var testSeq int

func newTestStore(t *testing.T) *Store {
	t.Helper()
	testSeq++
	cfg := database.Config{
		DSN:          fmt.Sprintf("file:user_test_%d?mode=memory&cache=shared", testSeq),
		MaxOpenConns: 1,
		AutoMigrate:  true,
		LogLevel:     "silent",
	}
	log := logger.NewDefault("user-test")
	db, err := database.Open(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.AutoMigrate(&User{}, &Usage{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewStore(db, log)
}

func createTestUser(t *testing.T, store *Store) *User {
	t.Helper()
	u := &User{Name: "Avery", Email: fmt.Sprintf("avery%d@example.com", testSeq), PasswordHash: "x"}
	if err := store.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

type fakeMeetingTimes struct {
	spans     []Span
	closeErr  error
	closedCnt int
}

func (f *fakeMeetingTimes) RecordedSpans(_ context.Context, _ uuid.UUID) ([]Span, error) {
	return f.spans, nil
}

func (f *fakeMeetingTimes) CloseOpenSpans(_ context.Context, _ uuid.UUID, _ time.Time) (int, error) {
	if f.closeErr != nil {
		return 0, f.closeErr
	}
	n := 0
	now := time.Now()
	for i := range f.spans {
		if f.spans[i].End == nil {
			f.spans[i].End = &now
			n++
		}
	}
	f.closedCnt += n
	return n, nil
}

func spanOf(start time.Time, dur time.Duration) Span {
	end := start.Add(dur)
	return Span{Start: start, End: &end}
}

func TestReportComputesFromSpans(t *testing.T) {
	store := newTestStore(t)
	u := createTestUser(t, store)
	start := time.Now().Add(-2 * time.Hour)
	meetings := &fakeMeetingTimes{spans: []Span{
		spanOf(start, 30*time.Minute),
		spanOf(start.Add(time.Hour), 15*time.Minute),
		{Start: start},
	}}

	svc := NewRecordingTimeService(store, meetings, logger.NewDefault("test"))
	report, err := svc.Report(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	wantUsed := int((45 * time.Minute) / time.Second)
	if report.TimeUsed != wantUsed {
		t.Fatalf("time used = %d, want %d", report.TimeUsed, wantUsed)
	}
	if report.TimeLimit != DefaultRecordingTimeLimit {
		t.Fatalf("time limit = %d, want %d", report.TimeLimit, DefaultRecordingTimeLimit)
	}
	if report.RemainingTime != DefaultRecordingTimeLimit-wantUsed {
		t.Fatalf("remaining = %d", report.RemainingTime)
	}
	if report.PercentageUsed <= 0 || report.PercentageUsed >= 100 {
		t.Fatalf("percentage = %f", report.PercentageUsed)
	}
}

func TestReportReconcilesStoredCounter(t *testing.T) {
	store := newTestStore(t)
	u := createTestUser(t, store)
	meetings := &fakeMeetingTimes{spans: []Span{spanOf(time.Now().Add(-time.Hour), 10*time.Minute)}}

	svc := NewRecordingTimeService(store, meetings, logger.NewDefault("test"))
	if _, err := svc.Report(context.Background(), u.ID); err != nil {
		t.Fatalf("report: %v", err)
	}

	reloaded, err := store.Get(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reloaded.RecordingTimeUsed != 600 {
		t.Fatalf("stored counter = %d, want 600", reloaded.RecordingTimeUsed)
	}
}

func TestConsumeBackfillsAndTracksUsage(t *testing.T) {
	store := newTestStore(t)
	u := createTestUser(t, store)
	meetings := &fakeMeetingTimes{spans: []Span{{Start: time.Now().Add(-20 * time.Minute)}}}

	svc := NewRecordingTimeService(store, meetings, logger.NewDefault("test"))
	report, err := svc.Consume(context.Background(), u.ID, 120)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if meetings.closedCnt != 1 {
		t.Fatalf("expected 1 backfilled span, got %d", meetings.closedCnt)
	}
	if report.TimeUsed == 0 {
		t.Fatal("expected non-zero time used after backfill")
	}

	total, err := store.UsageTotal(context.Background(), u.ID, ServiceSpeech)
	if err != nil {
		t.Fatalf("usage total: %v", err)
	}
	if total != 120 {
		t.Fatalf("usage total = %d, want 120", total)
	}
}

func TestConsumeRejectsNegativeDuration(t *testing.T) {
	store := newTestStore(t)
	u := createTestUser(t, store)
	svc := NewRecordingTimeService(store, &fakeMeetingTimes{}, logger.NewDefault("test"))

	if _, err := svc.Consume(context.Background(), u.ID, -5); err == nil {
		t.Fatal("expected error for negative duration")
	}
}

func TestAllowedAtLimit(t *testing.T) {
	store := newTestStore(t)
	u := createTestUser(t, store)
	meetings := &fakeMeetingTimes{spans: []Span{
		spanOf(time.Now().Add(-4*time.Hour), time.Duration(DefaultRecordingTimeLimit)*time.Second),
	}}

	svc := NewRecordingTimeService(store, meetings, logger.NewDefault("test"))
	ok, report, err := svc.Allowed(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("allowed: %v", err)
	}
	if ok {
		t.Fatal("expected quota exhausted")
	}
	if report.RemainingTime != 0 || report.PercentageUsed != 100 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := &User{Name: "A", Email: "dup@example.com", PasswordHash: "x"}
	if err := store.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}
	b := &User{Name: "B", Email: "Dup@Example.com", PasswordHash: "x"}
	if err := store.Create(ctx, b); err == nil {
		t.Fatal("expected duplicate email error")
	}
}

func TestTrackUsageRejectsUnknownService(t *testing.T) {
	store := newTestStore(t)
	u := createTestUser(t, store)

	err := store.TrackUsage(context.Background(), &Usage{UserID: u.ID, Service: "video"})
	if err == nil {
		t.Fatal("expected invalid service error")
	}
}
