package meeting

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/meetscribe/meetscribe/internal/database"
	apperrors "github.com/meetscribe/meetscribe/internal/errors"
	"github.com/meetscribe/meetscribe/internal/logger"
	"github.com/meetscribe/meetscribe/internal/transcript"
)

var testSeq int

func newTestStore(t *testing.T) *Store {
	t.Helper()
	testSeq++
	cfg := database.Config{
		DSN:          fmt.Sprintf("file:meeting_test_%d?mode=memory&cache=shared", testSeq),
		MaxOpenConns: 1,
		AutoMigrate:  true,
		LogLevel:     "silent",
	}
	log := logger.NewDefault("meeting-test")
	db, err := database.Open(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.AutoMigrate(&Meeting{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewStore(db, log)
}

func newMeeting(userID uuid.UUID, title string) *Meeting {
	return &Meeting{
		UserID:    userID,
		Title:     title,
		StartTime: time.Now().Add(time.Hour),
	}
}

func TestCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	m := newMeeting(userID, "Sprint planning")
	m.Tags = []string{"planning", "team"}
	if err := store.Create(ctx, m); err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}
	if m.Status != StatusScheduled {
		t.Fatalf("expected default status %q, got %q", StatusScheduled, m.Status)
	}

	got, err := store.Get(ctx, userID, m.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Sprint planning" {
		t.Fatalf("unexpected title %q", got.Title)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "planning" {
		t.Fatalf("unexpected tags %v", got.Tags)
	}
}

func TestGetScopedToOwner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := uuid.New()

	m := newMeeting(owner, "Private sync")
	if err := store.Create(ctx, m); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := store.Get(ctx, uuid.New(), m.ID)
	if err == nil {
		t.Fatal("expected not found for non-owner")
	}
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestListFilterAndPagination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		m := newMeeting(userID, fmt.Sprintf("Weekly sync %d", i))
		m.StartTime = time.Now().Add(time.Duration(i) * time.Hour)
		if err := store.Create(ctx, m); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	done := newMeeting(userID, "Retro")
	done.Status = StatusCompleted
	done.Description = "Quarterly retrospective"
	if err := store.Create(ctx, done); err != nil {
		t.Fatalf("create retro: %v", err)
	}

	page, err := store.List(ctx, userID, ListFilter{Page: 1, Limit: 4})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 6 || len(page.Items) != 4 || page.Pages != 2 {
		t.Fatalf("unexpected page: total=%d items=%d pages=%d", page.Total, len(page.Items), page.Pages)
	}

	page2, err := store.List(ctx, userID, ListFilter{Page: 2, Limit: 4})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(page2.Items) != 2 {
		t.Fatalf("expected 2 items on page 2, got %d", len(page2.Items))
	}

	completed, err := store.List(ctx, userID, ListFilter{Status: StatusCompleted})
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if completed.Total != 1 || completed.Items[0].Title != "Retro" {
		t.Fatalf("unexpected completed listing: %+v", completed)
	}

	found, err := store.List(ctx, userID, ListFilter{Search: "retrospective"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if found.Total != 1 {
		t.Fatalf("expected 1 search hit, got %d", found.Total)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	old := newMeeting(userID, "Old")
	old.StartTime = time.Now().Add(-48 * time.Hour)
	recent := newMeeting(userID, "Recent")
	recent.StartTime = time.Now()
	for _, m := range []*Meeting{old, recent} {
		if err := store.Create(ctx, m); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	page, err := store.List(ctx, userID, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Items[0].Title != "Recent" {
		t.Fatalf("expected newest first, got %q", page.Items[0].Title)
	}
}

func TestSaveTranscriptRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	m := newMeeting(userID, "Standup")
	if err := store.Create(ctx, m); err != nil {
		t.Fatalf("create: %v", err)
	}

	utterances := []transcript.Utterance{
		{Text: "My name is Joe", Timestamp: 1000, IsFinal: true, SpeakerID: "Guest-1", SpeakerName: "Joe"},
		{Text: "Morning Joe", Timestamp: 2000, IsFinal: true, SpeakerID: "Guest-2", SpeakerName: "Speaker 2"},
	}
	names := map[string]string{"Guest-1": "Joe", "Guest-2": "Speaker 2"}
	if err := store.SaveTranscript(ctx, userID, m.ID, utterances, names); err != nil {
		t.Fatalf("save transcript: %v", err)
	}

	got, err := store.Get(ctx, userID, m.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Transcriptions) != 2 {
		t.Fatalf("expected 2 utterances, got %d", len(got.Transcriptions))
	}
	if got.Transcriptions[0].SpeakerName != "Joe" || !got.Transcriptions[0].IsFinal {
		t.Fatalf("unexpected first utterance %+v", got.Transcriptions[0])
	}
	if got.SpeakerNames["Guest-1"] != "Joe" {
		t.Fatalf("unexpected speaker names %v", got.SpeakerNames)
	}

	eng := transcript.NewEngine()
	eng.LoadFromPersisted(got.Transcriptions, got.SpeakerNames)
	flat := eng.FlattenForAnalysis()
	if !strings.Contains(flat, "Joe: My name is Joe") {
		t.Fatalf("flatten lost content:\n%s", flat)
	}
}

func TestSetStatusAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	m := newMeeting(userID, "Demo")
	if err := store.Create(ctx, m); err != nil {
		t.Fatalf("create: %v", err)
	}

	end := time.Now()
	if err := store.SetStatus(ctx, userID, m.ID, StatusCompleted, &end); err != nil {
		t.Fatalf("set status: %v", err)
	}
	got, err := store.Get(ctx, userID, m.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusCompleted || got.EndTime == nil {
		t.Fatalf("status not applied: %+v", got)
	}

	if err := store.Delete(ctx, userID, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, userID, m.ID); err == nil {
		t.Fatal("expected not found after delete")
	}
	if err := store.Delete(ctx, userID, m.ID); err == nil {
		t.Fatal("expected not found deleting twice")
	}
}
