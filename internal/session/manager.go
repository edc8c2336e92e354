package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/meetscribe/meetscribe/internal/errors"
	"github.com/meetscribe/meetscribe/internal/logger"
	"github.com/meetscribe/meetscribe/internal/meeting"
	"github.com/meetscribe/meetscribe/internal/speech"
	"github.com/meetscribe/meetscribe/internal/transcript"
	"github.com/meetscribe/meetscribe/internal/user"
)

// MeetingStore is the persistence surface the manager needs.
type MeetingStore interface {
	TranscriptStore
	Get(ctx context.Context, userID, id uuid.UUID) (*meeting.Meeting, error)
}

// QuotaTracker accounts recording time against the user's allowance.
type QuotaTracker interface {
	Allowed(ctx context.Context, userID uuid.UUID) (bool, *user.RecordingTimeReport, error)
	Consume(ctx context.Context, userID uuid.UUID, seconds int) (*user.RecordingTimeReport, error)
}

// Manager tracks the active recording session per meeting. A meeting has at
// most one live session at a time.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	provider speech.Provider
	store    MeetingStore
	hub      Broadcaster
	quota    QuotaTracker
	log      *logger.Logger
	cfg      Config
}

func NewManager(provider speech.Provider, store MeetingStore, hub Broadcaster, quota QuotaTracker, log *logger.Logger, cfg Config) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		provider: provider,
		store:    store,
		hub:      hub,
		quota:    quota,
		log:      log.WithComponent("session.manager"),
		cfg:      cfg,
	}
}

// Start begins recording for the meeting. It verifies ownership and remaining
// quota, opens the speech stream, and marks the meeting in progress.
func (m *Manager) Start(ctx context.Context, userID, meetingID uuid.UUID, speechCfg speech.Config) (*Session, error) {
	if _, err := m.store.Get(ctx, userID, meetingID); err != nil {
		return nil, err
	}

	ok, report, err := m.quota.Allowed(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Forbidden("Recording time limit reached.").
			WithDetail("timeLimit", report.TimeLimit).
			WithDetail("timeUsed", report.TimeUsed)
	}

	m.mu.Lock()
	if _, exists := m.sessions[meetingID]; exists {
		m.mu.Unlock()
		return nil, apperrors.Conflict("A recording is already in progress for this meeting.")
	}
	m.mu.Unlock()

	speechCfg.ApplyDefaults()
	if err := speechCfg.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	stream, err := m.provider.Start(ctx, speechCfg)
	if err != nil {
		return nil, apperrors.ExternalServiceError(m.provider.Name(), err)
	}

	s := newSession(meetingID, userID, stream, m.store, m.hub, m.log, m.cfg)

	m.mu.Lock()
	if _, exists := m.sessions[meetingID]; exists {
		m.mu.Unlock()
		_ = stream.Stop(ctx)
		return nil, apperrors.Conflict("A recording is already in progress for this meeting.")
	}
	m.sessions[meetingID] = s
	m.mu.Unlock()

	if err := m.store.SetStatus(ctx, userID, meetingID, meeting.StatusInProgress, nil); err != nil {
		m.log.WithError(err).Warn("Failed to mark meeting in progress", map[string]interface{}{
			logger.FieldMeetingID: meetingID.String(),
		})
	}

	s.start()
	m.log.Info("Recording started", map[string]interface{}{
		logger.FieldMeetingID: meetingID.String(),
		logger.FieldUserID:    userID.String(),
	})
	return s, nil
}

// Stop ends the meeting's active session, persists the final transcript, and
// charges the recorded duration against the user's quota.
func (m *Manager) Stop(ctx context.Context, userID, meetingID uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.sessions[meetingID]
	if ok {
		delete(m.sessions, meetingID)
	}
	m.mu.Unlock()

	if !ok {
		return apperrors.NotFound("recording session", meetingID.String())
	}
	if s.userID != userID {
		return apperrors.Forbidden("You do not own this recording.")
	}

	stopCtx, cancel := context.WithTimeout(ctx, m.cfg.StopTimeout)
	defer cancel()
	err := s.stop(stopCtx)

	seconds := int(s.Elapsed() / time.Second)
	if _, quotaErr := m.quota.Consume(ctx, userID, seconds); quotaErr != nil {
		m.log.WithError(quotaErr).Warn("Failed to record usage", map[string]interface{}{
			logger.FieldMeetingID: meetingID.String(),
		})
	}
	return err
}

// Active returns the live session for a meeting, if any.
func (m *Manager) Active(meetingID uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[meetingID]
	return s, ok
}

// RenameSpeaker renames a speaker on the meeting. While a session is live the
// engine rejects the rename; otherwise the persisted transcript is rewritten.
func (m *Manager) RenameSpeaker(ctx context.Context, userID, meetingID uuid.UUID, speakerID, newName string) error {
	// Owner-scoped lookup first so a non-owner cannot tell a live session
	// apart from a missing meeting.
	mt, err := m.store.Get(ctx, userID, meetingID)
	if err != nil {
		return err
	}

	if s, ok := m.Active(meetingID); ok {
		return s.engine.RenameSpeaker(speakerID, newName)
	}

	eng := newEngineFromMeeting(mt)
	if err := eng.RenameSpeaker(speakerID, newName); err != nil {
		return err
	}
	return m.store.SaveTranscript(ctx, userID, meetingID, eng.Utterances(), eng.SpeakerNames())
}

// Flatten returns the analysis-ready plain transcript for the meeting, using
// the live engine when a session is active and the persisted record otherwise.
func (m *Manager) Flatten(ctx context.Context, userID, meetingID uuid.UUID) (string, error) {
	mt, err := m.store.Get(ctx, userID, meetingID)
	if err != nil {
		return "", err
	}

	if s, ok := m.Active(meetingID); ok {
		return s.engine.FlattenForAnalysis(), nil
	}
	return newEngineFromMeeting(mt).FlattenForAnalysis(), nil
}

// StopAll stops every live session. Used during shutdown.
func (m *Manager) StopAll(ctx context.Context) {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		sessions = append(sessions, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		if err := s.stop(ctx); err != nil {
			m.log.WithError(err).Error("Failed to stop session during shutdown", map[string]interface{}{
				logger.FieldMeetingID: s.meetingID.String(),
			})
		}
	}
}

func newEngineFromMeeting(mt *meeting.Meeting) *transcript.Engine {
	eng := transcript.NewEngine()
	eng.LoadFromPersisted(mt.Transcriptions, mt.SpeakerNames)
	return eng
}
