package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/meetscribe/meetscribe/internal/logger"
	"github.com/meetscribe/meetscribe/internal/meeting"
	"github.com/meetscribe/meetscribe/internal/speech"
	"github.com/meetscribe/meetscribe/internal/sse"
	"github.com/meetscribe/meetscribe/internal/transcript"
)

// TranscriptStore persists the in-progress and final transcript of a session.
type TranscriptStore interface {
	SaveTranscript(ctx context.Context, userID, meetingID uuid.UUID, utterances []transcript.Utterance, names map[string]string) error
	SetStatus(ctx context.Context, userID, meetingID uuid.UUID, status string, end *time.Time) error
}

// Broadcaster fans out event payloads to subscribed clients.
type Broadcaster interface {
	BroadcastToPattern(pattern string, data []byte)
}

// Session is one live recording for a meeting. It owns the transcript engine
// and the speech stream, consumes recognition events on a single goroutine,
// and persists the transcript on a fixed interval.
type Session struct {
	meetingID uuid.UUID
	userID    uuid.UUID
	engine    *transcript.Engine
	stream    speech.Stream
	store     TranscriptStore
	hub       Broadcaster
	log       *logger.Logger
	cfg       Config

	startedAt time.Time
	// saving guards against overlapping autosaves when the store is slow.
	saving   atomic.Bool
	saveWG   sync.WaitGroup
	stopOnce sync.Once
	done     chan struct{}
	loopDone chan struct{}
}

func newSession(meetingID, userID uuid.UUID, stream speech.Stream, store TranscriptStore, hub Broadcaster, log *logger.Logger, cfg Config) *Session {
	s := &Session{
		meetingID: meetingID,
		userID:    userID,
		engine:    transcript.NewEngine(),
		stream:    stream,
		store:     store,
		hub:       hub,
		log: log.WithComponent("session").WithFields(map[string]interface{}{
			logger.FieldMeetingID: meetingID.String(),
		}),
		cfg:       cfg,
		startedAt: time.Now(),
		done:      make(chan struct{}),
		loopDone:  make(chan struct{}),
	}
	s.engine.OnNameDetected(s.notifyNameDetected)
	return s
}

// start begins the recording and launches the event loop.
func (s *Session) start() {
	s.engine.StartRecording()
	go s.run()
}

// MeetingID returns the meeting this session records.
func (s *Session) MeetingID() uuid.UUID { return s.meetingID }

// Engine exposes the session's transcript engine.
func (s *Session) Engine() *transcript.Engine { return s.engine }

// Elapsed returns how long the session has been recording.
func (s *Session) Elapsed() time.Duration { return time.Since(s.startedAt) }

// run consumes recognition events until the stream closes or the session is
// stopped. Autosave ticks are handled on the same goroutine; the save itself
// runs off-loop so a slow store never stalls event handling.
func (s *Session) run() {
	defer close(s.loopDone)

	ticker := time.NewTicker(s.cfg.AutosaveInterval)
	defer ticker.Stop()

	events := s.stream.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.handleEvent(ev)
		case <-ticker.C:
			s.autosave()
		case <-s.done:
			return
		}
	}
}

func (s *Session) handleEvent(ev transcript.Event) {
	s.engine.HandleEvent(ev)
	s.broadcast(sse.EventTypeTranscript, map[string]interface{}{
		"meetingId":         s.meetingID.String(),
		"transcriptions":    s.engine.Utterances(),
		"speakerIdentified": s.engine.SpeakerIdentified(),
	})
}

func (s *Session) notifyNameDetected(speakerID, name string) {
	s.log.Info("Speaker name detected", map[string]interface{}{
		logger.FieldSpeakerID: speakerID,
		"name":                name,
	})
	s.broadcast(sse.EventTypeNameDetected, map[string]interface{}{
		"meetingId": s.meetingID.String(),
		"speakerId": speakerID,
		"name":      name,
	})
}

// autosave persists the current transcript. A save already in flight means
// this tick is skipped; the next tick picks up the newer state. A failed save
// is reported but never mutates engine state, so no utterances are lost.
func (s *Session) autosave() {
	if s.engine.Empty() {
		return
	}
	if !s.saving.CompareAndSwap(false, true) {
		s.log.Debug("Autosave skipped, previous save still in flight")
		return
	}
	utterances := s.engine.Utterances()
	names := s.engine.SpeakerNames()
	s.saveWG.Add(1)
	go func() {
		defer s.saveWG.Done()
		defer s.saving.Store(false)
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.StopTimeout)
		defer cancel()
		if err := s.save(ctx, utterances, names); err != nil {
			s.log.WithError(err).Error("Autosave failed")
			s.broadcast(sse.EventTypeSaveError, map[string]interface{}{
				"meetingId": s.meetingID.String(),
				"error":     "Failed to save transcript. Recording continues.",
			})
		}
	}()
}

func (s *Session) save(ctx context.Context, utterances []transcript.Utterance, names map[string]string) error {
	return s.store.SaveTranscript(ctx, s.userID, s.meetingID, utterances, names)
}

// stop tears down the stream, promotes remaining interim utterances, performs
// the final save, and marks the meeting completed. Safe to call more than
// once; later calls return the first outcome.
func (s *Session) stop(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		if streamErr := s.stream.Stop(ctx); streamErr != nil {
			s.log.WithError(streamErr).Warn("Speech stream teardown reported an error")
		}
		close(s.done)
		<-s.loopDone

		// An autosave still in flight carries an older snapshot; let it land
		// before the final save so it cannot overwrite the complete transcript.
		s.saveWG.Wait()

		s.engine.StopRecording()

		if saveErr := s.save(ctx, s.engine.Utterances(), s.engine.SpeakerNames()); saveErr != nil {
			err = fmt.Errorf("final save: %w", saveErr)
		}

		end := time.Now()
		if statusErr := s.store.SetStatus(ctx, s.userID, s.meetingID, meeting.StatusCompleted, &end); statusErr != nil && err == nil {
			err = fmt.Errorf("mark completed: %w", statusErr)
		}

		s.broadcast(sse.EventTypeRecordingStopped, map[string]interface{}{
			"meetingId":       s.meetingID.String(),
			"durationSeconds": int(s.Elapsed() / time.Second),
		})
		s.log.Info("Recording stopped", map[string]interface{}{
			"duration_s": int(s.Elapsed() / time.Second),
			"utterances": len(s.engine.Utterances()),
		})
	})
	return err
}

func (s *Session) broadcast(eventType string, payload interface{}) {
	data, err := sse.Format(eventType, payload)
	if err != nil {
		s.log.WithError(err).Error("Failed to encode event", map[string]interface{}{
			"event_type": eventType,
		})
		return
	}
	s.hub.BroadcastToPattern(fmt.Sprintf("meeting:%s:*", s.meetingID), data)
}
