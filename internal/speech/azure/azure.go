// Package azure implements the speech.Provider interface against the Azure
// conversation-transcription websocket endpoint with speaker diarization
// enabled.
package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/meetscribe/meetscribe/internal/logger"
	"github.com/meetscribe/meetscribe/internal/speech"
	"github.com/meetscribe/meetscribe/internal/transcript"
)

// ProviderName is the registered name for the Azure speech provider.
const ProviderName = "azure"

const (
	handshakeTimeout = 15 * time.Second
	writeWait        = 10 * time.Second
)

// Provider implements speech.Provider over the Azure universal v2 websocket.
type Provider struct {
	log    *logger.Logger
	dialer *websocket.Dialer
}

// NewProvider creates a new Azure speech provider.
func NewProvider(log *logger.Logger) *Provider {
	return &Provider{
		log: log.WithComponent("speech.azure"),
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the provider can be used. The websocket endpoint
// has no cheap health probe; availability means the provider is constructed.
func (p *Provider) IsAvailable(_ context.Context) bool { return true }

// sessionConfig is the first frame sent after the websocket handshake. It
// carries the recognition settings for this session only; nothing is shared
// across sessions.
type sessionConfig struct {
	Language                  string `json:"language"`
	EnableDiarization         bool   `json:"enableDiarization"`
	MaxSpeakers               int    `json:"maxSpeakers"`
	ConversationTranscription bool   `json:"conversationTranscription"`
}

// recognitionMessage is one frame from the service.
type recognitionMessage struct {
	// Type is "transcribing" for interim hypotheses, "transcribed" for
	// locked results.
	Type      string `json:"type"`
	Text      string `json:"text"`
	SpeakerID string `json:"speakerId"`
}

// Start dials the websocket endpoint and begins streaming recognition events.
func (p *Provider) Start(ctx context.Context, cfg speech.Config) (speech.Stream, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("azure speech: %w", err)
	}

	header := http.Header{}
	header.Set("Ocp-Apim-Subscription-Key", cfg.Key)

	conn, resp, err := p.dialer.DialContext(ctx, cfg.Endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("azure speech: dial %s: status %d: %w", cfg.Endpoint, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("azure speech: dial %s: %w", cfg.Endpoint, err)
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(sessionConfig{
		Language:                  cfg.Language,
		EnableDiarization:         true,
		MaxSpeakers:               cfg.MaxSpeakers,
		ConversationTranscription: true,
	}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("azure speech: send session config: %w", err)
	}

	s := &stream{
		conn:   conn,
		events: make(chan transcript.Event, 64),
		done:   make(chan struct{}),
		log:    p.log,
	}
	go s.readLoop()

	p.log.Info("Speech stream started", map[string]interface{}{
		"endpoint": cfg.Endpoint,
		"language": cfg.Language,
	})
	return s, nil
}

type stream struct {
	conn      *websocket.Conn
	events    chan transcript.Event
	done      chan struct{}
	log       *logger.Logger
	closeOnce sync.Once
}

// Events returns the channel of recognition events. The channel is closed
// when the stream ends.
func (s *stream) Events() <-chan transcript.Event {
	return s.events
}

// Stop closes the websocket connection. The read loop then drains and closes
// the event channel. Safe to call multiple times.
func (s *stream) Stop(_ context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err = s.conn.Close()
	})
	return err
}

func (s *stream) readLoop() {
	defer close(s.events)
	defer func() { _ = s.Stop(context.Background()) }()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("Speech stream closed unexpectedly", map[string]interface{}{
					"error": err.Error(),
				})
			}
			return
		}

		var msg recognitionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Debug("Skipping unparseable speech frame", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}

		switch msg.Type {
		case "transcribing", "transcribed":
		default:
			continue
		}

		// A consumer that stopped draining must not wedge the read loop on
		// a full buffer.
		select {
		case s.events <- transcript.Event{
			Text:      msg.Text,
			IsFinal:   msg.Type == "transcribed",
			SpeakerID: msg.SpeakerID,
			Timestamp: time.Now().UnixMilli(),
		}:
		case <-s.done:
			return
		}
	}
}
