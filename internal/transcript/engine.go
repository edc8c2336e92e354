// Package transcript implements the transcript reconciliation engine: it turns
// a live stream of interim/final speech-recognition events into a stable
// ordered transcript and a speaker-label mapping.
//
// Reconciliation rules: at most one interim utterance exists per speaker at
// any time (a new interim event replaces it), final utterances are append-only
// and never removed by later events, and the transcript is always sorted by
// timestamp ascending with insertion order as the tie-break.
package transcript

import (
	"sort"
	"strings"
	"sync"

	apperrors "github.com/meetscribe/meetscribe/internal/errors"
)

// NameDetectedFunc is invoked when a speaker name is detected from a
// self-introduction in a final utterance. Callbacks must not call back into
// the engine.
type NameDetectedFunc func(speakerID, name string)

type entry struct {
	Utterance
	seq int
}

// Engine reconciles recognition events into an ordered transcript and
// maintains the speaker-identifier-to-display-name mapping. It is safe for
// concurrent use; events are otherwise expected in delivery order.
type Engine struct {
	mu      sync.Mutex
	entries []entry
	// speakers maps a raw speaker identifier to a display name. Entries are
	// created lazily on first observation and never removed during a session.
	speakers map[string]string
	// kinds memoizes the identifier classification per raw id.
	kinds      map[string]SpeakerKind
	recording  bool
	identified bool
	nextSeq    int

	onNameDetected NameDetectedFunc
}

// NewEngine creates an empty reconciliation engine.
func NewEngine() *Engine {
	return &Engine{
		speakers: make(map[string]string),
		kinds:    make(map[string]SpeakerKind),
	}
}

// OnNameDetected registers the callback fired when a self-introduced name is
// detected.
func (e *Engine) OnNameDetected(fn NameDetectedFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onNameDetected = fn
}

// StartRecording clears any previous session state and marks the engine as
// actively recording.
func (e *Engine) StartRecording() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = nil
	e.speakers = make(map[string]string)
	e.kinds = make(map[string]SpeakerKind)
	e.identified = false
	e.nextSeq = 0
	e.recording = true
}

// StopRecording marks the session as stopped and promotes remaining interim
// utterances to final. Utterances from unresolved speakers are retained in the
// transcript; they are only excluded from flattening.
func (e *Engine) StopRecording() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recording = false
	for i := range e.entries {
		e.entries[i].IsFinal = true
	}
}

// Recording reports whether a recording session is actively in progress.
func (e *Engine) Recording() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recording
}

// SpeakerIdentified reports whether at least one event with a resolvable
// speaker identity has been observed. Used to gate UI messaging while the
// speech service is still warming up diarization.
func (e *Engine) SpeakerIdentified() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.identified
}

// HandleEvent reconciles one recognition event into the transcript.
func (e *Engine) HandleEvent(ev Event) {
	var detected string

	e.mu.Lock()
	kind := e.classifyLocked(ev.SpeakerID)
	resolvable := ev.SpeakerID != "" && kind != SpeakerUnrecognized

	// Name detection runs on final text only, and the speaker map is updated
	// before the display name for this utterance is resolved.
	if ev.IsFinal && resolvable {
		if name, ok := DetectSpeakerName(ev.Text); ok {
			e.speakers[ev.SpeakerID] = name
			detected = name
		}
	}

	display := e.resolveLocked(ev.SpeakerID, kind)
	if resolvable && !e.identified {
		e.identified = true
	}

	u := Utterance{
		Text:        ev.Text,
		Timestamp:   ev.Timestamp,
		IsFinal:     ev.IsFinal,
		SpeakerID:   ev.SpeakerID,
		SpeakerName: display,
	}

	if ev.IsFinal {
		e.removeInterimLocked(ev.SpeakerID)
		e.appendLocked(u)
	} else {
		e.upsertInterimLocked(u)
	}
	e.sortLocked()

	fn := e.onNameDetected
	e.mu.Unlock()

	if detected != "" && fn != nil {
		fn(ev.SpeakerID, detected)
	}
}

// RenameSpeaker applies a user-initiated rename of a speaker. The new name is
// trimmed; an empty result cancels the rename silently. Renaming is rejected
// while a recording session is in progress. The rename retroactively updates
// every utterance attributed to the speaker.
func (e *Engine) RenameSpeaker(speakerID, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.recording {
		return apperrors.Conflict("Speakers cannot be renamed while a recording is in progress.")
	}

	e.speakers[speakerID] = newName
	for i := range e.entries {
		if e.entries[i].SpeakerID == speakerID {
			e.entries[i].SpeakerName = newName
		}
	}
	return nil
}

// FlattenForAnalysis produces the plain-text transcript handed to the
// summarization collaborator: one "Name: text" line per final utterance with a
// resolved speaker, in transcript order. Interim and unresolved-speaker
// utterances are excluded.
func (e *Engine) FlattenForAnalysis() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	var b strings.Builder
	for _, ent := range e.entries {
		if !ent.IsFinal || ent.SpeakerID == "" || ent.SpeakerName == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(ent.SpeakerName)
		b.WriteString(": ")
		b.WriteString(ent.Text)
	}
	return b.String()
}

// LoadFromPersisted restores the transcript and speaker map from a previously
// saved meeting. All restored utterances are marked final: a persisted
// transcript has no interim entries by construction. When the engine already
// holds state (an in-progress session or explicitly supplied initial data),
// the load is a no-op so a redundant re-fetch cannot clobber it.
func (e *Engine) LoadFromPersisted(utterances []Utterance, speakerNames map[string]string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.recording || len(e.entries) > 0 {
		return
	}

	e.speakers = make(map[string]string, len(speakerNames))
	for id, name := range speakerNames {
		e.speakers[id] = name
	}
	e.entries = make([]entry, 0, len(utterances))
	for _, u := range utterances {
		u.IsFinal = true
		e.appendLocked(u)
		if u.SpeakerID != "" {
			e.identified = true
		}
	}
	e.sortLocked()
}

// Utterances returns a copy of the transcript in display order.
func (e *Engine) Utterances() []Utterance {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Utterance, len(e.entries))
	for i, ent := range e.entries {
		out[i] = ent.Utterance
	}
	return out
}

// SpeakerNames returns a copy of the speaker-name map.
func (e *Engine) SpeakerNames() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]string, len(e.speakers))
	for id, name := range e.speakers {
		out[id] = name
	}
	return out
}

// Empty reports whether the transcript holds no utterances.
func (e *Engine) Empty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.entries) == 0
}

// --- internal, callers hold e.mu ---

func (e *Engine) classifyLocked(raw string) SpeakerKind {
	if raw == "" {
		return SpeakerUnrecognized
	}
	if kind, ok := e.kinds[raw]; ok {
		return kind
	}
	kind, _ := ClassifySpeaker(raw)
	e.kinds[raw] = kind
	return kind
}

// resolveLocked returns the display name for a raw identifier, creating the
// lazy default map entry on first observation of a recognizable id.
func (e *Engine) resolveLocked(raw string, kind SpeakerKind) string {
	if raw == "" || kind == SpeakerUnrecognized {
		return ""
	}
	if name, ok := e.speakers[raw]; ok {
		return name
	}
	_, label := ClassifySpeaker(raw)
	e.speakers[raw] = label
	return label
}

func (e *Engine) appendLocked(u Utterance) {
	e.entries = append(e.entries, entry{Utterance: u, seq: e.nextSeq})
	e.nextSeq++
}

func (e *Engine) removeInterimLocked(speakerID string) {
	kept := e.entries[:0]
	for _, ent := range e.entries {
		if !ent.IsFinal && ent.SpeakerID == speakerID {
			continue
		}
		kept = append(kept, ent)
	}
	e.entries = kept
}

// upsertInterimLocked replaces the speaker's existing interim entry in place,
// or inserts a new one. Interim entries of other speakers are untouched.
func (e *Engine) upsertInterimLocked(u Utterance) {
	for i := range e.entries {
		if !e.entries[i].IsFinal && e.entries[i].SpeakerID == u.SpeakerID {
			e.entries[i].Text = u.Text
			e.entries[i].Timestamp = u.Timestamp
			e.entries[i].SpeakerName = u.SpeakerName
			return
		}
	}
	e.appendLocked(u)
}

func (e *Engine) sortLocked() {
	sort.SliceStable(e.entries, func(i, j int) bool {
		if e.entries[i].Timestamp != e.entries[j].Timestamp {
			return e.entries[i].Timestamp < e.entries[j].Timestamp
		}
		return e.entries[i].seq < e.entries[j].seq
	})
}
