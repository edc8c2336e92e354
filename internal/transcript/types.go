package transcript

// Event is a single speech-recognition result delivered by the streaming
// speech service. Interim events may still be refined; final events are
// locked.
type Event struct {
	// Text is the recognized utterance content, possibly partial.
	Text string `json:"text"`
	// IsFinal reports whether the recognizer has locked this utterance.
	IsFinal bool `json:"is_final"`
	// SpeakerID is the opaque raw speaker identifier assigned by the speech
	// service. Format varies by backend; may be empty.
	SpeakerID string `json:"speaker_id,omitempty"`
	// Timestamp is the capture time in milliseconds since epoch,
	// monotonically non-decreasing within a stream.
	Timestamp int64 `json:"timestamp"`
}

// Utterance is one reconciled unit of transcript text attributed to a speaker
// at a point in time. It is the persisted transcript entry.
type Utterance struct {
	// Text is the final or currently-best-known text for this utterance.
	Text string `json:"text"`
	// Timestamp is the creation time in milliseconds since epoch, used for ordering.
	Timestamp int64 `json:"timestamp"`
	// IsFinal reports whether this entry is locked (true) or still interim (false).
	IsFinal bool `json:"isFinal"`
	// SpeakerID is the raw speaker identifier this utterance is attributed to.
	// It is the stable key into the speaker-name map; may be empty.
	SpeakerID string `json:"speakerId,omitempty"`
	// SpeakerName is the resolved display name at time of writing, denormalized
	// so a persisted transcript renders without the speaker map.
	SpeakerName string `json:"speakerName,omitempty"`
}
