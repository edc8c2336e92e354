package transcript

import "testing"

func TestClassifySpeaker(t *testing.T) {
	tests := []struct {
		raw   string
		kind  SpeakerKind
		label string
	}{
		{"Guest-1", SpeakerGuest, "Speaker 1"},
		{"Guest-12", SpeakerGuest, "Speaker 12"},
		{"CONVERSATION_SPEAKER_2", SpeakerConversation, "Speaker 2"},
		{"Speaker_3", SpeakerLabeled, "Speaker 3"},
		{"7", SpeakerNumeric, "Speaker 7"},
		{"", SpeakerUnrecognized, ""},
		{"unknown-format", SpeakerUnrecognized, ""},
		{"guest-1", SpeakerUnrecognized, ""}, // prefixes are case-sensitive
		{"7a", SpeakerUnrecognized, ""},
	}

	for _, tt := range tests {
		kind, label := ClassifySpeaker(tt.raw)
		if kind != tt.kind || label != tt.label {
			t.Errorf("ClassifySpeaker(%q) = (%v, %q), want (%v, %q)", tt.raw, kind, label, tt.kind, tt.label)
		}
	}
}
