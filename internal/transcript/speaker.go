package transcript

import (
	"strings"
	"unicode"
)

// SpeakerKind classifies the format of a raw speaker identifier. The set is
// closed: every identifier a speech backend can emit maps to exactly one kind.
type SpeakerKind int

const (
	// SpeakerUnrecognized is any identifier format the classifier does not know.
	SpeakerUnrecognized SpeakerKind = iota
	// SpeakerGuest is a guest-numbered identifier ("Guest-3").
	SpeakerGuest
	// SpeakerConversation is a conversation-numbered identifier
	// ("CONVERSATION_SPEAKER_2").
	SpeakerConversation
	// SpeakerLabeled is a labeled identifier ("Speaker_1").
	SpeakerLabeled
	// SpeakerNumeric is a plain numeric identifier ("2").
	SpeakerNumeric
)

const (
	guestPrefix        = "Guest-"
	conversationPrefix = "CONVERSATION_SPEAKER_"
	labeledPrefix      = "Speaker_"
)

// ClassifySpeaker evaluates a raw speaker identifier once and returns its kind
// together with the default display label ("Speaker N") derived from it. For
// unrecognized formats the label is empty: such identifiers resolve to no
// display name.
func ClassifySpeaker(raw string) (SpeakerKind, string) {
	switch {
	case strings.HasPrefix(raw, guestPrefix):
		return SpeakerGuest, "Speaker " + strings.TrimPrefix(raw, guestPrefix)
	case strings.HasPrefix(raw, conversationPrefix):
		return SpeakerConversation, "Speaker " + strings.TrimPrefix(raw, conversationPrefix)
	case strings.HasPrefix(raw, labeledPrefix):
		return SpeakerLabeled, "Speaker " + strings.TrimPrefix(raw, labeledPrefix)
	case raw != "" && isNumeric(raw):
		return SpeakerNumeric, "Speaker " + raw
	default:
		return SpeakerUnrecognized, ""
	}
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
