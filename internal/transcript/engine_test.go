package transcript

import (
	"sort"
	"strings"
	"testing"
)

func finalEvent(text, speaker string, ts int64) Event {
	return Event{Text: text, IsFinal: true, SpeakerID: speaker, Timestamp: ts}
}

func interimEvent(text, speaker string, ts int64) Event {
	return Event{Text: text, IsFinal: false, SpeakerID: speaker, Timestamp: ts}
}

func TestEngine_InterimReplacedNotAppended(t *testing.T) {
	e := NewEngine()
	e.StartRecording()

	e.HandleEvent(interimEvent("hel", "Guest-1", 100))
	e.HandleEvent(interimEvent("hello eve", "Guest-1", 200))
	e.HandleEvent(interimEvent("hello every", "Guest-1", 300))

	utts := e.Utterances()
	if len(utts) != 1 {
		t.Fatalf("expected 1 utterance, got %d", len(utts))
	}
	if utts[0].Text != "hello every" {
		t.Errorf("expected latest interim text, got %q", utts[0].Text)
	}
	if utts[0].IsFinal {
		t.Error("expected interim utterance")
	}
}

func TestEngine_OneInterimPerSpeaker(t *testing.T) {
	e := NewEngine()
	e.StartRecording()

	e.HandleEvent(interimEvent("one", "Guest-1", 100))
	e.HandleEvent(interimEvent("two", "Guest-2", 150))
	e.HandleEvent(interimEvent("one more", "Guest-1", 200))
	e.HandleEvent(interimEvent("two more", "Guest-2", 250))

	counts := map[string]int{}
	for _, u := range e.Utterances() {
		if !u.IsFinal {
			counts[u.SpeakerID]++
		}
	}
	for speaker, n := range counts {
		if n != 1 {
			t.Errorf("speaker %s has %d interim utterances, want 1", speaker, n)
		}
	}
	if len(counts) != 2 {
		t.Errorf("expected interim entries for 2 speakers, got %d", len(counts))
	}
}

func TestEngine_FinalRemovesInterimForSameSpeaker(t *testing.T) {
	e := NewEngine()
	e.StartRecording()

	e.HandleEvent(interimEvent("partial from one", "Guest-1", 100))
	e.HandleEvent(interimEvent("partial from two", "Guest-2", 150))
	e.HandleEvent(finalEvent("complete sentence from one", "Guest-1", 200))

	utts := e.Utterances()
	if len(utts) != 2 {
		t.Fatalf("expected 2 utterances, got %d", len(utts))
	}
	for _, u := range utts {
		if u.SpeakerID == "Guest-1" {
			if !u.IsFinal {
				t.Error("Guest-1 interim should have been superseded by the final")
			}
			if u.Text != "complete sentence from one" {
				t.Errorf("unexpected Guest-1 text %q", u.Text)
			}
		}
		if u.SpeakerID == "Guest-2" && u.IsFinal {
			t.Error("Guest-2 interim should be preserved")
		}
	}
}

func TestEngine_FinalsAreAppendOnly(t *testing.T) {
	e := NewEngine()
	e.StartRecording()

	e.HandleEvent(finalEvent("first", "Guest-1", 100))
	e.HandleEvent(finalEvent("second", "Guest-1", 200))
	e.HandleEvent(interimEvent("third partial", "Guest-1", 300))
	e.HandleEvent(finalEvent("third", "Guest-1", 400))

	utts := e.Utterances()
	if len(utts) != 3 {
		t.Fatalf("expected 3 final utterances, got %d", len(utts))
	}
	for i, want := range []string{"first", "second", "third"} {
		if utts[i].Text != want {
			t.Errorf("utterance %d: got %q, want %q", i, utts[i].Text, want)
		}
		if !utts[i].IsFinal {
			t.Errorf("utterance %d should be final", i)
		}
	}
}

func TestEngine_SortedByTimestamp(t *testing.T) {
	e := NewEngine()
	e.StartRecording()

	e.HandleEvent(finalEvent("late", "Guest-1", 500))
	e.HandleEvent(finalEvent("early", "Guest-2", 100))
	e.HandleEvent(interimEvent("middle", "Guest-3", 300))

	utts := e.Utterances()
	if !sort.SliceIsSorted(utts, func(i, j int) bool { return utts[i].Timestamp < utts[j].Timestamp }) {
		t.Errorf("transcript not sorted by timestamp: %+v", utts)
	}
	if utts[0].Text != "early" || utts[2].Text != "late" {
		t.Errorf("unexpected order: %+v", utts)
	}
}

func TestEngine_TimestampTieBreaksOnInsertionOrder(t *testing.T) {
	e := NewEngine()
	e.StartRecording()

	e.HandleEvent(finalEvent("inserted first", "Guest-1", 100))
	e.HandleEvent(finalEvent("inserted second", "Guest-2", 100))

	utts := e.Utterances()
	if utts[0].Text != "inserted first" || utts[1].Text != "inserted second" {
		t.Errorf("equal timestamps must keep insertion order, got %+v", utts)
	}
}

func TestEngine_UnrecognizedSpeakerRecordedButNotIdentified(t *testing.T) {
	e := NewEngine()
	e.StartRecording()

	e.HandleEvent(finalEvent("who said this", "mystery-id", 100))
	if e.SpeakerIdentified() {
		t.Error("unrecognized speaker must not mark identification achieved")
	}
	utts := e.Utterances()
	if len(utts) != 1 {
		t.Fatalf("unresolved-speaker utterance should still be recorded, got %d entries", len(utts))
	}
	if utts[0].SpeakerName != "" {
		t.Errorf("unrecognized id should resolve to no display name, got %q", utts[0].SpeakerName)
	}

	e.HandleEvent(finalEvent("hello", "Guest-1", 200))
	if !e.SpeakerIdentified() {
		t.Error("resolvable speaker should mark identification achieved")
	}
}

func TestEngine_SpeakerMapCreatedLazily(t *testing.T) {
	e := NewEngine()
	e.StartRecording()

	e.HandleEvent(finalEvent("hello", "Guest-2", 100))
	e.HandleEvent(finalEvent("hi", "CONVERSATION_SPEAKER_1", 200))

	names := e.SpeakerNames()
	if names["Guest-2"] != "Speaker 2" {
		t.Errorf("Guest-2 resolved to %q, want 'Speaker 2'", names["Guest-2"])
	}
	if names["CONVERSATION_SPEAKER_1"] != "Speaker 1" {
		t.Errorf("CONVERSATION_SPEAKER_1 resolved to %q, want 'Speaker 1'", names["CONVERSATION_SPEAKER_1"])
	}
}

func TestEngine_NameDetectionUpdatesMapBeforeUtterance(t *testing.T) {
	e := NewEngine()
	e.StartRecording()

	var notifiedID, notifiedName string
	e.OnNameDetected(func(speakerID, name string) {
		notifiedID, notifiedName = speakerID, name
	})

	e.HandleEvent(finalEvent("Hi everyone, my name is Joe", "Guest-1", 100))

	utts := e.Utterances()
	if utts[0].SpeakerName != "Joe" {
		t.Errorf("detected name must apply to the triggering utterance, got %q", utts[0].SpeakerName)
	}
	if e.SpeakerNames()["Guest-1"] != "Joe" {
		t.Errorf("speaker map not updated: %v", e.SpeakerNames())
	}
	if notifiedID != "Guest-1" || notifiedName != "Joe" {
		t.Errorf("expected detection notification for Guest-1/Joe, got %s/%s", notifiedID, notifiedName)
	}
}

func TestEngine_NoNameDetectionOnInterim(t *testing.T) {
	e := NewEngine()
	e.StartRecording()

	e.HandleEvent(interimEvent("my name is Joe", "Guest-1", 100))
	if e.SpeakerNames()["Guest-1"] == "Joe" {
		t.Error("name detection must not run against interim text")
	}
}

func TestEngine_RenameRejectedWhileRecording(t *testing.T) {
	e := NewEngine()
	e.StartRecording()
	e.HandleEvent(finalEvent("hello", "Guest-1", 100))

	if err := e.RenameSpeaker("Guest-1", "Alice"); err == nil {
		t.Fatal("rename during recording must fail")
	}
}

func TestEngine_RenameUpdatesHistory(t *testing.T) {
	e := NewEngine()
	e.StartRecording()
	e.HandleEvent(finalEvent("hello", "Guest-1", 100))
	e.HandleEvent(finalEvent("hi there", "Guest-2", 200))
	e.HandleEvent(finalEvent("more from one", "Guest-1", 300))
	e.StopRecording()

	if err := e.RenameSpeaker("Guest-1", "  Alice  "); err != nil {
		t.Fatalf("rename after stop failed: %v", err)
	}

	for _, u := range e.Utterances() {
		switch u.SpeakerID {
		case "Guest-1":
			if u.SpeakerName != "Alice" {
				t.Errorf("historical utterance not renamed: %+v", u)
			}
		case "Guest-2":
			if u.SpeakerName != "Speaker 2" {
				t.Errorf("other speaker must be untouched: %+v", u)
			}
		}
	}
}

func TestEngine_RenameEmptyIsSilentCancel(t *testing.T) {
	e := NewEngine()
	e.HandleEvent(finalEvent("hello", "Guest-1", 100))

	if err := e.RenameSpeaker("Guest-1", "   "); err != nil {
		t.Fatalf("empty rename should be a silent no-op, got %v", err)
	}
	if e.SpeakerNames()["Guest-1"] != "Speaker 1" {
		t.Errorf("name should be unchanged, got %q", e.SpeakerNames()["Guest-1"])
	}
}

func TestEngine_FlattenForAnalysis(t *testing.T) {
	e := NewEngine()
	e.StartRecording()

	e.HandleEvent(finalEvent("my name is Joe", "Guest-1", 100))
	e.HandleEvent(finalEvent("nice to meet you", "Guest-2", 200))
	e.HandleEvent(finalEvent("untraceable", "weird-id", 300))
	e.HandleEvent(interimEvent("still talki", "Guest-2", 400))

	got := e.FlattenForAnalysis()
	want := "Joe: my name is Joe\nSpeaker 2: nice to meet you"
	if got != want {
		t.Errorf("flatten mismatch:\ngot:  %q\nwant: %q", got, want)
	}
	if strings.Contains(got, "untraceable") {
		t.Error("unresolved-speaker utterances must be excluded from flattening")
	}
	if strings.Contains(got, "still talki") {
		t.Error("interim utterances must be excluded from flattening")
	}
}

func TestEngine_StopPromotesInterimToFinal(t *testing.T) {
	e := NewEngine()
	e.StartRecording()
	e.HandleEvent(interimEvent("trailing thought", "Guest-1", 100))
	e.StopRecording()

	utts := e.Utterances()
	if len(utts) != 1 || !utts[0].IsFinal {
		t.Errorf("stop must promote interim entries to final: %+v", utts)
	}
	if e.Recording() {
		t.Error("engine should no longer report recording")
	}
}

func TestEngine_LoadFromPersistedRoundTrip(t *testing.T) {
	live := NewEngine()
	live.StartRecording()
	live.HandleEvent(finalEvent("my name is Joe", "Guest-1", 100))
	live.HandleEvent(finalEvent("let us begin", "Guest-2", 200))
	live.StopRecording()

	flattened := live.FlattenForAnalysis()

	restored := NewEngine()
	restored.LoadFromPersisted(live.Utterances(), live.SpeakerNames())

	if got := restored.FlattenForAnalysis(); got != flattened {
		t.Errorf("round trip mismatch:\ngot:  %q\nwant: %q", got, flattened)
	}
	for _, u := range restored.Utterances() {
		if !u.IsFinal {
			t.Errorf("restored utterances must all be final: %+v", u)
		}
	}
}

func TestEngine_LoadDoesNotClobberExistingState(t *testing.T) {
	e := NewEngine()
	e.LoadFromPersisted([]Utterance{
		{Text: "initial data", Timestamp: 100, SpeakerID: "Guest-1", SpeakerName: "Speaker 1"},
	}, map[string]string{"Guest-1": "Speaker 1"})

	// A later re-fetch must not replace the explicitly supplied data.
	e.LoadFromPersisted([]Utterance{
		{Text: "refetched", Timestamp: 999, SpeakerID: "Guest-9", SpeakerName: "Speaker 9"},
	}, map[string]string{"Guest-9": "Speaker 9"})

	utts := e.Utterances()
	if len(utts) != 1 || utts[0].Text != "initial data" {
		t.Errorf("load must not clobber existing state: %+v", utts)
	}
}

func TestEngine_StartRecordingClearsPreviousSession(t *testing.T) {
	e := NewEngine()
	e.StartRecording()
	e.HandleEvent(finalEvent("old content", "Guest-1", 100))
	e.StopRecording()

	e.StartRecording()
	if !e.Empty() {
		t.Error("starting a recording must clear the previous transcript")
	}
	if e.SpeakerIdentified() {
		t.Error("identification milestone must reset with a new session")
	}
}
