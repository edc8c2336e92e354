package sse

import (
	"encoding/json"
	"fmt"
)

// Event type constants for the live meeting stream.
const (
	// EventTypeConnected is sent when a client successfully connects.
	EventTypeConnected = "connected"
	// EventTypeTranscript carries a transcript snapshot after reconciliation.
	EventTypeTranscript = "transcript"
	// EventTypeNameDetected announces an auto-detected speaker name.
	EventTypeNameDetected = "name_detected"
	// EventTypeSaveError reports a failed (retryable) autosave.
	EventTypeSaveError = "save_error"
	// EventTypeRecordingStopped signals the end of the recording session.
	EventTypeRecordingStopped = "recording_stopped"
)

// Format renders an SSE frame with an event name and JSON payload.
func Format(eventType string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("sse: marshal %s payload: %w", eventType, err)
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", eventType, data)), nil
}
