package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/meetscribe/meetscribe/internal/errors"
	"github.com/meetscribe/meetscribe/internal/server"
	"github.com/meetscribe/meetscribe/internal/sse"
)

type startRecordingRequest struct {
	Language    string `json:"language"`
	MaxSpeakers int    `json:"maxSpeakers" binding:"omitempty,min=1,max=16"`
}

// StartRecording opens a live recording session for the meeting.
func (h *Handlers) StartRecording(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := meetingID(c)
	if !ok {
		return
	}

	// Body is optional; absent fields fall back to the service defaults.
	var req startRecordingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			server.RespondWithError(c, apperrors.Validation(err.Error()))
			return
		}
	}

	cfg := h.speech
	if req.Language != "" {
		cfg.Language = req.Language
	}
	if req.MaxSpeakers > 0 {
		cfg.MaxSpeakers = req.MaxSpeakers
	}

	if _, err := h.sessions.Start(c.Request.Context(), userID, id, cfg); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, gin.H{
		"meetingId": id.String(),
		"recording": true,
	})
}

// StopRecording ends the meeting's live recording session.
func (h *Handlers) StopRecording(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := meetingID(c)
	if !ok {
		return
	}

	if err := h.sessions.Stop(c.Request.Context(), userID, id); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, gin.H{
		"meetingId": id.String(),
		"recording": false,
	})
}

type renameSpeakerRequest struct {
	Name string `json:"name" binding:"required,max=60"`
}

// RenameSpeaker assigns a display name to a speaker on the meeting.
func (h *Handlers) RenameSpeaker(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := meetingID(c)
	if !ok {
		return
	}
	speakerID := c.Param("speakerId")
	if speakerID == "" {
		server.RespondWithError(c, apperrors.MissingField("speakerId"))
		return
	}

	var req renameSpeakerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	if err := h.sessions.RenameSpeaker(c.Request.Context(), userID, id, speakerID, req.Name); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, gin.H{
		"speakerId": speakerID,
		"name":      req.Name,
	})
}

// StreamEvents subscribes the client to the meeting's live event stream.
func (h *Handlers) StreamEvents(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := meetingID(c)
	if !ok {
		return
	}

	// Ownership check before the stream is opened.
	if _, err := h.meetings.Get(c.Request.Context(), userID, id); err != nil {
		server.RespondWithError(c, err)
		return
	}

	clientID := fmt.Sprintf("meeting:%s:%s", id, uuid.New())
	sse.ServeSSE(h.hub, h.log, c.Writer, c.Request, clientID)
}
