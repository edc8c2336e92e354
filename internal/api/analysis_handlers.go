package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/meetscribe/meetscribe/internal/errors"
	"github.com/meetscribe/meetscribe/internal/server"
)

type analyzeRequest struct {
	MeetingID uuid.UUID `json:"meetingId" binding:"required"`
}

type queryRequest struct {
	MeetingID uuid.UUID `json:"meetingId" binding:"required"`
	Question  string    `json:"question" binding:"required,max=2000"`
}

// AnalyzeMeeting flattens the meeting transcript, runs the summarization
// model over it, and stores the result on the meeting.
func (h *Handlers) AnalyzeMeeting(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	ctx := c.Request.Context()
	flat, err := h.sessions.Flatten(ctx, userID, req.MeetingID)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	analysis, err := h.analyzer.Analyze(ctx, flat)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	m, err := h.meetings.Get(ctx, userID, req.MeetingID)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	m.Summary = analysis
	if err := h.meetings.Update(ctx, m); err != nil {
		server.RespondWithError(c, err)
		return
	}

	server.RespondOK(c, analysis)
}

// QueryMeeting answers a free-form question about the meeting transcript.
func (h *Handlers) QueryMeeting(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	ctx := c.Request.Context()
	flat, err := h.sessions.Flatten(ctx, userID, req.MeetingID)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	answer, err := h.analyzer.Query(ctx, flat, req.Question)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, gin.H{"answer": answer})
}
