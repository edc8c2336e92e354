package api

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/meetscribe/meetscribe/internal/errors"
	"github.com/meetscribe/meetscribe/internal/server"
	"github.com/meetscribe/meetscribe/internal/user"
)

// RecordingTime reports the user's recording quota, reconciled against the
// durations recorded on their meetings.
func (h *Handlers) RecordingTime(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	report, err := h.quota.Report(c.Request.Context(), userID)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, report)
}

type consumeRecordingTimeRequest struct {
	DurationSeconds int `json:"durationSeconds" binding:"min=0"`
}

// ConsumeRecordingTime closes any meetings left open by a disconnected
// client, records the reported usage, and returns the refreshed quota.
func (h *Handlers) ConsumeRecordingTime(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req consumeRecordingTimeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			server.RespondWithError(c, apperrors.Validation(err.Error()))
			return
		}
	}

	report, err := h.quota.Consume(c.Request.Context(), userID, req.DurationSeconds)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, report)
}

type trackUsageRequest struct {
	Service         string `json:"service" binding:"required,usageservice"`
	DurationSeconds int    `json:"durationSeconds" binding:"min=0"`
}

// TrackUsage records one consumption event against a service.
func (h *Handlers) TrackUsage(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req trackUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	rec := &user.Usage{
		UserID:          userID,
		Service:         req.Service,
		DurationSeconds: req.DurationSeconds,
	}
	if err := h.users.TrackUsage(c.Request.Context(), rec); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, rec)
}
