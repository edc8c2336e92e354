package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/meetscribe/meetscribe/internal/errors"
	"github.com/meetscribe/meetscribe/internal/meeting"
	"github.com/meetscribe/meetscribe/internal/server"
	"github.com/meetscribe/meetscribe/internal/server/middleware"
)

type createMeetingRequest struct {
	Title       string    `json:"title" binding:"required,max=100"`
	Description string    `json:"description" binding:"max=500"`
	StartTime   time.Time `json:"startTime" binding:"required"`
	Tags        []string  `json:"tags"`
}

type updateMeetingRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=100"`
	Description *string    `json:"description" binding:"omitempty,max=500"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Status      *string    `json:"status" binding:"omitempty,meetingstatus"`
	Tags        *[]string  `json:"tags"`
}

type listMeetingsQuery struct {
	Status string `form:"status" binding:"omitempty,meetingstatus"`
	Search string `form:"search"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// requireUser resolves the authenticated user, aborting with 401 when absent.
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		server.RespondWithError(c, apperrors.Unauthorized("Authentication required."))
		return uuid.Nil, false
	}
	return id, true
}

func meetingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("id", "must be a valid meeting id"))
		return uuid.Nil, false
	}
	return id, true
}

// CreateMeeting schedules a new meeting for the authenticated user.
func (h *Handlers) CreateMeeting(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req createMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	m := &meeting.Meeting{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		Tags:        req.Tags,
	}
	if err := h.meetings.Create(c.Request.Context(), m); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, m)
}

// ListMeetings returns a filtered, paginated listing of the user's meetings.
func (h *Handlers) ListMeetings(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var q listMeetingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		server.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	page, err := h.meetings.List(c.Request.Context(), userID, meeting.ListFilter{
		Status: q.Status,
		Search: q.Search,
		Page:   q.Page,
		Limit:  q.Limit,
	})
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOKWithMeta(c, page.Items, &server.Meta{
		Page:       page.Page,
		PageSize:   page.Limit,
		Total:      page.Total,
		TotalPages: page.Pages,
	})
}

// GetMeeting returns one meeting with its transcript.
func (h *Handlers) GetMeeting(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := meetingID(c)
	if !ok {
		return
	}

	m, err := h.meetings.Get(c.Request.Context(), userID, id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, m)
}

// UpdateMeeting applies a partial update to meeting metadata.
func (h *Handlers) UpdateMeeting(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := meetingID(c)
	if !ok {
		return
	}

	var req updateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	m, err := h.meetings.Get(c.Request.Context(), userID, id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	if req.Title != nil {
		m.Title = *req.Title
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.StartTime != nil {
		m.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		m.EndTime = req.EndTime
	}
	if req.Status != nil {
		m.Status = *req.Status
	}
	if req.Tags != nil {
		m.Tags = *req.Tags
	}

	if err := h.meetings.Update(c.Request.Context(), m); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, m)
}

// DeleteMeeting removes a meeting.
func (h *Handlers) DeleteMeeting(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := meetingID(c)
	if !ok {
		return
	}

	if err := h.meetings.Delete(c.Request.Context(), userID, id); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondNoContent(c)
}
