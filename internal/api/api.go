// Package api wires the HTTP surface: route registration and the request
// handlers behind it.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/meetscribe/meetscribe/internal/auth"
	"github.com/meetscribe/meetscribe/internal/logger"
	"github.com/meetscribe/meetscribe/internal/meeting"
	"github.com/meetscribe/meetscribe/internal/server/middleware"
	"github.com/meetscribe/meetscribe/internal/session"
	"github.com/meetscribe/meetscribe/internal/speech"
	"github.com/meetscribe/meetscribe/internal/sse"
	"github.com/meetscribe/meetscribe/internal/summarize"
	"github.com/meetscribe/meetscribe/internal/user"
)

// Handlers bundles every request handler's dependencies.
type Handlers struct {
	auth     *auth.Service
	tokens   *auth.TokenService
	meetings *meeting.Store
	users    *user.Store
	quota    *user.RecordingTimeService
	sessions *session.Manager
	hub      *sse.Hub
	analyzer summarize.Analyzer
	speech   speech.Config
	log      *logger.Logger
}

// Deps are the collaborators the API needs.
type Deps struct {
	Auth     *auth.Service
	Tokens   *auth.TokenService
	Meetings *meeting.Store
	Users    *user.Store
	Quota    *user.RecordingTimeService
	Sessions *session.Manager
	Hub      *sse.Hub
	Analyzer summarize.Analyzer
	Speech   speech.Config
	Log      *logger.Logger
}

func NewHandlers(d Deps) *Handlers {
	return &Handlers{
		auth:     d.Auth,
		tokens:   d.Tokens,
		meetings: d.Meetings,
		users:    d.Users,
		quota:    d.Quota,
		sessions: d.Sessions,
		hub:      d.Hub,
		analyzer: d.Analyzer,
		speech:   d.Speech,
		log:      d.Log.WithComponent("api"),
	}
}

// Register wires all routes onto the engine. Auth-exempt paths are the
// health check and the auth endpoints themselves.
func (h *Handlers) Register(engine *gin.Engine) {
	engine.GET("/health", h.Health)

	api := engine.Group("/api")
	api.Use(middleware.Auth(middleware.AuthConfig{
		Tokens:    h.tokens,
		SkipPaths: []string{"/api/auth/"},
	}))

	api.POST("/auth/register", h.RegisterUser)
	api.POST("/auth/login", h.Login)

	api.GET("/meetings", h.ListMeetings)
	api.POST("/meetings", h.CreateMeeting)
	api.GET("/meetings/:id", h.GetMeeting)
	api.PATCH("/meetings/:id", h.UpdateMeeting)
	api.DELETE("/meetings/:id", h.DeleteMeeting)

	api.POST("/meetings/:id/recording/start", h.StartRecording)
	api.POST("/meetings/:id/recording/stop", h.StopRecording)
	api.GET("/meetings/:id/events", h.StreamEvents)
	api.PUT("/meetings/:id/speakers/:speakerId", h.RenameSpeaker)

	api.POST("/meeting/analyze", h.AnalyzeMeeting)
	api.POST("/meeting/query", h.QueryMeeting)

	api.GET("/users/recording-time", h.RecordingTime)
	api.POST("/users/recording-time", h.ConsumeRecordingTime)
	api.POST("/usage/track", h.TrackUsage)
}

// Health reports service liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
