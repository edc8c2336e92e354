package api

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/meetscribe/meetscribe/internal/errors"
	"github.com/meetscribe/meetscribe/internal/server"
	"github.com/meetscribe/meetscribe/internal/user"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=60"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	User         *user.User `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

// RegisterUser creates a new account.
func (h *Handlers) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	u, pair, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, authResponse{
		User:         u,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Login exchanges credentials for tokens.
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	u, pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, authResponse{
		User:         u,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}
