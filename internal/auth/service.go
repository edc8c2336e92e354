package auth

import (
	"context"

	apperrors "github.com/meetscribe/meetscribe/internal/errors"
	"github.com/meetscribe/meetscribe/internal/logger"
	"github.com/meetscribe/meetscribe/internal/user"
)

// TokenPair is the result of a successful registration or login.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Service handles registration and login against the user store.
type Service struct {
	users  *user.Store
	tokens *TokenService
	hasher Hasher
	log    *logger.Logger
}

func NewService(users *user.Store, tokens *TokenService, hasher Hasher, log *logger.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		log:    log.WithComponent("auth"),
	}
}

// Register creates a new account and returns tokens for it.
func (s *Service) Register(ctx context.Context, name, email, password string) (*user.User, *TokenPair, error) {
	if name == "" {
		return nil, nil, apperrors.MissingField("name")
	}
	if email == "" {
		return nil, nil, apperrors.MissingField("email")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, nil, apperrors.InvalidInput("password", err.Error())
	}

	u := &user.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, nil, err
	}

	pair, err := s.issuePair(u)
	if err != nil {
		return nil, nil, err
	}
	s.log.Info("User registered", map[string]interface{}{
		logger.FieldUserID: u.ID.String(),
	})
	return u, pair, nil
}

// Login verifies credentials and returns tokens. Unknown emails and wrong
// passwords produce the same error so accounts cannot be enumerated.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, *TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, apperrors.Unauthorized("Invalid email or password.")
	}
	if err := s.hasher.Verify(password, u.PasswordHash); err != nil {
		return nil, nil, apperrors.Unauthorized("Invalid email or password.")
	}

	pair, err := s.issuePair(u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

func (s *Service) issuePair(u *user.User) (*TokenPair, error) {
	access, err := s.tokens.IssueAccess(u.ID, u.Email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	refresh, err := s.tokens.IssueRefresh(u.ID, u.Email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
