package auth

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/meetscribe/meetscribe/internal/errors"
)

// Claims are the JWT claims carried by issued tokens.
type Claims struct {
	gojwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// TokenService issues and validates HS256-signed tokens.
type TokenService struct {
	cfg Config
	now func() time.Time
}

func NewTokenService(cfg Config) (*TokenService, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &TokenService{cfg: cfg, now: time.Now}, nil
}

// IssueAccess creates a signed access token for the user.
func (s *TokenService) IssueAccess(userID uuid.UUID, email string) (string, error) {
	return s.issue(userID, email, s.cfg.AccessTokenTTL)
}

// IssueRefresh creates a signed refresh token for the user.
func (s *TokenService) IssueRefresh(userID uuid.UUID, email string) (string, error) {
	return s.issue(userID, email, s.cfg.RefreshTokenTTL)
}

func (s *TokenService) issue(userID uuid.UUID, email string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID.String(),
		Email:  email,
	}
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token string and returns its claims.
func (s *TokenService) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithIssuer(s.cfg.Issuer),
	)
	if err != nil {
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return nil, apperrors.TokenExpired()
		}
		return nil, apperrors.InvalidToken().WithCause(err)
	}
	if !token.Valid {
		return nil, apperrors.InvalidToken()
	}
	return claims, nil
}

// UserUUID returns the claims' user id as a UUID.
func (c *Claims) UserUUID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return uuid.Nil, apperrors.InvalidToken().WithCause(err)
	}
	return id, nil
}

func (s *TokenService) keyFunc(token *gojwt.Token) (interface{}, error) {
	if token.Method.Alg() != gojwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
	}
	return []byte(s.cfg.Secret), nil
}
