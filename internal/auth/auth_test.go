package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/meetscribe/meetscribe/internal/database"
	apperrors "github.com/meetscribe/meetscribe/internal/errors"
	"github.com/meetscribe/meetscribe/internal/logger"
	"github.com/meetscribe/meetscribe/internal/user"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var testSeq int

func newTestService(t *testing.T) *Service {
	t.Helper()
	testSeq++
	cfg := database.Config{
		DSN:          fmt.Sprintf("file:auth_test_%d?mode=memory&cache=shared", testSeq),
		MaxOpenConns: 1,
		AutoMigrate:  true,
		LogLevel:     "silent",
	}
	log := logger.NewDefault("auth-test")
	db, err := database.Open(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.AutoMigrate(&user.User{}, &user.Usage{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	tokens, err := NewTokenService(Config{Secret: testSecret})
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	// MinCost keeps the hashing fast in tests.
	return NewService(user.NewStore(db, log), tokens, NewBcryptHasher(4), log)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, pair, err := svc.Register(ctx, "Avery", "avery@example.com", "s3cretpass")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.ID == uuid.Nil {
		t.Fatal("expected assigned user id")
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if u.RecordingTimeLimit != user.DefaultRecordingTimeLimit {
		t.Fatalf("recording limit = %d", u.RecordingTimeLimit)
	}

	logged, pair2, err := svc.Login(ctx, "AVERY@example.com", "s3cretpass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != u.ID {
		t.Fatal("login returned wrong user")
	}
	if pair2.AccessToken == "" {
		t.Fatal("expected access token on login")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Avery", "avery@example.com", "s3cretpass"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, err := svc.Login(ctx, "avery@example.com", "wrongpass1")
	if err == nil {
		t.Fatal("expected login failure")
	}
	wrongPw, _ := apperrors.AsAppError(err)

	_, _, err = svc.Login(ctx, "nobody@example.com", "s3cretpass")
	if err == nil {
		t.Fatal("expected login failure for unknown email")
	}
	unknown, _ := apperrors.AsAppError(err)

	if wrongPw.Message != unknown.Message {
		t.Fatal("credential errors must be indistinguishable")
	}
}

func TestRegisterShortPassword(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.Register(context.Background(), "Avery", "avery@example.com", "short")
	if err == nil {
		t.Fatal("expected short password rejection")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tokens, err := NewTokenService(Config{Secret: testSecret})
	if err != nil {
		t.Fatalf("token service: %v", err)
	}

	id := uuid.New()
	signed, err := tokens.IssueAccess(id, "avery@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := tokens.Parse(signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Email != "avery@example.com" {
		t.Fatalf("email = %q", claims.Email)
	}
	got, err := claims.UserUUID()
	if err != nil || got != id {
		t.Fatalf("user id = %v, err = %v", got, err)
	}
}

func TestExpiredToken(t *testing.T) {
	tokens, err := NewTokenService(Config{Secret: testSecret, AccessTokenTTL: time.Minute})
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	tokens.now = func() time.Time { return time.Now().Add(-time.Hour) }

	signed, err := tokens.IssueAccess(uuid.New(), "a@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	tokens.now = time.Now

	_, err = tokens.Parse(signed)
	if err == nil {
		t.Fatal("expected expiry error")
	}
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeTokenExpired {
		t.Fatalf("expected token expired, got %v", err)
	}
}

func TestParseTamperedToken(t *testing.T) {
	tokens, _ := NewTokenService(Config{Secret: testSecret})
	other, _ := NewTokenService(Config{Secret: "ffffffffffffffffffffffffffffffff"})

	signed, err := other.IssueAccess(uuid.New(), "a@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := tokens.Parse(signed); err == nil {
		t.Fatal("expected signature validation failure")
	}
}
