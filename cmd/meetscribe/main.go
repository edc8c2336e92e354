// Command meetscribe runs the meeting transcription service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meetscribe/meetscribe/internal/api"
	"github.com/meetscribe/meetscribe/internal/auth"
	"github.com/meetscribe/meetscribe/internal/config"
	"github.com/meetscribe/meetscribe/internal/database"
	"github.com/meetscribe/meetscribe/internal/logger"
	"github.com/meetscribe/meetscribe/internal/meeting"
	"github.com/meetscribe/meetscribe/internal/server"
	"github.com/meetscribe/meetscribe/internal/session"
	"github.com/meetscribe/meetscribe/internal/speech/azure"
	"github.com/meetscribe/meetscribe/internal/sse"
	"github.com/meetscribe/meetscribe/internal/summarize"
	"github.com/meetscribe/meetscribe/internal/summarize/openai"
	"github.com/meetscribe/meetscribe/internal/user"
)

func main() {
	configFile := flag.String("config", "", "path to config.yml")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "meetscribe: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	log := logger.New(&cfg.Logger, cfg.Name)
	log.Info("Starting meetscribe", map[string]interface{}{
		"environment": cfg.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.AutoMigrate(&user.User{}, &user.Usage{}, &meeting.Meeting{}); err != nil {
		return err
	}

	tokens, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return err
	}
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	users := user.NewStore(db, log)
	meetings := meeting.NewStore(db, log)
	authSvc := auth.NewService(users, tokens, hasher, log)
	quota := user.NewRecordingTimeService(users, meetings, log)

	hub := sse.NewHub(log)
	go hub.Run()
	defer hub.Stop()

	provider := azure.NewProvider(log)
	sessions := session.NewManager(provider, meetings, hub, quota, log, cfg.Session)

	analyzer := summarize.NewService(openai.NewClient(cfg.OpenAI), log)

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware(log)

	handlers := api.NewHandlers(api.Deps{
		Auth:     authSvc,
		Tokens:   tokens,
		Meetings: meetings,
		Users:    users,
		Quota:    quota,
		Sessions: sessions,
		Hub:      hub,
		Analyzer: analyzer,
		Speech:   cfg.Speech,
		Log:      log,
	})
	handlers.Register(srv.GinEngine())

	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sessions.StopAll(shutdownCtx)
	if err := srv.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}

	log.Info("Shutdown complete")
	return nil
}
