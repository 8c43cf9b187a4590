package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/rounds-social/rounds/api"
	"github.com/rounds-social/rounds/content"
	"github.com/rounds-social/rounds/karma"
	"github.com/rounds-social/rounds/messaging"
	"github.com/rounds-social/rounds/moderation"
	"github.com/rounds-social/rounds/notify"
	"github.com/rounds-social/rounds/util"
	"github.com/rounds-social/rounds/verify"
)

type Server struct {
	api    *api.Server
	logger *slog.Logger
}

type Config struct {
	DatabaseURL        string
	RedisURL           string
	DocumentVerifyHost string
	MaxDBConnections   int
	Logger             *slog.Logger
}

func NewServer(config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	db, err := util.SetupDatabase(config.DatabaseURL, config.MaxDBConnections)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	notifier := notify.NewLogNotifier(logger)

	activityStore, err := karma.NewDBActivityStore(db)
	if err != nil {
		return nil, fmt.Errorf("initializing karma store: %w", err)
	}
	ledger := karma.NewLedger(activityStore, notifier, logger)

	var offenses moderation.OffenseStore
	if config.RedisURL != "" {
		ofs, err := moderation.NewRedisOffenseStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis offense store: %w", err)
		}
		offenses = ofs
		logger.Info("offense state in redis")
	} else {
		ofs, err := moderation.NewDBOffenseStore(db)
		if err != nil {
			return nil, fmt.Errorf("initializing db offense store: %w", err)
		}
		offenses = ofs
	}
	moderator := moderation.NewModerator(ledger, offenses, notifier, logger)

	contentSvc, err := content.NewService(db, ledger, moderator, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing content service: %w", err)
	}

	messagingSvc, err := messaging.NewService(db, moderator, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing messaging service: %w", err)
	}

	scorer := verify.NewScorer(
		verify.NewLicenseClient(),
		verify.NewNPIClient(),
		verify.NewDocumentClient(config.DocumentVerifyHost),
		logger,
	)

	return &Server{
		api:    api.NewServer(contentSvc, messagingSvc, ledger, moderator, scorer, logger),
		logger: logger,
	}, nil
}

func (s *Server) RunAPI(listen string) error {
	return s.api.RunAPI(listen)
}

func (s *Server) RunMetrics(listen string) error {
	return s.api.RunMetrics(listen)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.api.Shutdown(ctx)
}
