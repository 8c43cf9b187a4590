// Package api exposes the service over HTTP: content CRUD, karma reads,
// credential verification, and admin moderation operations. Session handling
// lives outside this service; the authenticated user ID arrives in the
// X-User-ID header set by the auth gateway.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogecho "github.com/samber/slog-echo"

	"github.com/rounds-social/rounds/content"
	"github.com/rounds-social/rounds/karma"
	"github.com/rounds-social/rounds/messaging"
	"github.com/rounds-social/rounds/moderation"
	"github.com/rounds-social/rounds/verify"
)

type Server struct {
	echo      *echo.Echo
	content   *content.Service
	messaging *messaging.Service
	ledger    *karma.Ledger
	moderator *moderation.Moderator
	scorer    *verify.Scorer
	logger    *slog.Logger
}

func NewServer(contentSvc *content.Service, messagingSvc *messaging.Service, ledger *karma.Ledger, moderator *moderation.Moderator, scorer *verify.Scorer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())

	s := &Server{
		echo:      e,
		content:   contentSvc,
		messaging: messagingSvc,
		ledger:    ledger,
		moderator: moderator,
		scorer:    scorer,
		logger:    logger.With("system", "api"),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.handleHealthz)

	g := s.echo.Group("/api")
	g.POST("/posts", s.handleCreatePost)
	g.GET("/posts", s.handleListPosts)
	g.GET("/posts/trending", s.handleTrendingPosts)
	g.POST("/posts/:id/votes", s.handleVoteOnPost)
	g.POST("/posts/:id/comments", s.handleCreateComment)
	g.POST("/communities", s.handleCreateCommunity)
	g.POST("/communities/:id/join", s.handleJoinCommunity)
	g.GET("/users/:id/karma", s.handleUserKarma)
	g.GET("/leaderboard", s.handleLeaderboard)
	g.GET("/search", s.handleSearch)
	g.POST("/verify", s.handleVerifyDoctor)

	g.POST("/conversations", s.handleOpenConversation)
	g.GET("/conversations", s.handleListConversations)
	g.GET("/conversations/:id/messages", s.handleListMessages)
	g.POST("/conversations/:id/messages", s.handleSendMessage)
	g.POST("/conversations/:id/read", s.handleMarkRead)
	g.POST("/groups", s.handleCreateGroup)
	g.POST("/groups/:id/members", s.handleAddGroupMember)
	g.DELETE("/groups/:id/members/:userId", s.handleRemoveGroupMember)

	// caller-gated: these routes must sit behind admin auth at the gateway
	admin := s.echo.Group("/admin")
	admin.GET("/users/:id/offenses", s.handleUserOffenses)
	admin.POST("/users/:id/offenses/reset", s.handleResetOffenses)
}

func (s *Server) RunAPI(listen string) error {
	s.logger.Info("starting API server", "bind", listen)
	return s.echo.Start(listen)
}

func (s *Server) RunMetrics(listen string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, mux)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying echo handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(200, map[string]string{"status": "ok"})
}
