// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package server is the HTTP transport for the FAQ assistant.
//
// Routes:
//
//	POST /api/chat      {sessionId, message} -> {reply, service, nextStepsUrl}
//	POST /api/feedback  {service, helpful, comment, sessionId} -> {status}
//	GET  /api/health    provider liveness and index size
//	GET  /metrics       Prometheus exposition, when metrics are enabled
//
// Any other GET is served from the web root.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/poiesic/civicfaq/chatlog"
	"github.com/poiesic/civicfaq/core"
	"github.com/poiesic/civicfaq/metrics"
)

const (
	// DefaultSessionID is used when a chat request has no session id.
	DefaultSessionID = "default"

	emptyMessageReply   = "Please type a question."
	unavailableReply    = "Sorry, I can't look that up right now. Please try again in a moment."
	shutdownGracePeriod = 5 * time.Second
)

// TurnHandler resolves a chat turn. *dialogue.Orchestrator implements it.
type TurnHandler interface {
	HandleTurn(ctx context.Context, sessionID, message string) (core.TurnResult, error)
}

// ChatLogger records turns and feedback. *chatlog.Logger implements it.
type ChatLogger interface {
	LogChat(ctx context.Context, e chatlog.ChatEntry)
	LogFeedback(ctx context.Context, f chatlog.Feedback)
}

// HealthChecker reports embedding provider liveness. ai.AIProvider implements it.
type HealthChecker interface {
	Health(ctx context.Context) bool
}

// IndexSizer reports how many FAQ entries are being served.
type IndexSizer func() int

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Reply        string `json:"reply"`
	Service      string `json:"service"`
	NextStepsURL string `json:"nextStepsUrl"`
}

type feedbackRequest struct {
	Service   string `json:"service"`
	Helpful   string `json:"helpful"`
	Comment   string `json:"comment"`
	SessionID string `json:"sessionId"`
}

type healthResponse struct {
	Status       string `json:"status"`
	Provider     bool   `json:"provider"`
	IndexEntries int    `json:"indexEntries"`
}

// Server wires the routes to the dialogue core.
type Server struct {
	router    *gin.Engine
	turns     TurnHandler
	chatLog   ChatLogger
	health    HealthChecker
	indexSize IndexSizer
	metrics   *metrics.Metrics
	webRoot   string
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithChatLogger records every turn and feedback submission.
func WithChatLogger(l ChatLogger) Option {
	return func(s *Server) {
		s.chatLog = l
	}
}

// WithHealthChecker sets the provider checked by /api/health.
func WithHealthChecker(h HealthChecker) Option {
	return func(s *Server) {
		s.health = h
	}
}

// WithIndexSizer reports the served index size on /api/health.
func WithIndexSizer(f IndexSizer) Option {
	return func(s *Server) {
		s.indexSize = f
	}
}

// WithMetrics instruments requests and exposes /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithWebRoot serves static files from dir for unmatched GET requests.
func WithWebRoot(dir string) Option {
	return func(s *Server) {
		s.webRoot = dir
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New builds the router.
func New(turns TurnHandler, opts ...Option) (*Server, error) {
	if turns == nil {
		return nil, ErrTurnHandlerRequired
	}

	s := &Server{
		turns:  turns,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "http")
	s.router = s.buildRouter()

	return s, nil
}

func (s *Server) buildRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	if s.metrics != nil {
		r.Use(s.metrics.GinMiddleware())
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := r.Group("/api")
	api.POST("/chat", s.handleChat)
	api.POST("/feedback", s.handleFeedback)
	api.GET("/health", s.handleHealth)

	if s.webRoot != "" {
		if info, err := os.Stat(s.webRoot); err == nil && info.IsDir() {
			files := http.FileServer(gin.Dir(s.webRoot, false))
			r.NoRoute(func(c *gin.Context) {
				if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
					c.Status(http.StatusNotFound)
					return
				}
				files.ServeHTTP(c.Writer, c.Request)
			})
		} else {
			s.logger.Warn("web root not found, static files disabled", "web_root", s.webRoot)
		}
	}

	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start))
	}
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	// A missing or malformed body is treated as an empty message.
	_ = c.ShouldBindJSON(&req)

	message := strings.TrimSpace(req.Message)
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	if message == "" {
		c.JSON(http.StatusBadRequest, chatResponse{Reply: emptyMessageReply, Service: core.UnknownTopic})
		return
	}

	result, err := s.turns.HandleTurn(c.Request.Context(), sessionID, message)
	if err != nil {
		s.logger.Warn("turn failed", "session", sessionID, "err", err)
		c.JSON(http.StatusServiceUnavailable, chatResponse{Reply: unavailableReply, Service: core.UnknownTopic})
		return
	}

	if s.chatLog != nil {
		s.chatLog.LogChat(c.Request.Context(), chatlog.ChatEntry{
			SessionID:      sessionID,
			UserMessage:    message,
			MatchedService: result.Topic,
			Score:          result.Score,
			Degraded:       result.Degraded,
		})
	}

	c.JSON(http.StatusOK, chatResponse{
		Reply:        result.Reply,
		Service:      result.Topic,
		NextStepsURL: result.NextStepsURL,
	})
}

func (s *Server) handleFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid feedback body"})
		return
	}

	if s.chatLog != nil {
		s.chatLog.LogFeedback(c.Request.Context(), chatlog.Feedback{
			Service:   req.Service,
			Helpful:   req.Helpful,
			Comment:   req.Comment,
			SessionID: strings.TrimSpace(req.SessionID),
		})
	}

	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (s *Server) handleHealth(c *gin.Context) {
	resp := healthResponse{Status: "ok", Provider: true}
	if s.health != nil {
		resp.Provider = s.health.Health(c.Request.Context())
	}
	if s.indexSize != nil {
		resp.IndexEntries = s.indexSize()
	}
	if !resp.Provider {
		resp.Status = "degraded"
	}
	c.JSON(http.StatusOK, resp)
}
