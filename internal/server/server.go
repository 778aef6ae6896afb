// Package server exposes the session runner over HTTP. It owns no interview
// state of its own; every request is translated into one Begin or Continue
// call.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/spigell/ai-interviewer/internal/interview"
)

// Server is the HTTP boundary of the interviewer.
type Server struct {
	echo   *echo.Echo
	runner *interview.Runner
	logger *zap.Logger
	addr   string
}

type beginRequest struct {
	ResumeText   string `json:"resume_text"`
	MaxQuestions int    `json:"max_questions"`
}

type beginResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type answerResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates the server and registers its routes.
func New(runner *interview.Runner, logger *zap.Logger, addr string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:   e,
		runner: runner,
		logger: logger,
		addr:   addr,
	}

	e.Use(s.requestLogger)

	e.GET("/healthz", s.handleHealth)
	e.POST("/api/v1/interviews", s.handleBegin)
	e.POST("/api/v1/interviews/:id/answers", s.handleAnswer)

	return s
}

// Start blocks serving HTTP until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.addr))
	return s.echo.Start(s.addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying http handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBegin(c echo.Context) error {
	var req beginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	result, err := s.runner.Begin(c.Request().Context(), req.ResumeText, req.MaxQuestions)
	if err != nil {
		return s.renderError(c, err)
	}

	return c.JSON(http.StatusCreated, beginResponse{
		SessionID: result.SessionID,
		Message:   result.Message,
	})
}

func (s *Server) handleAnswer(c echo.Context) error {
	var req answerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	result, err := s.runner.Continue(c.Request().Context(), c.Param("id"), req.Answer)
	if err != nil {
		return s.renderError(c, err)
	}

	return c.JSON(http.StatusOK, answerResponse{
		Message: result.Message,
		Status:  string(result.Status),
	})
}

func (s *Server) renderError(c echo.Context, err error) error {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, interview.ErrInputValidation):
		status = http.StatusBadRequest
	case errors.Is(err, interview.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, interview.ErrProtocol):
		status = http.StatusConflict
	case errors.Is(err, interview.ErrModelInvocation):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}

	return c.JSON(status, errorResponse{Error: err.Error()})
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		started := time.Now()
		err := next(c)

		s.logger.Debug("http request",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Int("status", c.Response().Status),
			zap.Duration("duration", time.Since(started)),
		)

		return err
	}
}
