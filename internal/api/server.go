// Package api serves tuning results over HTTP for inspection.
package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/kerntune/internal/results"
	"github.com/samcharles93/kerntune/internal/version"
)

// Server exposes a read-only view of a results manager.
type Server struct {
	manager   *results.Manager
	validator *results.Validator
	session   string
	started   time.Time
}

func NewServer(manager *results.Manager, validator *results.Validator) *Server {
	return &Server{
		manager:   manager,
		validator: validator,
		session:   uuid.NewString(),
		started:   time.Now(),
	}
}

// Register wires the routes onto an echo instance.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/status", s.handleStatus)
	e.GET("/v1/results", s.handleResults)
	e.GET("/v1/results/:op", s.handleOpResults)
}

type StatusResponse struct {
	Version   string            `json:"version"`
	SessionID string            `json:"session_id"`
	UptimeSec int64             `json:"uptime_sec"`
	Entries   int               `json:"entries"`
	Validator map[string]string `json:"validator"`
}

func (s *Server) handleStatus(c *echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{
		Version:   version.String(),
		SessionID: s.session,
		UptimeSec: int64(time.Since(s.started).Seconds()),
		Entries:   s.manager.NumEntries(),
		Validator: s.validator.Keys(),
	})
}

func (s *Server) handleResults(c *echo.Context) error {
	return c.JSON(http.StatusOK, s.manager.Snapshot())
}

func (s *Server) handleOpResults(c *echo.Context) error {
	opSig := c.Param("op")
	byParams, ok := s.manager.OpSnapshot(opSig)
	if !ok {
		return writeNotFound(c, "no results for operation "+opSig)
	}
	return c.JSON(http.StatusOK, byParams)
}

func writeNotFound(c *echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, map[string]any{
		"error": map[string]string{
			"type":    "not_found_error",
			"message": msg,
		},
	})
}
