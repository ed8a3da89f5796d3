// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pdiddy/report-engine/internal/chat"
	"github.com/pdiddy/report-engine/internal/report"
	"github.com/pdiddy/report-engine/pkg/types"
)

type generateRequest struct {
	Topic string `json:"topic"`
	Model string `json:"model"`
}

type generateResponse struct {
	Success        bool     `json:"success"`
	Report         string   `json:"report"`
	ID             string   `json:"id"`
	DegradedStages []string `json:"degraded_stages"`
}

type chatRequest struct {
	Query   string         `json:"query"`
	Sources []types.Source `json:"sources"`
	Model   string         `json:"model"`
}

type chatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
}

type failureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type listResponse struct {
	Reports []types.Report `json:"reports"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) generateReport(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.Topic) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Topic is required"})
	}

	ctx := c.Request().Context()
	res := s.pipeline.Run(ctx, req.Topic, req.Model)
	r := report.New(res.Topic, res.Model, res.Report(), res.Facts.Value.Len(), res.DegradedStages())

	if s.store != nil {
		if err := s.store.Save(ctx, r); err != nil {
			s.logger.Error("saving report", zap.String("id", r.ID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, failureResponse{Error: err.Error()})
		}
	}

	stages := r.DegradedStages
	if stages == nil {
		stages = []string{}
	}
	return c.JSON(http.StatusOK, generateResponse{
		Success:        true,
		Report:         r.Markdown,
		ID:             r.ID,
		DegradedStages: stages,
	})
}

func (s *Server) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.Query) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Query is required"})
	}

	answer, err := chat.Answer(c.Request().Context(), s.client, chat.Question{
		Query:   req.Query,
		Sources: req.Sources,
		Model:   s.pipeline.Model(req.Model),
	})
	if err != nil {
		s.logger.Warn("chat failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, failureResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, chatResponse{Success: true, Response: answer})
}

func (s *Server) listReports(c echo.Context) error {
	if s.store == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Report store is not configured")
	}
	opts := report.ListOptions{
		Query: c.QueryParam("q"),
		Model: c.QueryParam("model"),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		opts.Limit = limit
	}

	reports, err := s.store.List(c.Request().Context(), opts)
	if err != nil {
		return err
	}
	if reports == nil {
		reports = []types.Report{}
	}
	return c.JSON(http.StatusOK, listResponse{Reports: reports})
}

func (s *Server) getReport(c echo.Context) error {
	if s.store == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Report store is not configured")
	}
	r, err := s.store.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, report.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Report not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}
