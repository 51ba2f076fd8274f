package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/piwi3910/PlateCut/internal/engine"
	"github.com/piwi3910/PlateCut/internal/export"
	"github.com/piwi3910/PlateCut/internal/model"
	"github.com/piwi3910/PlateCut/internal/project"
)

// CalculateRequest is the body of POST /calculate and /compare.
type CalculateRequest struct {
	Items    []model.Item        `json:"items" binding:"required"`
	Offcuts  []model.OffcutPlate `json:"offcuts"`
	Settings *model.Settings     `json:"settings"`
	// SaveAs stores the result under this id when a result store is configured.
	SaveAs string `json:"save_as"`
}

// VerifyRequest is the body of POST /verify.
type VerifyRequest struct {
	Items    []model.Item            `json:"items" binding:"required"`
	Result   model.CalculationResult `json:"result"`
	Settings *model.Settings         `json:"settings"`
}

// VerifyResponse lists the violations of a verified result.
type VerifyResponse struct {
	Valid      bool               `json:"valid"`
	Violations []engine.Violation `json:"violations"`
}

// EstimateRequest is the body of POST /estimate.
type EstimateRequest struct {
	Items        []model.Item    `json:"items" binding:"required"`
	Settings     *model.Settings `json:"settings"`
	WastePercent float64         `json:"waste_percent" binding:"gte=0,lt=100"`
}

// ScenarioResponse is one row of a comparison.
type ScenarioResponse struct {
	Name         string          `json:"name"`
	Plates       int             `json:"plates"`
	AverageYield float64         `json:"average_yield"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	SkippedCount int             `json:"skipped_count"`
	Error        string          `json:"error,omitempty"`
}

func errorJSON(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// statusFor maps engine and store errors to HTTP status codes.
func statusFor(err error) int {
	var pe *engine.PlacementError
	switch {
	case errors.Is(err, engine.ErrNoPlaceableItems), errors.As(err, &pe):
		return http.StatusUnprocessableEntity
	case errors.Is(err, project.ErrResultNotFound):
		return http.StatusNotFound
	case errors.Is(err, project.ErrInvalidResultID):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) settingsOrDefault(settings *model.Settings) model.Settings {
	if settings == nil {
		return s.opts.Defaults
	}
	return *settings
}

func (s *Server) calcContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout > 0 {
		return context.WithTimeout(c.Request.Context(), s.opts.Timeout)
	}
	return context.WithCancel(c.Request.Context())
}

// withIDs gives every item without an id a generated one.
func withIDs(items []model.Item) []model.Item {
	out := make([]model.Item, len(items))
	for i, it := range items {
		if it.ID == "" {
			it.ID = uuid.New().String()[:8]
		}
		out[i] = it
	}
	return out
}

func bindItems(c *gin.Context, req any, items func() []model.Item) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return false
	}
	if len(items()) == 0 {
		errorJSON(c, http.StatusBadRequest, errors.New("items must not be empty"))
		return false
	}
	return true
}

func (s *Server) handleCalculate(c *gin.Context) {
	var req CalculateRequest
	if !bindItems(c, &req, func() []model.Item { return req.Items }) {
		return
	}
	ctx, cancel := s.calcContext(c)
	defer cancel()

	opt := engine.New(s.settingsOrDefault(req.Settings))
	items := withIDs(req.Items)
	var (
		result model.CalculationResult
		err    error
	)
	if len(req.Offcuts) > 0 {
		result, err = opt.CalculateWithOffcuts(ctx, items, req.Offcuts)
	} else {
		result, err = opt.Calculate(ctx, items)
	}
	if err != nil {
		errorJSON(c, statusFor(err), err)
		return
	}

	if req.SaveAs != "" {
		if s.opts.Store == nil {
			errorJSON(c, http.StatusBadRequest, errors.New("result storage is not enabled"))
			return
		}
		if err := s.opts.Store.Put(req.SaveAs, result); err != nil {
			errorJSON(c, statusFor(err), err)
			return
		}
		c.Header("Location", "/api/v1/results/"+req.SaveAs)
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleCompare(c *gin.Context) {
	var req CalculateRequest
	if !bindItems(c, &req, func() []model.Item { return req.Items }) {
		return
	}
	ctx, cancel := s.calcContext(c)
	defer cancel()

	scenarios := engine.BuildDefaultScenarios(s.settingsOrDefault(req.Settings))
	results := engine.CompareScenarios(ctx, scenarios, withIDs(req.Items), req.Offcuts)

	resp := make([]ScenarioResponse, len(results))
	for i, r := range results {
		resp[i] = ScenarioResponse{
			Name:         r.Scenario.Name,
			Plates:       r.Plates,
			AverageYield: r.AverageYield,
			TotalCost:    r.TotalCost,
			SkippedCount: r.SkippedCount,
		}
		if r.Err != nil {
			resp[i].Error = r.Err.Error()
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleVerify(c *gin.Context) {
	var req VerifyRequest
	if !bindItems(c, &req, func() []model.Item { return req.Items }) {
		return
	}
	settings := s.settingsOrDefault(req.Settings)

	violations := engine.VerifyResult(req.Result, req.Items, settings.Plate, settings.Cut)
	if violations == nil {
		violations = []engine.Violation{}
	}
	c.JSON(http.StatusOK, VerifyResponse{Valid: len(violations) == 0, Violations: violations})
}

func (s *Server) handleEstimate(c *gin.Context) {
	var req EstimateRequest
	if !bindItems(c, &req, func() []model.Item { return req.Items }) {
		return
	}
	settings := s.settingsOrDefault(req.Settings)
	c.JSON(http.StatusOK, model.EstimatePlates(req.Items, settings.Plate, settings.Cut, req.WastePercent))
}

func (s *Server) handleListTemplates(c *gin.Context) {
	templates := s.opts.Templates.Templates
	if templates == nil {
		templates = []model.JobTemplate{}
	}
	c.JSON(http.StatusOK, templates)
}

func (s *Server) handleGetTemplate(c *gin.Context) {
	t := s.opts.Templates.FindByName(c.Param("name"))
	if t == nil {
		errorJSON(c, http.StatusNotFound, errors.New("template not found"))
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleListResults(c *gin.Context) {
	ids, err := s.opts.Store.List()
	if err != nil {
		errorJSON(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ids": ids})
}

func (s *Server) handleGetResult(c *gin.Context) {
	result, err := s.opts.Store.Get(c.Param("id"))
	if err != nil {
		errorJSON(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleResultChart(c *gin.Context) {
	result, err := s.opts.Store.Get(c.Param("id"))
	if err != nil {
		errorJSON(c, statusFor(err), err)
		return
	}
	if len(result.Patterns) == 0 {
		errorJSON(c, http.StatusUnprocessableEntity, export.ErrNoPatterns)
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := export.ExportYieldChart(c.Writer, result); err != nil {
		_ = c.Error(err)
	}
}

func (s *Server) handleDeleteResult(c *gin.Context) {
	if err := s.opts.Store.Delete(c.Param("id")); err != nil {
		errorJSON(c, statusFor(err), err)
		return
	}
	c.Status(http.StatusNoContent)
}
