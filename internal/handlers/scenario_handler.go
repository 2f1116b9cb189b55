package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/mkleiva/uttak/api/internal/errors"
	"github.com/mkleiva/uttak/api/internal/export"
	"github.com/mkleiva/uttak/api/internal/models"
	"github.com/mkleiva/uttak/api/internal/services"
	"github.com/mkleiva/uttak/api/internal/validate"
)

// ScenarioHandler handles scenario calculation HTTP requests.
type ScenarioHandler struct {
	service services.ScenarioService
}

// NewScenarioHandler creates a new ScenarioHandler instance.
func NewScenarioHandler(service services.ScenarioService) *ScenarioHandler {
	return &ScenarioHandler{service: service}
}

// ScenarioResponse is the success envelope for scenario endpoints.
type ScenarioResponse struct {
	Result   *models.ScenarioResult `json:"result"`
	Warnings []string               `json:"warnings,omitempty"`
}

// OptimizeRequest adds the optional grid step to the raw payload.
type OptimizeRequest struct {
	validate.RawInput
	Step int `json:"step"`
}

// OptimizeResponse is the success envelope for the optimize endpoint.
type OptimizeResponse struct {
	Result   *models.OptimizationResult `json:"result"`
	Warnings []string                   `json:"warnings,omitempty"`
}

// CompareResponse is the success envelope for the compare endpoint.
type CompareResponse struct {
	Comparison *models.Comparison `json:"comparison"`
	Warnings   []string           `json:"warnings,omitempty"`
}

// BreakpointsRequest binds the breakpoints query parameters.
type BreakpointsRequest struct {
	Zone string `form:"zone" binding:"required"`
}

// HistoryRequest binds the history query parameters.
type HistoryRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// HistoryResponse lists recent calculation records.
type HistoryResponse struct {
	Calculations []models.CalculationRecord `json:"calculations"`
	Count        int                        `json:"count"`
}

// RatesResponse summarizes the active rate table.
type RatesResponse struct {
	Year                  int      `json:"year"`
	CorporateRate         float64  `json:"corporate_rate"`
	PersonalRate          float64  `json:"personal_rate"`
	GrossUpFactor         float64  `json:"gross_up_factor"`
	DividendEffectiveRate float64  `json:"dividend_effective_rate"`
	Zones                 []string `json:"zones"`
	BracketCount          int      `json:"bracket_count"`
}

// bindRawInput reads the loosely-typed calculation payload. Malformed
// JSON is a plain bad request; field-level problems are left to the
// domain validator so the client gets the complete list.
func bindRawInput(c *gin.Context, raw *validate.RawInput) bool {
	if err := c.ShouldBindJSON(raw); err != nil {
		apierrors.BadRequest(c, "Request body must be a JSON object", nil)
		return false
	}
	return true
}

// respondServiceError maps a service failure onto the 400/500 split:
// validation failures are the client's fault, anything else is ours.
func respondServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationFailedError
	if errors.As(err, &validationErr) {
		apierrors.ValidationFailed(c, validationErr.Errors, validationErr.Warnings)
		return
	}
	apierrors.CalculationError(c, "Calculation failed", err)
}

// Salary handles POST /api/v1/scenarios/salary.
func (h *ScenarioHandler) Salary(c *gin.Context) {
	var raw validate.RawInput
	if !bindRawInput(c, &raw) {
		return
	}

	result, warnings, err := h.service.Salary(c.Request.Context(), raw)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ScenarioResponse{Result: result, Warnings: warnings})
}

// Dividend handles POST /api/v1/scenarios/dividend.
func (h *ScenarioHandler) Dividend(c *gin.Context) {
	var raw validate.RawInput
	if !bindRawInput(c, &raw) {
		return
	}

	result, warnings, err := h.service.Dividend(c.Request.Context(), raw)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ScenarioResponse{Result: result, Warnings: warnings})
}

// Combination handles POST /api/v1/scenarios/combination.
func (h *ScenarioHandler) Combination(c *gin.Context) {
	var raw validate.RawInput
	if !bindRawInput(c, &raw) {
		return
	}

	result, warnings, err := h.service.Combination(c.Request.Context(), raw)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ScenarioResponse{Result: result, Warnings: warnings})
}

// Optimize handles POST /api/v1/scenarios/optimize.
func (h *ScenarioHandler) Optimize(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Request body must be a JSON object", nil)
		return
	}

	result, warnings, err := h.service.Optimize(c.Request.Context(), req.RawInput, req.Step)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, OptimizeResponse{Result: result, Warnings: warnings})
}

// Compare handles POST /api/v1/scenarios/compare. With ?format=csv
// the ranked table is returned as a CSV attachment instead of JSON.
func (h *ScenarioHandler) Compare(c *gin.Context) {
	var raw validate.RawInput
	if !bindRawInput(c, &raw) {
		return
	}

	comparison, warnings, err := h.service.Compare(c.Request.Context(), raw)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if c.Query("format") == "csv" {
		csvBody, err := export.ComparisonCSV(comparison)
		if err != nil {
			apierrors.InternalServerError(c, "Failed to render CSV export", err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="comparison.csv"`)
		c.Data(http.StatusOK, "text/csv", csvBody)
		return
	}

	c.JSON(http.StatusOK, CompareResponse{Comparison: comparison, Warnings: warnings})
}

// Breakpoints handles GET /api/v1/breakpoints.
func (h *ScenarioHandler) Breakpoints(c *gin.Context) {
	var req BreakpointsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	report, err := h.service.Breakpoints(req.Zone)
	if err != nil {
		// The zone never passed the domain validator here, so an
		// unknown zone is the client's error, not a defect.
		apierrors.BadRequest(c, err.Error(), nil)
		return
	}

	c.JSON(http.StatusOK, report)
}

// History handles GET /api/v1/history.
func (h *ScenarioHandler) History(c *gin.Context) {
	var req HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	records, err := h.service.History(c.Request.Context(), req.Limit)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load calculation history", err)
		return
	}

	c.JSON(http.StatusOK, HistoryResponse{Calculations: records, Count: len(records)})
}

// Rates handles GET /api/v1/rates.
func (h *ScenarioHandler) Rates(c *gin.Context) {
	table := h.service.RateTable()
	c.JSON(http.StatusOK, RatesResponse{
		Year:                  table.Year,
		CorporateRate:         table.CorporateRate,
		PersonalRate:          table.PersonalRate,
		GrossUpFactor:         table.GrossUpFactor,
		DividendEffectiveRate: models.RoundRate(table.DividendEffectiveRate()),
		Zones:                 table.ZoneIDs(),
		BracketCount:          len(table.Brackets),
	})
}
