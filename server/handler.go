package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"insurecalc/models"
	"insurecalc/service"
	"insurecalc/spreadsheet"
)

// Handler serves the contribution API
type Handler struct {
	contributions service.ContributionService
	imports       service.ImportService
	validator     *service.RecordValidator
}

// NewHandler creates a new API handler
func NewHandler(contributions service.ContributionService, imports service.ImportService) *Handler {
	return &Handler{
		contributions: contributions,
		imports:       imports,
		validator:     service.NewRecordValidator(),
	}
}

// RegisterRoutes registers the API routes on router
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/cities", h.ListCities)
	router.GET("/city-standards", h.ListCityStandards)

	router.POST("/import/cities", h.ImportCities)
	router.POST("/import/salaries", h.ImportSalaries)

	router.POST("/calculate", h.Calculate)
	router.GET("/results", h.ListResults)
	router.GET("/stats", h.Stats)
}

// CalculateRequest selects the city standard for a run
type CalculateRequest struct {
	CityName string `json:"city_name"`
	Year     string `json:"year"`
}

// ListCities returns the selectable (city, year) pairs
// GET /api/cities
func (h *Handler) ListCities(c *gin.Context) {
	pairs, err := h.contributions.ListAvailableCityYearPairs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if pairs == nil {
		pairs = []models.CityYear{}
	}
	c.JSON(http.StatusOK, gin.H{"cities": pairs})
}

// ListCityStandards returns every stored city standard
// GET /api/city-standards
func (h *Handler) ListCityStandards(c *gin.Context) {
	standards, err := h.imports.ListCityStandards(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if standards == nil {
		standards = []*models.CityStandard{}
	}
	c.JSON(http.StatusOK, gin.H{"city_standards": standards})
}

// ImportCities replaces the city standards with an uploaded workbook or a JSON array
// POST /api/import/cities
func (h *Handler) ImportCities(c *gin.Context) {
	standards, err := readRecords(c, h.validator.CityStandardsFromInput, spreadsheet.ParseCityStandards)
	if err != nil {
		respondError(c, err)
		return
	}

	count, err := h.imports.ImportCityStandards(c.Request.Context(), standards)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("imported %d city standards", count),
		"count":   count,
	})
}

// ImportSalaries replaces the salary records with an uploaded workbook or a JSON array
// POST /api/import/salaries
func (h *Handler) ImportSalaries(c *gin.Context) {
	salaries, err := readRecords(c, h.validator.SalariesFromInput, spreadsheet.ParseSalaries)
	if err != nil {
		respondError(c, err)
		return
	}

	count, err := h.imports.ImportSalaries(c.Request.Context(), salaries)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("imported %d salary records", count),
		"count":   count,
	})
}

// Calculate runs a contribution calculation and returns the new result set
// POST /api/calculate
func (h *Handler) Calculate(c *gin.Context) {
	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "code": "VALIDATION_ERROR"})
		return
	}

	results, err := h.contributions.ComputeContributions(c.Request.Context(), req.CityName, req.Year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("computed contributions for %d employees", len(results)),
		"results": results,
	})
}

// ListResults returns the current result set
// GET /api/results
func (h *Handler) ListResults(c *gin.Context) {
	results, err := h.contributions.ListResults(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if results == nil {
		results = []*models.ComputationResult{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// Stats returns the dataset counts
// GET /api/stats
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.contributions.Statistics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// readRecords decodes a JSON array body through fromInput, or parses the workbook uploaded in the "file" form field
func readRecords[In, T any](c *gin.Context, fromInput func([]In) ([]T, error), parse func(io.Reader) ([]T, error)) ([]T, error) {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var inputs []In
		if err := c.ShouldBindJSON(&inputs); err != nil {
			return nil, &service.ValidationError{
				Dataset:    "request",
				Violations: []service.Violation{{Index: -1, Field: "body", Message: "must be a JSON array of records"}},
			}
		}
		return fromInput(inputs)
	}

	upload, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: no file uploaded in field \"file\"", spreadsheet.ErrInvalidWorkbook)
	}
	if err := spreadsheet.CheckFileName(upload.Filename); err != nil {
		return nil, err
	}

	f, err := upload.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	return parse(f)
}
