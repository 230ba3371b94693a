package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/zeus-03/pennytrail/internal/errors"
	"github.com/zeus-03/pennytrail/internal/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const dependencyProbeTimeout = 3 * time.Second

// HealthCheckHandler handles the health and readiness endpoints
type HealthCheckHandler struct {
	db         *gorm.DB
	extractor  services.ExtractorClientInterface
	classifier services.ClassifierClientInterface
}

// NewHealthCheckHandler creates a new health check handler
func NewHealthCheckHandler(
	db *gorm.DB,
	extractor services.ExtractorClientInterface,
	classifier services.ClassifierClientInterface,
) *HealthCheckHandler {
	return &HealthCheckHandler{
		db:         db,
		extractor:  extractor,
		classifier: classifier,
	}
}

// HealthCheck adds the health check endpoint
// @Summary Health check
// @Description Check API and database connectivity status
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,time=string} "Service is healthy"
// @Failure 503 {object} errors.ErrorResponse "SYSTEM_003 - Service unavailable (database connection failed)"
// @Router /health [get]
func (h *HealthCheckHandler) HealthCheck(c echo.Context) error {
	// Check database connectivity by getting the underlying sql.DB
	sqlDB, err := h.db.DB()
	if err != nil {
		return h.sendUnavailable(c, "Database connection failed")
	}

	if err := sqlDB.Ping(); err != nil {
		return h.sendUnavailable(c, "Database connection failed")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Readiness probes the database and both downstream services
// @Summary Readiness check
// @Description Check the database plus the email extraction and transaction classification services. Reports per-dependency status; 503 when any dependency is down.
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,dependencies=object} "All dependencies reachable"
// @Failure 503 {object} object{status=string,dependencies=object} "One or more dependencies down"
// @Router /health/ready [get]
func (h *HealthCheckHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dependencyProbeTimeout)
	defer cancel()

	dependencies := map[string]string{
		"database":   "up",
		"extractor":  "up",
		"classifier": "up",
	}
	ready := true

	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		dependencies["database"] = "down"
		ready = false
	}

	if err := h.extractor.Health(ctx); err != nil {
		dependencies["extractor"] = "down"
		ready = false
	}

	if err := h.classifier.Health(ctx); err != nil {
		dependencies["classifier"] = "down"
		ready = false
	}

	status := http.StatusOK
	statusText := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		statusText = "degraded"
	}

	return c.JSON(status, map[string]interface{}{
		"status":       statusText,
		"dependencies": dependencies,
		"time":         time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthCheckHandler) sendUnavailable(c echo.Context, details string) error {
	traceID := getTraceIDFromContext(c)
	errorResponse := errors.NewErrorResponse(
		errors.SystemServiceUnavailable,
		traceID,
		errors.WithDetails(details),
	)
	return c.JSON(http.StatusServiceUnavailable, errorResponse)
}

// Helper to get trace ID from context
func getTraceIDFromContext(c echo.Context) string {
	traceID := c.Response().Header().Get("X-Trace-ID")
	if traceID == "" {
		if tid, ok := c.Get("trace_id").(string); ok {
			traceID = tid
		}
	}
	if traceID == "" {
		traceID = "unknown"
	}
	return traceID
}
