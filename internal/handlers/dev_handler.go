package handlers

import (
	"net/http"
	"time"

	"github.com/zeus-03/pennytrail/internal/errors"
	"github.com/zeus-03/pennytrail/internal/models"
	"github.com/zeus-03/pennytrail/internal/repositories"
	"github.com/zeus-03/pennytrail/internal/services"

	"github.com/labstack/echo/v4"
)

// DevHandler handles development-only endpoints
// These endpoints should only be available in development environments
type DevHandler struct {
	transactionRepo repositories.TransactionRepositoryInterface
	generator       services.TransactionGeneratorInterface
}

// NewDevHandler creates a new development handler
func NewDevHandler(transactionRepo repositories.TransactionRepositoryInterface) *DevHandler {
	return &DevHandler{
		transactionRepo: transactionRepo,
		generator:       services.NewTransactionGenerator(),
	}
}

// SeedTransactions generates realistic sample expense data for the caller
//
// Method: POST /api/v1/dev/seed
// Authentication: Required (connected accounts only)
// Environment: Development only
//
// Query parameters:
//   - count: Number of transactions to generate (default: 100, max: 1000)
//   - days: Number of days of history to generate (default: 90, max: 365)
//
// Success Response: 200 OK
//   - message: Success message
//   - transactions_created: Number of transactions created
//   - total_transactions: Total the account holds after seeding
//   - date_range: Start and end of the generated window
func (h *DevHandler) SeedTransactions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	// Guest data lives client-side; seeding targets database accounts only.
	if isGuestRequest(c) {
		return SendError(c, errors.AuthInsufficientPermission)
	}

	count := getIntParam(c, "count", 100)
	if count < 1 {
		count = 1
	}
	if count > 1000 {
		count = 1000
	}

	days := getIntParam(c, "days", 90)
	if days < 1 {
		days = 1
	}
	if days > 365 {
		days = 365
	}

	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	generated := h.generator.GenerateHistoricalTransactions(userID, startDate, endDate, count)

	batch := make([]models.Transaction, 0, len(generated))
	for _, txn := range generated {
		batch = append(batch, *txn)
	}

	if err := h.transactionRepo.CreateBatch(batch); err != nil {
		return SendSystemError(c, err)
	}

	// Seeding is additive; report the resulting total so repeated runs are
	// visible to the caller.
	total, err := h.transactionRepo.CountByUserID(userID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":              "sample data generated successfully",
		"transactions_created": len(batch),
		"total_transactions":   total,
		"date_range": map[string]string{
			"start": startDate.Format(time.RFC3339),
			"end":   endDate.Format(time.RFC3339),
		},
	})
}
