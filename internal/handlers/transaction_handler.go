package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/zeus-03/pennytrail/internal/dto"
	"github.com/zeus-03/pennytrail/internal/errors"
	"github.com/zeus-03/pennytrail/internal/models"
	"github.com/zeus-03/pennytrail/internal/repositories"
	"github.com/zeus-03/pennytrail/internal/services"

	"github.com/labstack/echo/v4"
)

const summaryCacheTTL = time.Minute

// TransactionHandler serves the transaction API. Requests carrying a guest
// token are routed to the local store; everything else goes through the
// database-backed service. Both paths produce identical response shapes.
type TransactionHandler struct {
	txService    services.TransactionServiceInterface
	guestService services.GuestServiceInterface
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(
	txService services.TransactionServiceInterface,
	guestService services.GuestServiceInterface,
) *TransactionHandler {
	return &TransactionHandler{
		txService:    txService,
		guestService: guestService,
	}
}

// ListTransactions retrieves paginated transaction history with filtering
// @Summary List transactions
// @Description Retrieve paginated and filtered transaction history. Filters combine as an AND: time range, category and merchant search.
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number (1-based)" default(1)
// @Param limit query int false "Number of results per page (max 200)" default(20)
// @Param timeRange query string false "Filter by time range" Enums(all, week, month, quarter)
// @Param category query string false "Filter by category key, or 'all'"
// @Param search query string false "Case-insensitive merchant substring"
// @Success 200 {object} dto.ListTransactionsResponse "Transactions with pagination envelope"
// @Failure 400 {object} errors.ErrorResponse "TRANSACTION_005 - Unknown time range"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 422 {object} errors.ErrorResponse "TRANSACTION_003 - Unknown category"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	filters, err := parseTransactionFilters(c)
	if err != nil {
		if err == errUnknownTimeRange {
			return SendError(c, errors.TransactionInvalidTimeRange)
		}
		return SendError(c, errors.TransactionInvalidCategory)
	}

	pagination, err := parsePaginationParams(c)
	if err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	if isGuestRequest(c) {
		matched := h.guestService.List(models.FilterSpec{
			TimeRange: filters.TimeRange,
			Category:  filters.Category,
			Search:    filters.Search,
		}, time.Now())

		return c.JSON(http.StatusOK, paginateGuestTransactions(matched, pagination))
	}

	response, err := h.txService.List(userID, filters, pagination, time.Now())
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, response)
}

// GetTransaction retrieves a specific transaction by ID
// @Summary Get transaction by ID
// @Description Retrieve a single transaction owned by the caller
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse "Transaction details"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 404 {object} errors.ErrorResponse "TRANSACTION_001 - Transaction not found"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	id := c.Param("id")

	if isGuestRequest(c) {
		for _, tx := range h.guestService.List(models.FilterSpec{}, time.Now()) {
			if tx.ID == id {
				return c.JSON(http.StatusOK, transactionResponse(&tx))
			}
		}
		return SendError(c, errors.TransactionNotFound)
	}

	transaction, err := h.txService.Get(userID, id)
	if err != nil {
		if err == repositories.ErrTransactionNotFound {
			return SendError(c, errors.TransactionNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, transactionResponse(transaction))
}

// CreateTransaction records a new transaction
// @Summary Create transaction
// @Description Record a manual transaction. Guest sessions write to the local store.
// @Tags Transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.TransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse "Created transaction"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 or TRANSACTION_002 - Invalid amount"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 422 {object} errors.ErrorResponse "TRANSACTION_003 - Unknown category"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.TransactionRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	if isGuestRequest(c) {
		created, err := h.guestService.Create(&req)
		if err != nil {
			return sendTransactionError(c, err)
		}
		return c.JSON(http.StatusCreated, transactionResponse(created))
	}

	created, err := h.txService.Create(userID, &req, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		return sendTransactionError(c, err)
	}

	return c.JSON(http.StatusCreated, transactionResponse(created))
}

// UpdateTransaction replaces the writable fields of a transaction
// @Summary Update transaction
// @Description Full replace of a transaction's writable fields by id
// @Tags Transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body dto.TransactionRequest true "New transaction details"
// @Success 200 {object} dto.TransactionResponse "Updated transaction"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 or TRANSACTION_002 - Invalid amount"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 404 {object} errors.ErrorResponse "TRANSACTION_001 - Transaction not found"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	id := c.Param("id")

	var req dto.TransactionRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	if isGuestRequest(c) {
		updated, found, err := h.guestService.Update(id, &req)
		if err != nil {
			return sendTransactionError(c, err)
		}
		if !found {
			return SendError(c, errors.TransactionNotFound)
		}
		return c.JSON(http.StatusOK, transactionResponse(updated))
	}

	updated, err := h.txService.Update(userID, id, &req, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		if err == repositories.ErrTransactionNotFound {
			return SendError(c, errors.TransactionNotFound)
		}
		return sendTransactionError(c, err)
	}

	return c.JSON(http.StatusOK, transactionResponse(updated))
}

// DeleteTransaction removes a transaction
// @Summary Delete transaction
// @Description Delete a transaction by id
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} SuccessResponse{message=string} "Transaction deleted"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 404 {object} errors.ErrorResponse "TRANSACTION_001 - Transaction not found"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	id := c.Param("id")

	if isGuestRequest(c) {
		found, err := h.guestService.Delete(id)
		if err != nil {
			return SendSystemError(c, err)
		}
		if !found {
			return SendError(c, errors.TransactionNotFound)
		}
		return c.JSON(http.StatusOK, SuccessResponse{Message: "Transaction deleted"})
	}

	if err := h.txService.Delete(userID, id, getClientIP(c), c.Request().UserAgent()); err != nil {
		if err == repositories.ErrTransactionNotFound {
			return SendError(c, errors.TransactionNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "Transaction deleted"})
}

// GetSummary computes the dashboard spending summary
// @Summary Spending summary
// @Description Aggregate all of the caller's transactions: total to date, current-month category breakdown, monthly series and current-week daily breakdown
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Summary "Spending summary"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /transactions/summary [get]
func (h *TransactionHandler) GetSummary(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var summary *models.Summary
	if isGuestRequest(c) {
		summary = h.guestService.Summary(time.Now())
	} else {
		summary, err = h.txService.Summary(userID, time.Now())
		if err != nil {
			return SendSystemError(c, err)
		}
	}

	c.Response().Header().Set("Cache-Control", fmt.Sprintf("private, max-age=%d", int(summaryCacheTTL.Seconds())))

	return c.JSON(http.StatusOK, summary)
}

// GetCategories returns the category presentation catalog
// @Summary List categories
// @Description Return the closed category set with display labels and colors, in canonical order
// @Tags Transactions
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.CategoryInfo} "Category catalog"
// @Router /categories [get]
func (h *TransactionHandler) GetCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, SuccessResponse{
		Data: models.Categories(),
	})
}

var (
	errUnknownTimeRange = fmt.Errorf("unknown time range")
	errUnknownCategory  = fmt.Errorf("unknown category")
)

// parseTransactionFilters validates the filter query parameters. Unknown time
// range or category keys are rejected rather than silently widened.
func parseTransactionFilters(c echo.Context) (dto.TransactionFilters, error) {
	filters := dto.TransactionFilters{
		TimeRange: c.QueryParam("timeRange"),
		Category:  c.QueryParam("category"),
		Search:    c.QueryParam("search"),
	}

	if filters.TimeRange != "" && !models.IsValidTimeRange(filters.TimeRange) {
		return filters, errUnknownTimeRange
	}

	if filters.Category != "" && filters.Category != models.CategoryAll && !models.IsValidCategory(filters.Category) {
		return filters, errUnknownCategory
	}

	return filters, nil
}

// parsePaginationParams parses pagination parameters from query string
func parsePaginationParams(c echo.Context) (dto.PaginationParams, error) {
	params := dto.PaginationParams{
		Page:  1,
		Limit: services.DefaultPageSize,
	}

	if pageStr := c.QueryParam("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return params, fmt.Errorf("page must be a positive integer")
		}
		params.Page = page
	}

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return params, fmt.Errorf("limit must be a positive integer")
		}
		if limit > services.MaxPageSize {
			limit = services.MaxPageSize
		}
		params.Limit = limit
	}

	return params, nil
}

// paginateGuestTransactions applies page-number pagination in memory so guest
// responses carry the same envelope as repository-backed ones.
func paginateGuestTransactions(matched []models.Transaction, params dto.PaginationParams) dto.ListTransactionsResponse {
	total := int64(len(matched))
	totalPages := int((total + int64(params.Limit) - 1) / int64(params.Limit))

	start := (params.Page - 1) * params.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + params.Limit
	if end > len(matched) {
		end = len(matched)
	}

	page := matched[start:end]
	responses := make([]dto.TransactionResponse, len(page))
	for i := range page {
		responses[i] = transactionResponse(&page[i])
	}

	return dto.ListTransactionsResponse{
		Transactions: responses,
		Pagination: dto.PaginationInfo{
			CurrentPage:       params.Page,
			TotalPages:        totalPages,
			TotalTransactions: total,
			HasNextPage:       params.Page < totalPages,
			HasPrevPage:       params.Page > 1,
		},
	}
}

func transactionResponse(tx *models.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:              tx.ID,
		Merchant:        tx.Merchant,
		Amount:          tx.Amount.StringFixed(2),
		Category:        tx.Category,
		Currency:        tx.Currency,
		TransactionDate: tx.TransactionDate,
		Verified:        tx.Verified,
		Tags:            tx.Tags,
		CreatedAt:       tx.CreatedAt,
		UpdatedAt:       tx.UpdatedAt,
	}
}

// sendTransactionError maps transaction validation sentinels to their error
// codes; anything unrecognized is a system error.
func sendTransactionError(c echo.Context, err error) error {
	switch err {
	case models.ErrNegativeAmount:
		return SendError(c, errors.TransactionInvalidAmount)
	case models.ErrInvalidCategory:
		return SendError(c, errors.TransactionInvalidCategory)
	case models.ErrMerchantRequired, models.ErrDateRequired:
		return SendError(c, errors.TransactionValidationFailed, errors.WithDetails(err.Error()))
	default:
		return SendSystemError(c, err)
	}
}
