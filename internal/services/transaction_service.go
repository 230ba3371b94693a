package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zeus-03/pennytrail/internal/dates"
	"github.com/zeus-03/pennytrail/internal/dto"
	"github.com/zeus-03/pennytrail/internal/models"
	"github.com/zeus-03/pennytrail/internal/repositories"
	"github.com/zeus-03/pennytrail/internal/stats"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// TransactionService handles transaction operations for connected accounts
type TransactionService struct {
	txRepo    repositories.TransactionRepositoryInterface
	auditRepo repositories.AuditLogRepositoryInterface
	metrics   MetricsRecorderInterface
	logger    *slog.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(
	txRepo repositories.TransactionRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) TransactionServiceInterface {
	return &TransactionService{
		txRepo:    txRepo,
		auditRepo: auditRepo,
		metrics:   metrics,
		logger:    logger,
	}
}

// List returns a page of the user's transactions matching the filters.
// Time-range keys are resolved against now so week, month and quarter all use
// the same reference instant.
func (s *TransactionService) List(userID uuid.UUID, filters dto.TransactionFilters, page dto.PaginationParams, now time.Time) (*dto.ListTransactionsResponse, error) {
	repoFilters := models.TransactionFilters{
		UserID:   userID,
		Category: filters.Category,
		Merchant: filters.Search,
		Page:     page.Page,
		Limit:    page.Limit,
	}

	if repoFilters.Page < 1 {
		repoFilters.Page = 1
	}
	if repoFilters.Limit < 1 {
		repoFilters.Limit = DefaultPageSize
	}
	if repoFilters.Limit > MaxPageSize {
		repoFilters.Limit = MaxPageSize
	}

	if r, ok := dates.RangeFor(filters.TimeRange, now); ok {
		repoFilters.StartDate = &r.Start
		repoFilters.EndDate = &r.End
	}

	transactions, total, err := s.txRepo.GetWithFilters(repoFilters)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(repoFilters.Limit) - 1) / int64(repoFilters.Limit))

	responses := make([]dto.TransactionResponse, len(transactions))
	for i, tx := range transactions {
		responses[i] = toTransactionResponse(&tx)
	}

	return &dto.ListTransactionsResponse{
		Transactions: responses,
		Pagination: dto.PaginationInfo{
			CurrentPage:       repoFilters.Page,
			TotalPages:        totalPages,
			TotalTransactions: total,
			HasNextPage:       repoFilters.Page < totalPages,
			HasPrevPage:       repoFilters.Page > 1,
		},
	}, nil
}

// Create adds a new transaction for the user
func (s *TransactionService) Create(userID uuid.UUID, req *dto.TransactionRequest, ipAddress, userAgent string) (*models.Transaction, error) {
	tx, err := transactionFromRequest(req)
	if err != nil {
		return nil, err
	}
	tx.UserID = userID

	if err := s.txRepo.Create(tx); err != nil {
		s.recordMutation("create", "error")
		return nil, err
	}

	s.recordMutation("create", "success")
	if s.metrics != nil {
		amount, _ := tx.Amount.Float64()
		s.metrics.RecordGauge("transaction_amount", amount, nil)
	}
	s.auditTransaction(userID, models.AuditActionTransactionCreated, tx.ID, ipAddress, userAgent)

	return tx, nil
}

// Get returns one of the user's transactions by id
func (s *TransactionService) Get(userID uuid.UUID, id string) (*models.Transaction, error) {
	return s.txRepo.GetByID(userID, id)
}

// Update replaces the writable fields of one of the user's transactions
func (s *TransactionService) Update(userID uuid.UUID, id string, req *dto.TransactionRequest, ipAddress, userAgent string) (*models.Transaction, error) {
	existing, err := s.txRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	updated, err := transactionFromRequest(req)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.UserID = existing.UserID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()

	if err := s.txRepo.Update(updated); err != nil {
		s.recordMutation("update", "error")
		return nil, err
	}

	s.recordMutation("update", "success")
	s.auditTransaction(userID, models.AuditActionTransactionUpdated, id, ipAddress, userAgent)

	return updated, nil
}

// Delete removes one of the user's transactions
func (s *TransactionService) Delete(userID uuid.UUID, id string, ipAddress, userAgent string) error {
	if err := s.txRepo.Delete(userID, id); err != nil {
		s.recordMutation("delete", "error")
		return err
	}

	s.recordMutation("delete", "success")
	s.auditTransaction(userID, models.AuditActionTransactionDeleted, id, ipAddress, userAgent)

	return nil
}

// Summary computes the spending summary over all of the user's transactions
func (s *TransactionService) Summary(userID uuid.UUID, now time.Time) (*models.Summary, error) {
	start := time.Now()

	transactions, err := s.txRepo.GetAllByUserID(userID)
	if err != nil {
		return nil, err
	}

	summary := stats.Aggregate(transactions, now)

	if s.metrics != nil {
		s.metrics.IncrementCounter("summary.computed", nil)
		s.metrics.RecordProcessingTime("summary.duration", time.Since(start))
	}

	return &summary, nil
}

func transactionFromRequest(req *dto.TransactionRequest) (*models.Transaction, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", req.Amount, err)
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	return &models.Transaction{
		Merchant:        req.Merchant,
		Amount:          amount,
		Category:        req.Category,
		Currency:        currency,
		TransactionDate: req.TransactionDate,
		Verified:        req.Verified,
		Tags:            req.Tags,
	}, nil
}

func toTransactionResponse(tx *models.Transaction) dto.TransactionResponse {
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

func (s *TransactionService) recordMutation(operation, status string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementCounter("transaction.mutation", map[string]string{
		"operation": operation,
		"status":    status,
	})
}

func (s *TransactionService) auditTransaction(userID uuid.UUID, action, transactionID, ipAddress, userAgent string) {
	log := &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "transaction",
		ResourceID: transactionID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
	}

	if err := s.auditRepo.Create(log); err != nil {
		s.logger.Error("failed to create audit log",
			"error", err,
			"action", action,
			"transaction_id", transactionID)
	}
}
