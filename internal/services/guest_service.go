package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zeus-03/pennytrail/internal/dto"
	"github.com/zeus-03/pennytrail/internal/localstore"
	"github.com/zeus-03/pennytrail/internal/models"
	"github.com/zeus-03/pennytrail/internal/stats"
)

// GuestService serves transaction operations out of the local guest store.
// Guests have no server account, so everything here is filtering and
// aggregation over the locally persisted collection.
type GuestService struct {
	store   *localstore.Store
	metrics MetricsRecorderInterface
	logger  *slog.Logger
}

// NewGuestService creates a guest service backed by the given store
func NewGuestService(store *localstore.Store, metrics MetricsRecorderInterface, logger *slog.Logger) GuestServiceInterface {
	return &GuestService{
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// List returns the guest transactions matching the filter spec
func (s *GuestService) List(spec models.FilterSpec, now time.Time) []models.Transaction {
	s.recordOperation("list")
	return stats.Filter(s.store.List(), spec, now)
}

// Create adds a transaction to the guest store
func (s *GuestService) Create(req *dto.TransactionRequest) (*models.Transaction, error) {
	tx, err := guestTransactionFromRequest(req)
	if err != nil {
		return nil, err
	}

	stored, err := s.store.Add(*tx)
	if err != nil {
		return nil, err
	}

	s.recordOperation("create")
	s.logger.Debug("guest transaction created", "id", stored.ID, "merchant", stored.Merchant)

	return &stored, nil
}

// Update replaces the writable fields of a guest transaction. The second
// return value is false when no record with the id exists; that case is not an
// error so the caller can report it as not found.
func (s *GuestService) Update(id string, req *dto.TransactionRequest) (*models.Transaction, bool, error) {
	tx, err := guestTransactionFromRequest(req)
	if err != nil {
		return nil, false, err
	}

	found, err := s.store.Update(id, *tx)
	if err != nil || !found {
		return nil, found, err
	}

	s.recordOperation("update")

	for _, stored := range s.store.List() {
		if stored.ID == id {
			return &stored, true, nil
		}
	}
	return nil, false, nil
}

// Delete removes a guest transaction. Returns false when the id is absent.
func (s *GuestService) Delete(id string) (bool, error) {
	found, err := s.store.Delete(id)
	if err == nil && found {
		s.recordOperation("delete")
	}
	return found, err
}

// Summary computes the spending summary over all guest transactions
func (s *GuestService) Summary(now time.Time) *models.Summary {
	s.recordOperation("summary")
	summary := stats.Aggregate(s.store.List(), now)
	return &summary
}

func guestTransactionFromRequest(req *dto.TransactionRequest) (*models.Transaction, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", req.Amount, err)
	}
	if amount.IsNegative() {
		return nil, models.ErrNegativeAmount
	}
	if !models.IsValidCategory(req.Category) {
		return nil, models.ErrInvalidCategory
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

func (s *GuestService) recordOperation(operation string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementCounter("guest.operation", map[string]string{"operation": operation})
}
