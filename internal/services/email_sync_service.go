package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zeus-03/pennytrail/internal/config"
	"github.com/zeus-03/pennytrail/internal/dto"
	"github.com/zeus-03/pennytrail/internal/models"
	"github.com/zeus-03/pennytrail/internal/repositories"
)

var (
	ErrSyncAlreadyRunning = errors.New("a sync is already running for this user")
	ErrExtractionFailed   = errors.New("email extraction failed")
)

// EmailSyncService orchestrates one email sync run: extract candidate
// transactions from the mailbox, classify each one, and persist the batch.
type EmailSyncService struct {
	userRepo        repositories.UserRepositoryInterface
	txRepo          repositories.TransactionRepositoryInterface
	auditRepo       repositories.AuditLogRepositoryInterface
	extractor       ExtractorClientInterface
	classifier      ClassifierClientInterface
	localClassifier *LocalClassifier
	metrics         MetricsRecorderInterface
	syncConfig      config.SyncConfig
	logger          *slog.Logger
}

// NewEmailSyncService creates a new email sync service
func NewEmailSyncService(
	userRepo repositories.UserRepositoryInterface,
	txRepo repositories.TransactionRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
	extractor ExtractorClientInterface,
	classifier ClassifierClientInterface,
	metrics MetricsRecorderInterface,
	syncConfig config.SyncConfig,
	logger *slog.Logger,
) EmailSyncServiceInterface {
	return &EmailSyncService{
		userRepo:        userRepo,
		txRepo:          txRepo,
		auditRepo:       auditRepo,
		extractor:       extractor,
		classifier:      classifier,
		localClassifier: NewLocalClassifier(),
		metrics:         metrics,
		syncConfig:      syncConfig,
		logger:          logger,
	}
}

// Sync runs one sync pass for the user. Concurrent runs for the same user are
// rejected: the in-progress flag is claimed with a conditional update, so only
// one caller wins even across multiple server instances.
func (s *EmailSyncService) Sync(ctx context.Context, userID uuid.UUID, req *dto.SyncRequest, ipAddress, userAgent string) (*dto.SyncResponse, error) {
	user, err := s.userRepo.GetByIDActive(userID)
	if err != nil {
		return nil, err
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = s.syncConfig.DefaultMaxResults
	}

	claimed, err := s.userRepo.BeginSync(userID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		s.recordRun("rejected")
		return nil, ErrSyncAlreadyRunning
	}

	start := time.Now()
	s.auditSync(userID, models.AuditActionEmailSyncStarted, ipAddress, userAgent, map[string]interface{}{
		"max_results": maxResults,
		"sync_all":    req.SyncAll,
	})

	resp, err := s.runSync(ctx, user, maxResults, req.SyncAll)
	if err != nil {
		// Release the claim so the next run isn't locked out forever.
		if clearErr := s.userRepo.UpdateFields(userID, map[string]interface{}{"sync_in_progress": false}); clearErr != nil {
			s.logger.Error("failed to clear sync flag after failure",
				"user_id", userID,
				"error", clearErr,
			)
		}
		s.recordRun("failed")
		s.auditSync(userID, models.AuditActionEmailSyncFailed, ipAddress, userAgent, map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	if err := s.userRepo.FinishSync(userID, resp.TotalEmails, resp.TransactionalEmails, resp.SyncedAt); err != nil {
		s.logger.Error("failed to record sync completion",
			"user_id", userID,
			"error", err,
		)
	}

	s.recordRun("success")
	if s.metrics != nil {
		s.metrics.RecordProcessingTime("sync.duration", time.Since(start))
		s.metrics.RecordGauge("sync.emails", float64(resp.TotalEmails), map[string]string{"kind": "total"})
		s.metrics.RecordGauge("sync.emails", float64(resp.TransactionalEmails), map[string]string{"kind": "transactional"})
	}

	s.auditSync(userID, models.AuditActionEmailSyncFinished, ipAddress, userAgent, map[string]interface{}{
		"total_emails":         resp.TotalEmails,
		"transactional_emails": resp.TransactionalEmails,
		"transactions_created": resp.TransactionsCreated,
	})

	s.logger.Info("email sync completed",
		"user_id", userID,
		"total_emails", resp.TotalEmails,
		"transactional_emails", resp.TransactionalEmails,
		"transactions_created", resp.TransactionsCreated,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return resp, nil
}

func (s *EmailSyncService) runSync(ctx context.Context, user *models.User, maxResults int, syncAll bool) (*dto.SyncResponse, error) {
	var since *time.Time
	if !syncAll {
		since = user.LastSyncDate
	}

	result, err := s.extractor.Extract(ctx, maxResults, syncAll, since)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	transactions := make([]models.Transaction, 0, len(result.Transactions))
	for _, extracted := range result.Transactions {
		tx, err := s.buildTransaction(ctx, user.ID, extracted)
		if err != nil {
			s.logger.Warn("skipping unusable extracted transaction",
				"merchant", extracted.Merchant,
				"error", err,
			)
			continue
		}
		transactions = append(transactions, *tx)
	}

	if len(transactions) > 0 {
		if err := s.txRepo.CreateBatch(transactions); err != nil {
			return nil, fmt.Errorf("persist synced transactions: %w", err)
		}
	}

	return &dto.SyncResponse{
		TotalEmails:         result.TotalEmails,
		TransactionalEmails: result.TransactionalEmails,
		TransactionsCreated: len(transactions),
		SyncedAt:            time.Now(),
	}, nil
}

// buildTransaction classifies one extracted transaction and shapes it into a
// persistable record. Classification failures degrade to the Other category
// rather than aborting the whole run.
func (s *EmailSyncService) buildTransaction(ctx context.Context, userID uuid.UUID, extracted ExtractedTransaction) (*models.Transaction, error) {
	if extracted.Merchant == "" {
		return nil, models.ErrMerchantRequired
	}
	if extracted.TransactionDate.IsZero() {
		return nil, models.ErrDateRequired
	}

	amount, err := decimal.NewFromString(extracted.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", extracted.Amount, err)
	}
	if amount.IsNegative() {
		return nil, models.ErrNegativeAmount
	}

	category, _, err := s.classifier.Classify(ctx, extracted.Merchant, amount, extracted.Description)
	if err != nil {
		// Degrade to pattern matching rather than dropping to Other outright
		category, _ = s.localClassifier.Classify(extracted.Merchant, extracted.Description)
		s.logger.Warn("remote classification failed, used local patterns",
			"merchant", extracted.Merchant,
			"category", category,
			"error", err,
		)
	}

	currency := extracted.Currency
	if currency == "" {
		currency = "INR"
	}

	return &models.Transaction{
		UserID:          userID,
		Merchant:        extracted.Merchant,
		Amount:          amount,
		Category:        category,
		Currency:        currency,
		TransactionDate: extracted.TransactionDate,
		Verified:        false,
	}, nil
}

// Status reports the user's sync counters and whether a run is in flight
func (s *EmailSyncService) Status(userID uuid.UUID) (*dto.SyncStatusResponse, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	return &dto.SyncStatusResponse{
		SyncInProgress:      user.SyncInProgress,
		TotalEmails:         user.TotalEmails,
		TransactionalEmails: user.TransactionalEmails,
		LastSyncDate:        user.LastSyncDate,
	}, nil
}

func (s *EmailSyncService) recordRun(status string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementCounter("sync.run", map[string]string{"status": status})
}

func (s *EmailSyncService) auditSync(userID uuid.UUID, action, ipAddress, userAgent string, metadata map[string]interface{}) {
	log := &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "sync",
		ResourceID: userID.String(),
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Metadata:   metadata,
	}

	if err := s.auditRepo.Create(log); err != nil {
		s.logger.Error("failed to create audit log",
			"error", err,
			"action", action,
		)
	}
}
