package services

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/zeus-03/pennytrail/internal/database"
	"github.com/zeus-03/pennytrail/internal/dto"
	"github.com/zeus-03/pennytrail/internal/models"
	"github.com/zeus-03/pennytrail/internal/repositories"
)

func TestTransactionServiceSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

type TransactionServiceTestSuite struct {
	suite.Suite
	db        *database.DB
	service   TransactionServiceInterface
	auditRepo repositories.AuditLogRepositoryInterface
	user      *models.User
	now       time.Time
}

func (s *TransactionServiceTestSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.auditRepo = repositories.NewAuditLogRepository(s.db.DB)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.service = NewTransactionService(
		repositories.NewTransactionRepository(s.db.DB),
		s.auditRepo,
		nil,
		logger,
	)

	s.user = database.CreateTestUser(s.T(), s.db, "txservice@example.com")
	// Wednesday 2025-06-18
	s.now = time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)
}

func (s *TransactionServiceTestSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *TransactionServiceTestSuite) create(merchant, amount, category string, date time.Time) *models.Transaction {
	tx, err := s.service.Create(s.user.ID, &dto.TransactionRequest{
		Merchant:        merchant,
		Amount:          amount,
		Category:        category,
		TransactionDate: date,
	}, "127.0.0.1", "test-agent")
	s.Require().NoError(err)
	return tx
}

func (s *TransactionServiceTestSuite) TestCreate() {
	tx := s.create("Amazon", "499.00", models.CategoryPurchase, s.now)

	s.NotEmpty(tx.ID)
	s.Equal(s.user.ID, tx.UserID)
	s.Equal("499", tx.Amount.String())
	s.Equal("INR", tx.Currency)

	logs, total, err := s.auditRepo.GetByAction(models.AuditActionTransactionCreated, 0, 10)
	s.NoError(err)
	s.Equal(int64(1), total)
	s.Equal(tx.ID, logs[0].ResourceID)
}

func (s *TransactionServiceTestSuite) TestCreate_InvalidAmount() {
	_, err := s.service.Create(s.user.ID, &dto.TransactionRequest{
		Merchant:        "Amazon",
		Amount:          "not-a-number",
		Category:        models.CategoryPurchase,
		TransactionDate: s.now,
	}, "127.0.0.1", "test-agent")
	s.Error(err)
}

func (s *TransactionServiceTestSuite) TestGet() {
	created := s.create("Swiggy", "350.00", models.CategoryPurchase, s.now)

	got, err := s.service.Get(s.user.ID, created.ID)
	s.NoError(err)
	s.Equal(created.ID, got.ID)
	s.Equal("Swiggy", got.Merchant)
}

func (s *TransactionServiceTestSuite) TestGet_NotFound() {
	_, err := s.service.Get(s.user.ID, "missing-id")
	s.ErrorIs(err, repositories.ErrTransactionNotFound)
}

func (s *TransactionServiceTestSuite) TestUpdate() {
	created := s.create("Netflix", "649.00", models.CategorySubscription, s.now)

	updated, err := s.service.Update(s.user.ID, created.ID, &dto.TransactionRequest{
		Merchant:        "Netflix Premium",
		Amount:          "799.00",
		Category:        models.CategorySubscription,
		TransactionDate: s.now,
		Verified:        true,
	}, "127.0.0.1", "test-agent")
	s.NoError(err)
	s.Equal("Netflix Premium", updated.Merchant)
	s.Equal("799", updated.Amount.String())
	s.True(updated.Verified)

	got, err := s.service.Get(s.user.ID, created.ID)
	s.NoError(err)
	s.Equal("Netflix Premium", got.Merchant)
}

func (s *TransactionServiceTestSuite) TestDelete() {
	created := s.create("Uber", "250.00", models.CategoryOther, s.now)

	err := s.service.Delete(s.user.ID, created.ID, "127.0.0.1", "test-agent")
	s.NoError(err)

	_, err = s.service.Get(s.user.ID, created.ID)
	s.ErrorIs(err, repositories.ErrTransactionNotFound)

	logs, total, err := s.auditRepo.GetByAction(models.AuditActionTransactionDeleted, 0, 10)
	s.NoError(err)
	s.Equal(int64(1), total)
	s.Equal(created.ID, logs[0].ResourceID)
}

func (s *TransactionServiceTestSuite) TestList_PaginationEnvelope() {
	for i := 0; i < 5; i++ {
		s.create("Amazon", "100.00", models.CategoryPurchase, s.now.AddDate(0, 0, -i))
	}

	resp, err := s.service.List(s.user.ID, dto.TransactionFilters{}, dto.PaginationParams{Page: 2, Limit: 2}, s.now)
	s.NoError(err)
	s.Len(resp.Transactions, 2)
	s.Equal(2, resp.Pagination.CurrentPage)
	s.Equal(3, resp.Pagination.TotalPages)
	s.Equal(int64(5), resp.Pagination.TotalTransactions)
	s.True(resp.Pagination.HasNextPage)
	s.True(resp.Pagination.HasPrevPage)
}

func (s *TransactionServiceTestSuite) TestList_TimeRangeWeek() {
	s.create("This Week", "100.00", models.CategoryPurchase, s.now)
	s.create("Last Month", "100.00", models.CategoryPurchase, s.now.AddDate(0, -1, 0))

	resp, err := s.service.List(s.user.ID, dto.TransactionFilters{TimeRange: models.TimeRangeWeek}, dto.PaginationParams{}, s.now)
	s.NoError(err)
	s.Len(resp.Transactions, 1)
	s.Equal("This Week", resp.Transactions[0].Merchant)
}

func (s *TransactionServiceTestSuite) TestList_CombinedFilters() {
	s.create("Amazon", "100.00", models.CategoryPurchase, s.now)
	s.create("Amazon Prime", "1499.00", models.CategorySubscription, s.now)
	s.create("Flipkart", "500.00", models.CategoryPurchase, s.now)

	resp, err := s.service.List(s.user.ID, dto.TransactionFilters{
		Category: models.CategoryPurchase,
		Search:   "amazon",
	}, dto.PaginationParams{}, s.now)
	s.NoError(err)
	s.Len(resp.Transactions, 1)
	s.Equal("Amazon", resp.Transactions[0].Merchant)
}

func (s *TransactionServiceTestSuite) TestList_AmountSerializedWithTwoDecimals() {
	s.create("Amazon", "499.9", models.CategoryPurchase, s.now)

	resp, err := s.service.List(s.user.ID, dto.TransactionFilters{}, dto.PaginationParams{}, s.now)
	s.NoError(err)
	s.Equal("499.90", resp.Transactions[0].Amount)
}

func (s *TransactionServiceTestSuite) TestSummary() {
	s.create("Amazon", "300.00", models.CategoryPurchase, s.now)
	s.create("Netflix", "649.00", models.CategorySubscription, s.now.AddDate(0, 0, -1))
	s.create("Old Purchase", "51.00", models.CategoryPurchase, s.now.AddDate(0, -4, 0))

	summary, err := s.service.Summary(s.user.ID, s.now)
	s.NoError(err)
	s.Equal(3, summary.TotalToDate.Count)
	s.True(summary.TotalToDate.TotalAmount.Equal(decimal.NewFromInt(1000)))

	// Current month excludes the four-month-old purchase
	s.Equal(2, summary.CurrentMonth.Count)
	s.True(summary.CurrentMonth.TotalAmount.Equal(decimal.NewFromInt(949)))

	var purchase *models.CategoryStat
	for i := range summary.CategoryBreakdown {
		if summary.CategoryBreakdown[i].Category == models.CategoryPurchase {
			purchase = &summary.CategoryBreakdown[i]
		}
	}
	s.Require().NotNil(purchase)
	s.Equal(1, purchase.Count)
	s.Equal(2025, summary.Year)
}
