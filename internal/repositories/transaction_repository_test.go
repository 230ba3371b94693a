package repositories

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/zeus-03/pennytrail/internal/database"
	"github.com/zeus-03/pennytrail/internal/models"
)

func TestTransactionRepository(t *testing.T) {
	suite.Run(t, new(TransactionRepositorySuite))
}

type TransactionRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo TransactionRepositoryInterface
	user *models.User
}

func (s *TransactionRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewTransactionRepository(s.db.DB)
	s.user = database.CreateTestUser(s.T(), s.db, "txn@example.com")
}

func (s *TransactionRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *TransactionRepositorySuite) seed(merchant, amount, category string, date time.Time) *models.Transaction {
	return database.CreateTestTransaction(s.T(), s.db, s.user, merchant, amount, category, date)
}

func (s *TransactionRepositorySuite) TestTransactionRepository_CreateAndGetByID() {
	created := s.seed("Amazon", "499.00", models.CategoryPurchase, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	s.NotEmpty(created.ID)

	found, err := s.repo.GetByID(s.user.ID, created.ID)
	s.NoError(err)
	s.Equal("Amazon", found.Merchant)
	s.True(found.Amount.Equal(decimal.RequireFromString("499.00")))

	_, err = s.repo.GetByID(s.user.ID, "missing-id")
	s.Equal(ErrTransactionNotFound, err)

	// Another user's transactions are invisible.
	_, err = s.repo.GetByID(uuid.New(), created.ID)
	s.Equal(ErrTransactionNotFound, err)
}

func (s *TransactionRepositorySuite) TestTransactionRepository_CreateBatch() {
	txns := []models.Transaction{
		{UserID: s.user.ID, Merchant: "Netflix", Amount: decimal.RequireFromString("649"), Category: models.CategorySubscription, TransactionDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{UserID: s.user.ID, Merchant: "Shell", Amount: decimal.RequireFromString("1800"), Category: models.CategoryFuel, TransactionDate: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
	}

	s.NoError(s.repo.CreateBatch(txns))
	s.NoError(s.repo.CreateBatch(nil))

	count, err := s.repo.CountByUserID(s.user.ID)
	s.NoError(err)
	s.Equal(int64(2), count)
}

func (s *TransactionRepositorySuite) TestTransactionRepository_GetWithFilters() {
	s.seed("Amazon", "499.00", models.CategoryPurchase, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	s.seed("Amazon Prime", "1499.00", models.CategorySubscription, time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC))
	s.seed("Shell", "2000.00", models.CategoryFuel, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC))

	// Merchant substring is case-insensitive.
	txns, total, err := s.repo.GetWithFilters(models.TransactionFilters{
		UserID:   s.user.ID,
		Merchant: "amazon",
	})
	s.NoError(err)
	s.Equal(int64(2), total)
	s.Len(txns, 2)

	// Category and date range combine as AND.
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)
	txns, total, err = s.repo.GetWithFilters(models.TransactionFilters{
		UserID:    s.user.ID,
		StartDate: &start,
		EndDate:   &end,
		Category:  models.CategorySubscription,
	})
	s.NoError(err)
	s.Equal(int64(1), total)
	s.Equal("Amazon Prime", txns[0].Merchant)

	// "all" category matches everything.
	_, total, err = s.repo.GetWithFilters(models.TransactionFilters{
		UserID:   s.user.ID,
		Category: models.CategoryAll,
	})
	s.NoError(err)
	s.Equal(int64(3), total)
}

func (s *TransactionRepositorySuite) TestTransactionRepository_GetWithFilters_Pagination() {
	for i := 0; i < 5; i++ {
		s.seed("Cafe", "120.00", models.CategoryOther, time.Date(2025, 6, 1+i, 0, 0, 0, 0, time.UTC))
	}

	txns, total, err := s.repo.GetWithFilters(models.TransactionFilters{
		UserID: s.user.ID,
		Page:   2,
		Limit:  2,
	})
	s.NoError(err)
	s.Equal(int64(5), total)
	s.Len(txns, 2)

	// Newest first.
	s.True(txns[0].TransactionDate.After(txns[1].TransactionDate))
}

func (s *TransactionRepositorySuite) TestTransactionRepository_Update() {
	created := s.seed("Zomato", "350.00", models.CategoryOther, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))

	created.Merchant = "Swiggy"
	created.Category = models.CategoryEntertainment
	created.Amount = decimal.RequireFromString("410.00")
	s.NoError(s.repo.Update(created))

	updated, err := s.repo.GetByID(s.user.ID, created.ID)
	s.NoError(err)
	s.Equal("Swiggy", updated.Merchant)
	s.Equal(models.CategoryEntertainment, updated.Category)
	s.True(updated.Amount.Equal(decimal.RequireFromString("410.00")))

	missing := *created
	missing.ID = "missing-id"
	s.Equal(ErrTransactionNotFound, s.repo.Update(&missing))
}

func (s *TransactionRepositorySuite) TestTransactionRepository_Delete() {
	created := s.seed("Amazon", "499.00", models.CategoryPurchase, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))

	s.NoError(s.repo.Delete(s.user.ID, created.ID))
	s.Equal(ErrTransactionNotFound, s.repo.Delete(s.user.ID, created.ID))
}

func (s *TransactionRepositorySuite) TestTransactionRepository_CountByUserID() {
	s.seed("A", "100.50", models.CategoryPurchase, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	s.seed("B", "200.25", models.CategoryFuel, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))

	count, err := s.repo.CountByUserID(s.user.ID)
	s.NoError(err)
	s.Equal(int64(2), count)

	// Empty user counts to zero, not an error.
	count, err = s.repo.CountByUserID(uuid.New())
	s.NoError(err)
	s.Equal(int64(0), count)
}
