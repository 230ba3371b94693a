package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"github.com/zeus-03/pennytrail/internal/database"
	"github.com/zeus-03/pennytrail/internal/dto"
	"github.com/zeus-03/pennytrail/internal/localstore"
	"github.com/zeus-03/pennytrail/internal/models"
	"github.com/zeus-03/pennytrail/internal/repositories"
	"github.com/zeus-03/pennytrail/internal/services"
)

func TestTransactionHandlerSuite(t *testing.T) {
	suite.Run(t, new(TransactionHandlerTestSuite))
}

type TransactionHandlerTestSuite struct {
	suite.Suite
	db      *database.DB
	user    *models.User
	handler *TransactionHandler
	e       *echo.Echo
}

func (s *TransactionHandlerTestSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.user = database.CreateTestUser(s.T(), s.db, "txapi@example.com")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	txService := services.NewTransactionService(
		repositories.NewTransactionRepository(s.db.DB),
		repositories.NewAuditLogRepository(s.db.DB),
		nil,
		logger,
	)

	store, err := localstore.Open(filepath.Join(s.T().TempDir(), "guest.db"), "transactions")
	s.Require().NoError(err)
	guestService := services.NewGuestService(store, nil, logger)

	s.handler = NewTransactionHandler(txService, guestService)
	s.e = echo.New()
	s.e.Validator = NewValidator()
}

func (s *TransactionHandlerTestSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

// newContext builds an authenticated request context. Query is an encoded
// query string, body an optional JSON payload.
func (s *TransactionHandlerTestSuite) newContext(method, path, query, body string, guest bool) (echo.Context, *httptest.ResponseRecorder) {
	target := path
	if query != "" {
		target = path + "?" + query
	}

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)

	if guest {
		c.Set("user_id", uuid.New())
		c.Set("user_role", models.RoleGuest)
	} else {
		c.Set("user_id", s.user.ID)
		c.Set("user_role", models.RoleUser)
	}

	return c, rec
}

func (s *TransactionHandlerTestSuite) createTransaction(merchant, amount, category string, date time.Time, guest bool) dto.TransactionResponse {
	body, _ := json.Marshal(dto.TransactionRequest{
		Merchant:        merchant,
		Amount:          amount,
		Category:        category,
		TransactionDate: date,
	})

	c, rec := s.newContext(http.MethodPost, "/transactions", "", string(body), guest)
	s.Require().NoError(s.handler.CreateTransaction(c))
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var created dto.TransactionResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))
	return created
}

func (s *TransactionHandlerTestSuite) TestCreateTransaction_User() {
	created := s.createTransaction("Amazon", "499.90", models.CategoryPurchase, time.Now(), false)

	s.NotEmpty(created.ID)
	s.Equal("Amazon", created.Merchant)
	s.Equal("499.90", created.Amount)
	s.Equal("INR", created.Currency)
}

func (s *TransactionHandlerTestSuite) TestCreateTransaction_GuestGetsGuestID() {
	created := s.createTransaction("Swiggy", "250.00", models.CategoryPurchase, time.Now(), true)

	s.True(strings.HasPrefix(created.ID, "guest-"), "guest ids carry the guest- prefix, got %s", created.ID)
}

func (s *TransactionHandlerTestSuite) TestCreateTransaction_NegativeAmount() {
	body, _ := json.Marshal(dto.TransactionRequest{
		Merchant:        "Amazon",
		Amount:          "-10.00",
		Category:        models.CategoryPurchase,
		TransactionDate: time.Now(),
	})

	c, _ := s.newContext(http.MethodPost, "/transactions", "", string(body), false)

	// nonneg_amount rule rejects at binding validation
	err := s.handler.CreateTransaction(c)
	s.Error(err)
}

func (s *TransactionHandlerTestSuite) TestCreateTransaction_UnknownCategory() {
	body, _ := json.Marshal(dto.TransactionRequest{
		Merchant:        "Amazon",
		Amount:          "10.00",
		Category:        "gambling",
		TransactionDate: time.Now(),
	})

	c, _ := s.newContext(http.MethodPost, "/transactions", "", string(body), false)

	err := s.handler.CreateTransaction(c)
	s.Error(err)
}

func (s *TransactionHandlerTestSuite) TestListTransactions_PaginationEnvelope() {
	for i := 0; i < 5; i++ {
		s.createTransaction(fmt.Sprintf("Shop %d", i), "100.00", models.CategoryPurchase, time.Now().Add(-time.Duration(i)*time.Hour), false)
	}

	c, rec := s.newContext(http.MethodGet, "/transactions", "page=2&limit=2", "", false)
	s.NoError(s.handler.ListTransactions(c))
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.ListTransactionsResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Len(resp.Transactions, 2)
	s.Equal(2, resp.Pagination.CurrentPage)
	s.Equal(3, resp.Pagination.TotalPages)
	s.Equal(int64(5), resp.Pagination.TotalTransactions)
	s.True(resp.Pagination.HasNextPage)
	s.True(resp.Pagination.HasPrevPage)
}

func (s *TransactionHandlerTestSuite) TestListTransactions_CombinedFilters() {
	now := time.Now()
	s.createTransaction("Amazon Fresh", "300.00", models.CategoryPurchase, now, false)
	s.createTransaction("Amazon Prime", "1499.00", models.CategorySubscription, now, false)
	s.createTransaction("Flipkart", "900.00", models.CategoryPurchase, now, false)

	query := url.Values{}
	query.Set("category", models.CategoryPurchase)
	query.Set("search", "amazon")

	c, rec := s.newContext(http.MethodGet, "/transactions", query.Encode(), "", false)
	s.NoError(s.handler.ListTransactions(c))
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.ListTransactionsResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Len(resp.Transactions, 1)
	s.Equal("Amazon Fresh", resp.Transactions[0].Merchant)
}

func (s *TransactionHandlerTestSuite) TestListTransactions_UnknownTimeRange() {
	c, rec := s.newContext(http.MethodGet, "/transactions", "timeRange=fortnight", "", false)
	s.NoError(s.handler.ListTransactions(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "TRANSACTION_005")
}

func (s *TransactionHandlerTestSuite) TestListTransactions_UnknownCategory() {
	c, rec := s.newContext(http.MethodGet, "/transactions", "category=lottery", "", false)
	s.NoError(s.handler.ListTransactions(c))
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Contains(rec.Body.String(), "TRANSACTION_003")
}

func (s *TransactionHandlerTestSuite) TestListTransactions_GuestUsesLocalStore() {
	s.createTransaction("Zomato", "350.00", models.CategoryPurchase, time.Now(), true)
	s.createTransaction("Netflix", "649.00", models.CategorySubscription, time.Now(), true)

	// Guest records never reach the database
	c, rec := s.newContext(http.MethodGet, "/transactions", "", "", false)
	s.NoError(s.handler.ListTransactions(c))
	var userResp dto.ListTransactionsResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &userResp))
	s.Empty(userResp.Transactions)

	c, rec = s.newContext(http.MethodGet, "/transactions", "category="+models.CategorySubscription, "", true)
	s.NoError(s.handler.ListTransactions(c))
	s.Equal(http.StatusOK, rec.Code)

	var guestResp dto.ListTransactionsResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &guestResp))
	s.Len(guestResp.Transactions, 1)
	s.Equal("Netflix", guestResp.Transactions[0].Merchant)
	s.Equal(int64(1), guestResp.Pagination.TotalTransactions)
}

func (s *TransactionHandlerTestSuite) TestGetTransaction() {
	created := s.createTransaction("DMart", "820.50", models.CategoryPurchase, time.Now(), false)

	c, rec := s.newContext(http.MethodGet, "/transactions/"+created.ID, "", "", false)
	c.SetParamNames("id")
	c.SetParamValues(created.ID)

	s.NoError(s.handler.GetTransaction(c))
	s.Equal(http.StatusOK, rec.Code)

	var got dto.TransactionResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Equal(created.ID, got.ID)
	s.Equal("820.50", got.Amount)
}

func (s *TransactionHandlerTestSuite) TestGetTransaction_NotFound() {
	c, rec := s.newContext(http.MethodGet, "/transactions/missing", "", "", false)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	s.NoError(s.handler.GetTransaction(c))
	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), "TRANSACTION_001")
}

func (s *TransactionHandlerTestSuite) TestUpdateTransaction() {
	created := s.createTransaction("PVR", "400.00", models.CategoryEntertainment, time.Now(), false)

	body, _ := json.Marshal(dto.TransactionRequest{
		Merchant:        "PVR Cinemas",
		Amount:          "450.00",
		Category:        models.CategoryEntertainment,
		TransactionDate: time.Now(),
		Verified:        true,
	})

	c, rec := s.newContext(http.MethodPut, "/transactions/"+created.ID, "", string(body), false)
	c.SetParamNames("id")
	c.SetParamValues(created.ID)

	s.NoError(s.handler.UpdateTransaction(c))
	s.Equal(http.StatusOK, rec.Code)

	var updated dto.TransactionResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &updated))
	s.Equal("PVR Cinemas", updated.Merchant)
	s.Equal("450.00", updated.Amount)
	s.True(updated.Verified)
}

func (s *TransactionHandlerTestSuite) TestUpdateTransaction_GuestNotFound() {
	body, _ := json.Marshal(dto.TransactionRequest{
		Merchant:        "Swiggy",
		Amount:          "100.00",
		Category:        models.CategoryPurchase,
		TransactionDate: time.Now(),
	})

	c, rec := s.newContext(http.MethodPut, "/transactions/guest-unknown", "", string(body), true)
	c.SetParamNames("id")
	c.SetParamValues("guest-unknown")

	s.NoError(s.handler.UpdateTransaction(c))
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *TransactionHandlerTestSuite) TestDeleteTransaction() {
	created := s.createTransaction("Shell", "2000.00", models.CategoryFuel, time.Now(), false)

	c, rec := s.newContext(http.MethodDelete, "/transactions/"+created.ID, "", "", false)
	c.SetParamNames("id")
	c.SetParamValues(created.ID)

	s.NoError(s.handler.DeleteTransaction(c))
	s.Equal(http.StatusOK, rec.Code)

	c, rec = s.newContext(http.MethodGet, "/transactions/"+created.ID, "", "", false)
	c.SetParamNames("id")
	c.SetParamValues(created.ID)
	s.NoError(s.handler.GetTransaction(c))
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *TransactionHandlerTestSuite) TestDeleteTransaction_Guest() {
	created := s.createTransaction("Blinkit", "180.00", models.CategoryPurchase, time.Now(), true)

	c, rec := s.newContext(http.MethodDelete, "/transactions/"+created.ID, "", "", true)
	c.SetParamNames("id")
	c.SetParamValues(created.ID)

	s.NoError(s.handler.DeleteTransaction(c))
	s.Equal(http.StatusOK, rec.Code)

	c, rec = s.newContext(http.MethodGet, "/transactions", "", "", true)
	s.NoError(s.handler.ListTransactions(c))
	var resp dto.ListTransactionsResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Empty(resp.Transactions)
}

func (s *TransactionHandlerTestSuite) TestGetSummary_User() {
	now := time.Now()
	s.createTransaction("Amazon", "1000.00", models.CategoryPurchase, now, false)
	s.createTransaction("Netflix", "649.00", models.CategorySubscription, now, false)

	c, rec := s.newContext(http.MethodGet, "/transactions/summary", "", "", false)
	s.NoError(s.handler.GetSummary(c))
	s.Equal(http.StatusOK, rec.Code)

	var summary models.Summary
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &summary))
	s.Equal(2, summary.TotalToDate.Count)
	s.Equal(now.Year(), summary.Year)
}

func (s *TransactionHandlerTestSuite) TestGetSummary_Guest() {
	s.createTransaction("Zomato", "350.00", models.CategoryPurchase, time.Now(), true)

	c, rec := s.newContext(http.MethodGet, "/transactions/summary", "", "", true)
	s.NoError(s.handler.GetSummary(c))
	s.Equal(http.StatusOK, rec.Code)

	var summary models.Summary
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &summary))
	s.Equal(1, summary.TotalToDate.Count)
}

func (s *TransactionHandlerTestSuite) TestGetCategories() {
	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)

	s.NoError(s.handler.GetCategories(c))
	s.Equal(http.StatusOK, rec.Code)

	var resp struct {
		Data []models.CategoryInfo `json:"data"`
	}
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Len(resp.Data, 8)
	s.Equal(models.CategoryBillPayment, resp.Data[0].Key)
	s.NotEmpty(resp.Data[0].Label)
	s.NotEmpty(resp.Data[0].Color)
}
