package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zeus-03/pennytrail/internal/dto"
	"github.com/zeus-03/pennytrail/internal/models"
)

type AuthServiceInterface interface {
	Register(req *dto.RegisterRequest, ipAddress, userAgent string) (*models.User, error)
	Login(req *dto.LoginRequest, ipAddress, userAgent string) (*dto.TokenResponse, error)
	GuestSession(ipAddress, userAgent string) (*dto.GuestSessionResponse, error)
	RefreshTokens(refreshToken, ipAddress, userAgent string) (*dto.TokenResponse, error)
	Logout(accessToken, ipAddress, userAgent string) error
}

type TokenServiceInterface interface {
	GenerateAccessToken(user *models.User) (string, time.Time, error)
	GenerateGuestToken(sessionID uuid.UUID) (string, time.Time, error)
	GenerateRefreshToken(userID uuid.UUID) (string, time.Time, error)
	ValidateAccessToken(tokenString string) (*models.CustomClaims, error)
	ValidateRefreshToken(tokenString string) (*models.CustomClaims, error)
	ExtractTokenFromHeader(authHeader string) (string, error)
	GetJTI(tokenString string) (string, error)
	GetTokenExpiry(tokenString string) (time.Time, error)
}

type PasswordServiceInterface interface {
	ValidatePassword(password string) error
	HashPassword(password string) (string, error)
	ComparePassword(password, hash string) bool
	GenerateSecurePassword() (string, error)
	PasswordStrength(password string) int
}

// TransactionServiceInterface defines transaction operations for connected
// accounts. Time-range keys resolve against the supplied reference time so
// the same request is reproducible in tests.
type TransactionServiceInterface interface {
	List(userID uuid.UUID, filters dto.TransactionFilters, page dto.PaginationParams, now time.Time) (*dto.ListTransactionsResponse, error)
	Create(userID uuid.UUID, req *dto.TransactionRequest, ipAddress, userAgent string) (*models.Transaction, error)
	Get(userID uuid.UUID, id string) (*models.Transaction, error)
	Update(userID uuid.UUID, id string, req *dto.TransactionRequest, ipAddress, userAgent string) (*models.Transaction, error)
	Delete(userID uuid.UUID, id string, ipAddress, userAgent string) error
	Summary(userID uuid.UUID, now time.Time) (*models.Summary, error)
}

// GuestServiceInterface mirrors the transaction operations on the local guest
// store. Edits and deletes of unknown ids are silent no-ops.
type GuestServiceInterface interface {
	List(spec models.FilterSpec, now time.Time) []models.Transaction
	Create(req *dto.TransactionRequest) (*models.Transaction, error)
	Update(id string, req *dto.TransactionRequest) (*models.Transaction, bool, error)
	Delete(id string) (bool, error)
	Summary(now time.Time) *models.Summary
}

type EmailSyncServiceInterface interface {
	Sync(ctx context.Context, userID uuid.UUID, req *dto.SyncRequest, ipAddress, userAgent string) (*dto.SyncResponse, error)
	Status(userID uuid.UUID) (*dto.SyncStatusResponse, error)
}

// ClassifierClientInterface talks to the transaction classification service
type ClassifierClientInterface interface {
	Classify(ctx context.Context, merchant string, amount decimal.Decimal, description string) (category string, confidence float64, err error)
	Health(ctx context.Context) error
}

// ExtractorClientInterface talks to the email extraction service
type ExtractorClientInterface interface {
	Extract(ctx context.Context, maxResults int, syncAll bool, since *time.Time) (*ExtractionResult, error)
	Health(ctx context.Context) error
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

type CircuitBreakerInterface interface {
	IsOpen() bool
	RecordSuccess()
	RecordFailure()
	GetState() CircuitBreakerState
	Reset()
	GetFailureCount() int
}

// TransactionGeneratorInterface generates realistic expense data for dev seeding
type TransactionGeneratorInterface interface {
	GenerateHistoricalTransactions(userID uuid.UUID, startDate, endDate time.Time, count int) []*models.Transaction
	SelectRandomMerchant() MerchantInfo
	GenerateAmount(category string) decimal.Decimal
	GenerateTimestamp(startDate, endDate time.Time) time.Time
}
