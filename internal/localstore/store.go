// Package localstore is the guest-mode persistence layer: one named collection
// holding the full transaction list as a serialized JSON array, read wholesale
// on every query and rewritten wholesale on every mutation. A sqlite file
// plays the role the browser's local storage played in the original client.
package localstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zeus-03/pennytrail/internal/models"
)

// DefaultCollection is the store key the original client used.
const DefaultCollection = "transactions"

// Collection is a single named key-value row. The guest store uses exactly one.
type Collection struct {
	Name      string    `gorm:"type:varchar(100);primary_key"`
	Data      []byte    `gorm:"type:blob"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Collection) TableName() string {
	return "collections"
}

// Store provides guest-mode transaction persistence. The mutex serializes
// read-modify-write cycles within this process; concurrent processes sharing
// the same file are out of scope, matching the single-tab assumption of the
// original client.
type Store struct {
	mu         sync.Mutex
	db         *gorm.DB
	collection string
	now        func() time.Time
}

// Open opens (creating if needed) a guest store at the given sqlite path.
// Use ":memory:" for an ephemeral store.
func Open(path, collection string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open guest store: %w", err)
	}

	if err := db.AutoMigrate(&Collection{}); err != nil {
		return nil, fmt.Errorf("failed to migrate guest store: %w", err)
	}

	if collection == "" {
		collection = DefaultCollection
	}

	return &Store{
		db:         db,
		collection: collection,
		now:        time.Now,
	}, nil
}

// WithNow overrides the store's clock; used by tests and by callers that
// inject a reference time.
func (s *Store) WithNow(now func() time.Time) *Store {
	s.now = now
	return s
}

// List returns every stored transaction in insertion order. A missing or
// malformed payload yields an empty list, never an error: the store must
// tolerate absent or corrupted local data on first run.
func (s *Store) List() []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// ReplaceAll rewrites the whole collection.
func (s *Store) ReplaceAll(txns []models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(txns)
}

// Add appends a transaction, assigning a guest id when none is set, and
// returns the stored record.
func (s *Store) Add(t models.Transaction) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if t.ID == "" {
		t.ID = models.NewGuestID(now)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	txns := append(s.load(), t)
	if err := s.save(txns); err != nil {
		return models.Transaction{}, err
	}
	return t, nil
}

// Update replaces the stored record with the given id in place. Returns false
// without error when the id is absent.
func (s *Store) Update(id string, t models.Transaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txns := s.load()
	for i := range txns {
		if txns[i].ID != id {
			continue
		}
		t.ID = id
		t.CreatedAt = txns[i].CreatedAt
		t.UpdatedAt = s.now()
		txns[i] = t
		return true, s.save(txns)
	}
	return false, nil
}

// Delete removes the record with the given id. Returns false without error
// when the id is absent.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txns := s.load()
	for i := range txns {
		if txns[i].ID != id {
			continue
		}
		txns = append(txns[:i], txns[i+1:]...)
		return true, s.save(txns)
	}
	return false, nil
}

// Close releases the underlying sqlite handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) load() []models.Transaction {
	var row Collection
	err := s.db.First(&row, "name = ?", s.collection).Error
	if err != nil {
		if !isNotFound(err) {
			slog.Warn("guest store read failed, treating as empty",
				"collection", s.collection,
				"error", err)
		}
		return []models.Transaction{}
	}

	return decodeTransactions(row.Data, s.collection)
}

func (s *Store) save(txns []models.Transaction) error {
	data, err := json.Marshal(txns)
	if err != nil {
		return fmt.Errorf("failed to serialize guest transactions: %w", err)
	}

	row := Collection{Name: s.collection, Data: data, UpdatedAt: s.now()}
	if err := s.db.Save(&row).Error; err != nil {
		return fmt.Errorf("failed to write guest store: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	return err == gorm.ErrRecordNotFound
}

// rawTransaction shadows models.Transaction with lax field types so a single
// bad record cannot poison the whole collection.
type rawTransaction struct {
	ID              string            `json:"id"`
	Merchant        string            `json:"merchant"`
	Amount          json.RawMessage   `json:"amount"`
	Category        string            `json:"category"`
	Currency        string            `json:"currency"`
	TransactionDate string            `json:"transactionDate"`
	Verified        bool              `json:"verified"`
	Tags            models.StringList `json:"tags"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// decodeTransactions decodes a stored JSON array leniently:
//   - a payload that is not a JSON array decodes to an empty list;
//   - a record whose amount is missing or unparsable keeps amount zero but is
//     retained, so counts are not corrupted;
//   - a record whose date cannot be parsed is dropped, since undated records
//     cannot participate in any period bucketing.
func decodeTransactions(data []byte, collection string) []models.Transaction {
	if len(data) == 0 {
		return []models.Transaction{}
	}

	var raws []rawTransaction
	if err := json.Unmarshal(data, &raws); err != nil {
		slog.Warn("guest store payload malformed, treating as empty",
			"collection", collection,
			"error", err)
		return []models.Transaction{}
	}

	txns := make([]models.Transaction, 0, len(raws))
	for _, raw := range raws {
		date, ok := parseDate(raw.TransactionDate)
		if !ok {
			slog.Warn("dropping guest transaction with unparsable date",
				"id", raw.ID,
				"date", raw.TransactionDate)
			continue
		}

		txns = append(txns, models.Transaction{
			ID:              raw.ID,
			Merchant:        raw.Merchant,
			Amount:          parseAmount(raw.Amount),
			Category:        raw.Category,
			Currency:        raw.Currency,
			TransactionDate: date,
			Verified:        raw.Verified,
			Tags:            raw.Tags,
			CreatedAt:       raw.CreatedAt,
			UpdatedAt:       raw.UpdatedAt,
		})
	}
	return txns
}

// parseAmount reads a JSON number or numeric string; anything else counts as
// zero.
func parseAmount(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 {
		return decimal.Zero
	}

	text := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if text == "" || text == "null" {
		return decimal.Zero
	}

	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
