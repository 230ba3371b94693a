package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GuestIDPrefix marks transactions created locally in guest mode. Server-assigned
// ids are plain UUIDs, so the prefix keeps the two id spaces distinguishable.
const GuestIDPrefix = "guest-"

var (
	ErrInvalidCategory  = errors.New("invalid transaction category")
	ErrNegativeAmount   = errors.New("transaction amount must not be negative")
	ErrMerchantRequired = errors.New("merchant is required")
	ErrDateRequired     = errors.New("transaction date is required")
)

// Transaction is a single expense record. Time-of-day on TransactionDate is not
// semantically significant; all period bucketing happens at calendar-day
// granularity.
type Transaction struct {
	ID              string          `gorm:"type:varchar(64);primary_key" json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Merchant        string          `gorm:"type:varchar(255);not null" json:"merchant"`
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Category        string          `gorm:"type:varchar(50);not null;index" json:"category"`
	Currency        string          `gorm:"type:varchar(10);default:'INR'" json:"currency,omitempty"`
	TransactionDate time.Time       `gorm:"not null;index" json:"transactionDate"`
	Verified        bool            `gorm:"default:false" json:"verified,omitempty"`
	Tags            StringList      `gorm:"type:text" json:"tags,omitempty"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook for Transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}

	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	return t.Validate()
}

// BeforeUpdate hook for Transaction
func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	if tx != nil && tx.Statement != nil && tx.Statement.Dest != nil {
		// Map-based updates carry an empty model; skip struct validation.
		if _, ok := tx.Statement.Dest.(map[string]interface{}); ok {
			return nil
		}
	}
	t.UpdatedAt = time.Now()
	return t.Validate()
}

// Validate validates the transaction fields
func (t *Transaction) Validate() error {
	if t.Merchant == "" {
		return ErrMerchantRequired
	}

	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}

	if !IsValidCategory(t.Category) {
		return ErrInvalidCategory
	}

	if t.TransactionDate.IsZero() {
		return ErrDateRequired
	}

	return nil
}

// IsGuest reports whether the transaction was created locally in guest mode.
func (t *Transaction) IsGuest() bool {
	return IsGuestID(t.ID)
}

// NewGuestID generates a locally assigned transaction id. The timestamp keeps
// ids roughly ordered; the uuid suffix avoids collisions within one nanosecond.
func NewGuestID(now time.Time) string {
	return fmt.Sprintf("%s%d-%s", GuestIDPrefix, now.UnixNano(), uuid.New().String()[:8])
}

// IsGuestID reports whether an id was generated locally rather than assigned by
// the server.
func IsGuestID(id string) bool {
	return strings.HasPrefix(id, GuestIDPrefix)
}

func (t *Transaction) TableName() string {
	return "transactions"
}

// StringList stores a slice of strings as a JSON text column, which keeps the
// column portable between postgres and the sqlite guest store.
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	bytes, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}

	if len(bytes) == 0 {
		*l = nil
		return nil
	}

	return json.Unmarshal(bytes, l)
}
