package models

import (
	"time"

	"github.com/google/uuid"
)

// Time range keys accepted by both the list endpoint and the guest-mode filter
// engine. Anything else is treated as TimeRangeAll.
const (
	TimeRangeAll     = "all"
	TimeRangeWeek    = "week"
	TimeRangeMonth   = "month"
	TimeRangeQuarter = "quarter"
)

// CategoryAll disables category filtering.
const CategoryAll = "all"

// IsValidTimeRange checks if a time range key is recognized
func IsValidTimeRange(timeRange string) bool {
	switch timeRange {
	case TimeRangeAll, TimeRangeWeek, TimeRangeMonth, TimeRangeQuarter:
		return true
	default:
		return false
	}
}

// FilterSpec is the client-facing filter: three independent, combinable
// criteria applied as an AND. The zero value matches everything.
type FilterSpec struct {
	TimeRange string
	Category  string
	Search    string
}

// IsIdentity reports whether the spec matches every transaction.
func (f FilterSpec) IsIdentity() bool {
	return (f.TimeRange == "" || f.TimeRange == TimeRangeAll) &&
		(f.Category == "" || f.Category == CategoryAll) &&
		f.Search == ""
}

// TransactionFilters contains the resolved filtering options for repository
// queries. Time-range keys are resolved to explicit StartDate/EndDate before
// reaching the repository so SQL and guest-mode filtering agree.
type TransactionFilters struct {
	UserID    uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
	Category  string
	Merchant  string
	Page      int
	Limit     int
}
