package models

import "github.com/shopspring/decimal"

// TotalStat is the running total over an entire transaction list.
type TotalStat struct {
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Count       int             `json:"count"`
}

// CategoryStat is one current-month group in the category breakdown.
// AverageAmount is zero when Count is zero (guarded, never NaN/Inf).
type CategoryStat struct {
	Category      string          `json:"category"`
	Label         string          `json:"label"`
	Color         string          `json:"color"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Count         int             `json:"count"`
	AverageAmount decimal.Decimal `json:"averageAmount"`
}

// MonthlyStat is one bucket of the month-by-month series. Month is the
// calendar month number (1-12); buckets do not carry a year, so the same month
// in different years collapses into one bucket. Kept deliberately for parity
// with the server aggregation pipeline.
type MonthlyStat struct {
	Month       int             `json:"month"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Count       int             `json:"count"`
}

// DayStat is one calendar date's total within the current week.
type DayStat struct {
	Date        string          `json:"date"` // YYYY-MM-DD
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// Summary is the dashboard aggregation result: one structured value with the
// four projections the dashboard renders. All slices are sorted
// deterministically (categories in canonical order, months ascending, week
// dates ascending) and empty rather than nil-checked error states.
type Summary struct {
	TotalToDate       TotalStat      `json:"totalToDate"`
	CurrentMonth      TotalStat      `json:"currentMonth"`
	CategoryBreakdown []CategoryStat `json:"categoryBreakdown"`
	MonthlySeries     []MonthlyStat  `json:"monthlySeries"`
	WeekBreakdown     []DayStat      `json:"weekBreakdown"`
	Year              int            `json:"year"`
}
