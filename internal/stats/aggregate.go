// Package stats computes dashboard summaries and applies client-side filters
// over in-memory transaction lists. It backs guest mode, where the full list
// lives in the local store, and mirrors the semantics of the SQL-side
// aggregation so both modes present the same numbers.
//
// Everything here is a pure projection: input slices are never mutated and
// every call returns a freshly built result.
package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zeus-03/pennytrail/internal/dates"
	"github.com/zeus-03/pennytrail/internal/models"
)

// Aggregate computes the dashboard summary for a transaction list in a single
// linear pass. The reference time decides what "current month" and "current
// week" mean.
//
// The monthly series is keyed by calendar month number alone, so the same
// month across different years shares a bucket. That conflation is inherited
// from the server aggregation pipeline and preserved for parity; the Year
// field on the result tells the caller which year the current-month figures
// describe.
func Aggregate(txns []models.Transaction, now time.Time) models.Summary {
	summary := models.Summary{
		CategoryBreakdown: []models.CategoryStat{},
		MonthlySeries:     []models.MonthlyStat{},
		WeekBreakdown:     []models.DayStat{},
		Year:              now.Year(),
	}

	byCategory := make(map[string]*models.CategoryStat)
	byMonth := make(map[int]*models.MonthlyStat)
	byDay := make(map[string]*models.DayStat)

	for i := range txns {
		t := &txns[i]

		summary.TotalToDate.TotalAmount = summary.TotalToDate.TotalAmount.Add(t.Amount)
		summary.TotalToDate.Count++

		month := int(t.TransactionDate.Month())
		if stat, ok := byMonth[month]; ok {
			stat.TotalAmount = stat.TotalAmount.Add(t.Amount)
			stat.Count++
		} else {
			byMonth[month] = &models.MonthlyStat{
				Month:       month,
				TotalAmount: t.Amount,
				Count:       1,
			}
		}

		if !dates.InCurrentMonth(t.TransactionDate, now) {
			continue
		}

		summary.CurrentMonth.TotalAmount = summary.CurrentMonth.TotalAmount.Add(t.Amount)
		summary.CurrentMonth.Count++

		if stat, ok := byCategory[t.Category]; ok {
			stat.TotalAmount = stat.TotalAmount.Add(t.Amount)
			stat.Count++
		} else {
			byCategory[t.Category] = &models.CategoryStat{
				Category:    t.Category,
				Label:       models.CategoryLabel(t.Category),
				Color:       models.CategoryColor(t.Category),
				TotalAmount: t.Amount,
				Count:       1,
			}
		}

		// The weekly breakdown covers the current-month portion of the week
		// only: a week straddling a month boundary contributes just the days
		// that belong to the current month.
		if dates.InCurrentWeek(t.TransactionDate, now) {
			key := dates.DayKey(t.TransactionDate)
			if stat, ok := byDay[key]; ok {
				stat.TotalAmount = stat.TotalAmount.Add(t.Amount)
			} else {
				byDay[key] = &models.DayStat{Date: key, TotalAmount: t.Amount}
			}
		}
	}

	summary.CategoryBreakdown = sortedCategoryStats(byCategory)
	summary.MonthlySeries = sortedMonthlyStats(byMonth)
	summary.WeekBreakdown = sortedDayStats(byDay)

	return summary
}

// sortedCategoryStats flattens the accumulator into canonical category order.
// Unknown categories present in the data sort after the known set,
// alphabetically, so serialization stays deterministic.
func sortedCategoryStats(byCategory map[string]*models.CategoryStat) []models.CategoryStat {
	order := make(map[string]int, 8)
	for i, key := range models.AllCategories() {
		order[key] = i
	}

	stats := make([]models.CategoryStat, 0, len(byCategory))
	for _, stat := range byCategory {
		if stat.Count > 0 {
			stat.AverageAmount = stat.TotalAmount.Div(decimal.NewFromInt(int64(stat.Count))).Round(2)
		}
		stats = append(stats, *stat)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		oi, knownI := order[stats[i].Category]
		oj, knownJ := order[stats[j].Category]
		switch {
		case knownI && knownJ:
			return oi < oj
		case knownI:
			return true
		case knownJ:
			return false
		default:
			return stats[i].Category < stats[j].Category
		}
	})

	return stats
}

func sortedMonthlyStats(byMonth map[int]*models.MonthlyStat) []models.MonthlyStat {
	stats := make([]models.MonthlyStat, 0, len(byMonth))
	for _, stat := range byMonth {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Month < stats[j].Month })
	return stats
}

func sortedDayStats(byDay map[string]*models.DayStat) []models.DayStat {
	stats := make([]models.DayStat, 0, len(byDay))
	for _, stat := range byDay {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Date < stats[j].Date })
	return stats
}
