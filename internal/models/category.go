package models

// Transaction categories form a closed enumeration. Records carrying anything
// outside this set are tolerated by aggregation (bucketed as-is, never a crash)
// but fail validation on create/update.
const (
	CategoryBillPayment   = "bill_payment"
	CategoryEntertainment = "entertainment"
	CategoryFuel          = "fuel"
	CategoryTransfer      = "transfer"
	CategoryPurchase      = "purchase"
	CategoryOther         = "other"
	CategorySubscription  = "subscription"
	CategoryRefund        = "refund"
)

// CategoryInfo carries the presentation metadata the dashboard consumes.
type CategoryInfo struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Color string `json:"color"`
}

var categoryLabels = map[string]string{
	CategoryBillPayment:   "Bill Payment",
	CategoryEntertainment: "Entertainment",
	CategoryFuel:          "Fuel",
	CategoryTransfer:      "Transfer",
	CategoryPurchase:      "Purchase",
	CategoryOther:         "Other",
	CategorySubscription:  "Subscription",
	CategoryRefund:        "Refund",
}

var categoryColors = map[string]string{
	CategoryBillPayment:   "#dc2626",
	CategoryEntertainment: "#facc15",
	CategoryFuel:          "#f97316",
	CategoryTransfer:      "#3b82f6",
	CategoryPurchase:      "#8b5cf6",
	CategoryOther:         "#6b7280",
	CategorySubscription:  "#10b981",
	CategoryRefund:        "#14b8a6",
}

// AllCategories returns the closed category set in canonical order. The order
// is also the deterministic serialization order for grouped summaries.
func AllCategories() []string {
	return []string{
		CategoryBillPayment,
		CategoryEntertainment,
		CategoryFuel,
		CategoryTransfer,
		CategoryPurchase,
		CategoryOther,
		CategorySubscription,
		CategoryRefund,
	}
}

// IsValidCategory checks if a category string is in the closed enumeration
func IsValidCategory(category string) bool {
	_, ok := categoryLabels[category]
	return ok
}

// CategoryLabel returns the display label for a category key, falling back to
// the key itself for unknown values.
func CategoryLabel(category string) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	return category
}

// CategoryColor returns the display color for a category key, falling back to
// the neutral color for unknown values.
func CategoryColor(category string) string {
	if color, ok := categoryColors[category]; ok {
		return color
	}
	return categoryColors[CategoryOther]
}

// Categories returns the full presentation catalog in canonical order.
func Categories() []CategoryInfo {
	keys := AllCategories()
	infos := make([]CategoryInfo, 0, len(keys))
	for _, key := range keys {
		infos = append(infos, CategoryInfo{
			Key:   key,
			Label: categoryLabels[key],
			Color: categoryColors[key],
		})
	}
	return infos
}
