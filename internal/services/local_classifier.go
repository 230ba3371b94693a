package services

import (
	"strings"

	"github.com/zeus-03/pennytrail/internal/models"
)

// LocalClassifier categorizes transactions from merchant and description
// patterns without calling the classification service. The sync pipeline uses
// it as a fallback when the remote classifier is unreachable, so a service
// outage degrades accuracy instead of filing everything under Other.
type LocalClassifier struct {
	merchantPatterns    map[string]merchantPattern
	descriptionPatterns []descriptionPattern
}

type merchantPattern struct {
	category   string
	confidence float64
}

type descriptionPattern struct {
	keywords   []string
	category   string
	confidence float64
}

// NewLocalClassifier creates a pattern-based classifier
func NewLocalClassifier() *LocalClassifier {
	return &LocalClassifier{
		merchantPatterns:    initMerchantPatterns(),
		descriptionPatterns: initDescriptionPatterns(),
	}
}

// Classify returns the best-guess category for a transaction. Merchant
// patterns win over description keywords; anything unmatched is Other with
// zero confidence.
func (c *LocalClassifier) Classify(merchant, description string) (string, float64) {
	if category, confidence := c.classifyByMerchant(merchant); category != models.CategoryOther {
		return category, confidence
	}

	if category, confidence := c.classifyByDescription(description); category != models.CategoryOther {
		return category, confidence
	}

	return models.CategoryOther, 0.0
}

func (c *LocalClassifier) classifyByMerchant(merchant string) (string, float64) {
	if merchant == "" {
		return models.CategoryOther, 0.0
	}

	normalized := normalizeForMatching(merchant)

	for pattern, mapping := range c.merchantPatterns {
		if strings.Contains(normalized, normalizeForMatching(pattern)) {
			return mapping.category, mapping.confidence
		}
	}

	fuzzyMatch, score := c.fuzzyMatchMerchant(merchant)
	if score > 0.7 && fuzzyMatch != "" {
		if mapping, exists := c.merchantPatterns[fuzzyMatch]; exists {
			return mapping.category, score * mapping.confidence
		}
	}

	return models.CategoryOther, 0.0
}

func (c *LocalClassifier) classifyByDescription(description string) (string, float64) {
	if description == "" {
		return models.CategoryOther, 0.0
	}

	normalized := strings.ToLower(description)

	for _, pattern := range c.descriptionPatterns {
		for _, keyword := range pattern.keywords {
			if strings.Contains(normalized, strings.ToLower(keyword)) {
				return pattern.category, pattern.confidence
			}
		}
	}

	return models.CategoryOther, 0.0
}

// fuzzyMatchMerchant finds the closest known merchant name by Levenshtein
// similarity. Catches truncated or misspelled statement descriptors.
func (c *LocalClassifier) fuzzyMatchMerchant(input string) (string, float64) {
	if input == "" {
		return "", 0.0
	}

	input = strings.ToLower(strings.TrimSpace(input))
	var bestMatch string
	var bestScore float64

	for merchant := range c.merchantPatterns {
		score := calculateSimilarity(input, strings.ToLower(merchant))
		if score > bestScore && score > 0.7 {
			bestScore = score
			bestMatch = merchant
		}
	}

	return bestMatch, bestScore
}

func initMerchantPatterns() map[string]merchantPattern {
	return map[string]merchantPattern{
		// Bill payments
		"Airtel":      {category: models.CategoryBillPayment, confidence: 0.95},
		"Jio":         {category: models.CategoryBillPayment, confidence: 0.90},
		"Tata Power":  {category: models.CategoryBillPayment, confidence: 0.95},
		"BESCOM":      {category: models.CategoryBillPayment, confidence: 0.95},
		"Electricity": {category: models.CategoryBillPayment, confidence: 0.85},
		"Broadband":   {category: models.CategoryBillPayment, confidence: 0.85},

		// Entertainment
		"BookMyShow": {category: models.CategoryEntertainment, confidence: 0.95},
		"PVR":        {category: models.CategoryEntertainment, confidence: 0.95},
		"INOX":       {category: models.CategoryEntertainment, confidence: 0.95},
		"Steam":      {category: models.CategoryEntertainment, confidence: 0.90},

		// Fuel
		"Indian Oil": {category: models.CategoryFuel, confidence: 0.95},
		"HP Petrol":  {category: models.CategoryFuel, confidence: 0.95},
		"Bharat Petroleum": {category: models.CategoryFuel, confidence: 0.95},
		"Shell":  {category: models.CategoryFuel, confidence: 0.90},
		"Petrol": {category: models.CategoryFuel, confidence: 0.85},

		// Transfers
		"UPI":   {category: models.CategoryTransfer, confidence: 0.90},
		"NEFT":  {category: models.CategoryTransfer, confidence: 0.95},
		"IMPS":  {category: models.CategoryTransfer, confidence: 0.95},
		"RTGS":  {category: models.CategoryTransfer, confidence: 0.95},
		"Paytm": {category: models.CategoryTransfer, confidence: 0.80},

		// Purchases
		"Amazon":    {category: models.CategoryPurchase, confidence: 0.90},
		"Flipkart":  {category: models.CategoryPurchase, confidence: 0.95},
		"BigBasket": {category: models.CategoryPurchase, confidence: 0.95},
		"Swiggy":    {category: models.CategoryPurchase, confidence: 0.95},
		"Zomato":    {category: models.CategoryPurchase, confidence: 0.95},
		"Myntra":    {category: models.CategoryPurchase, confidence: 0.95},
		"Blinkit":   {category: models.CategoryPurchase, confidence: 0.95},
		"DMart":     {category: models.CategoryPurchase, confidence: 0.95},

		// Subscriptions
		"Netflix":  {category: models.CategorySubscription, confidence: 0.95},
		"Spotify":  {category: models.CategorySubscription, confidence: 0.95},
		"Prime":    {category: models.CategorySubscription, confidence: 0.85},
		"Hotstar":  {category: models.CategorySubscription, confidence: 0.95},
		"YouTube Premium": {category: models.CategorySubscription, confidence: 0.95},
		"iCloud":   {category: models.CategorySubscription, confidence: 0.95},
	}
}

func initDescriptionPatterns() []descriptionPattern {
	return []descriptionPattern{
		{
			keywords:   []string{"refund", "reversal", "reimbursement", "credit adjustment", "return"},
			category:   models.CategoryRefund,
			confidence: 0.90,
		},
		{
			keywords:   []string{"bill payment", "utility bill", "postpaid", "recharge"},
			category:   models.CategoryBillPayment,
			confidence: 0.85,
		},
		{
			keywords:   []string{"fuel", "petrol", "diesel"},
			category:   models.CategoryFuel,
			confidence: 0.85,
		},
		{
			keywords:   []string{"transferred to", "sent to", "fund transfer"},
			category:   models.CategoryTransfer,
			confidence: 0.85,
		},
		{
			keywords:   []string{"subscription", "membership", "renewal"},
			category:   models.CategorySubscription,
			confidence: 0.80,
		},
	}
}

// calculateSimilarity calculates the similarity score between two strings using Levenshtein distance
func calculateSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	if len(s1) == 0 || len(s2) == 0 {
		return 0.0
	}

	distance := levenshteinDistance(s1, s2)
	maxLen := len(s1)
	if len(s2) > maxLen {
		maxLen = len(s2)
	}

	return 1.0 - float64(distance)/float64(maxLen)
}

// levenshteinDistance calculates the Levenshtein distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	if len(s1) == 0 {
		return len(s2)
	}

	if len(s2) == 0 {
		return len(s1)
	}

	matrix := createMatrix(s1, s2)
	initializeFirstRowAndColumn(s1, s2, matrix)
	fillMatrix(s1, s2, matrix)

	return matrix[len(s1)][len(s2)]
}

func createMatrix(s1 string, s2 string) [][]int {
	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
	}
	return matrix
}

func initializeFirstRowAndColumn(s1 string, s2 string, matrix [][]int) {
	for i := 0; i <= len(s1); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(s2); j++ {
		matrix[0][j] = j
	}
}

func fillMatrix(s1 string, s2 string, matrix [][]int) {
	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			matrix[i][j] = calculateMinValue(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}
}

func calculateMinValue(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}

// normalizeForMatching normalizes strings for consistent matching
func normalizeForMatching(s string) string {
	s = strings.ToLower(s)
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, ".", "")
	return s
}
