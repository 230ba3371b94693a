package services

import (
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zeus-03/pennytrail/internal/models"
)

// MerchantInfo pairs a merchant name with its usual spending category
type MerchantInfo struct {
	Name     string
	Category string
}

type transactionGenerator struct {
	merchantPool []MerchantInfo
	rng          *rand.Rand
	faker        *gofakeit.Faker
}

const (
	businessHoursStart = 6
	businessHoursEnd   = 24
)

// NewTransactionGenerator creates a new transaction generator for dev seeding
func NewTransactionGenerator() TransactionGeneratorInterface {
	seed := time.Now().UnixNano()
	return &transactionGenerator{
		merchantPool: initializeMerchantPool(),
		rng:          rand.New(rand.NewSource(seed)),
		faker:        gofakeit.New(uint64(seed)),
	}
}

// initializeMerchantPool creates a pool of realistic merchants across every category
func initializeMerchantPool() []MerchantInfo {
	return []MerchantInfo{
		// Bill payments
		{"Airtel Postpaid", models.CategoryBillPayment},
		{"Jio Fiber", models.CategoryBillPayment},
		{"Tata Power", models.CategoryBillPayment},
		{"BESCOM Electricity", models.CategoryBillPayment},
		{"Bangalore Water Board", models.CategoryBillPayment},
		{"ACT Broadband", models.CategoryBillPayment},

		// Entertainment
		{"BookMyShow", models.CategoryEntertainment},
		{"PVR Cinemas", models.CategoryEntertainment},
		{"INOX Movies", models.CategoryEntertainment},
		{"Steam Games", models.CategoryEntertainment},
		{"PlayStation Store", models.CategoryEntertainment},

		// Fuel
		{"Indian Oil", models.CategoryFuel},
		{"HP Petrol Pump", models.CategoryFuel},
		{"Bharat Petroleum", models.CategoryFuel},
		{"Shell", models.CategoryFuel},

		// Transfers
		{"UPI Transfer", models.CategoryTransfer},
		{"NEFT Transfer", models.CategoryTransfer},
		{"IMPS Transfer", models.CategoryTransfer},
		{"Paytm Wallet", models.CategoryTransfer},

		// Purchases
		{"Amazon", models.CategoryPurchase},
		{"Flipkart", models.CategoryPurchase},
		{"BigBasket", models.CategoryPurchase},
		{"Swiggy", models.CategoryPurchase},
		{"Zomato", models.CategoryPurchase},
		{"Myntra", models.CategoryPurchase},
		{"Blinkit", models.CategoryPurchase},
		{"DMart", models.CategoryPurchase},
		{"Croma", models.CategoryPurchase},
		{"Decathlon", models.CategoryPurchase},

		// Subscriptions
		{"Netflix", models.CategorySubscription},
		{"Spotify", models.CategorySubscription},
		{"Amazon Prime", models.CategorySubscription},
		{"Disney+ Hotstar", models.CategorySubscription},
		{"YouTube Premium", models.CategorySubscription},
		{"Apple iCloud", models.CategorySubscription},

		// Refunds
		{"Amazon Refund", models.CategoryRefund},
		{"Flipkart Refund", models.CategoryRefund},
		{"IRCTC Refund", models.CategoryRefund},

		// Other
		{"ATM Withdrawal", models.CategoryOther},
		{"Uber", models.CategoryOther},
		{"Ola Cabs", models.CategoryOther},
		{"IRCTC", models.CategoryOther},
		{"Apollo Pharmacy", models.CategoryOther},
	}
}

// SelectRandomMerchant selects a random merchant from the pool
func (g *transactionGenerator) SelectRandomMerchant() MerchantInfo {
	return g.merchantPool[g.rng.Intn(len(g.merchantPool))]
}

// GenerateAmount generates a realistic amount based on category
func (g *transactionGenerator) GenerateAmount(category string) decimal.Decimal {
	minValue, maxValue := g.getAmountRange(category)
	return decimal.NewFromFloat(g.faker.Float64Range(minValue, maxValue)).Round(2)
}

func (g *transactionGenerator) getAmountRange(category string) (float64, float64) {
	ranges := map[string][2]float64{
		models.CategoryBillPayment:   {200.00, 5000.00},
		models.CategoryEntertainment: {150.00, 1200.00},
		models.CategoryFuel:          {300.00, 3000.00},
		models.CategoryTransfer:      {100.00, 25000.00},
		models.CategoryPurchase:      {100.00, 8000.00},
		models.CategorySubscription:  {99.00, 1500.00},
		models.CategoryRefund:        {100.00, 4000.00},
		models.CategoryOther:         {50.00, 2000.00},
	}

	if r, exists := ranges[category]; exists {
		return r[0], r[1]
	}
	return 50.00, 1000.00
}

// GenerateTimestamp generates a random timestamp within the date range,
// clamped to waking hours
func (g *transactionGenerator) GenerateTimestamp(startDate, endDate time.Time) time.Time {
	diff := endDate.Sub(startDate)
	if diff <= 0 {
		return startDate
	}

	randomDuration := time.Duration(g.rng.Int63n(int64(diff)))
	timestamp := startDate.Add(randomDuration)

	hour := businessHoursStart + g.rng.Intn(businessHoursEnd-businessHoursStart)
	minute := g.rng.Intn(60)
	second := g.rng.Intn(60)

	return time.Date(
		timestamp.Year(),
		timestamp.Month(),
		timestamp.Day(),
		hour,
		minute,
		second,
		0,
		time.UTC,
	)
}

// GenerateHistoricalTransactions generates count transactions spread over the
// date range, roughly evenly spaced and sorted oldest first
func (g *transactionGenerator) GenerateHistoricalTransactions(
	userID uuid.UUID,
	startDate, endDate time.Time,
	count int,
) []*models.Transaction {
	if count <= 0 {
		return []*models.Transaction{}
	}

	step := endDate.Sub(startDate) / time.Duration(count)
	if step < time.Hour {
		step = time.Hour
	}

	transactions := make([]*models.Transaction, 0, count)
	windowStart := startDate

	for i := 0; i < count; i++ {
		windowEnd := windowStart.Add(step)
		if windowEnd.After(endDate) {
			windowEnd = endDate
		}

		merchant := g.SelectRandomMerchant()
		timestamp := g.GenerateTimestamp(windowStart, windowEnd)

		transactions = append(transactions, &models.Transaction{
			ID:              uuid.New().String(),
			UserID:          userID,
			Merchant:        merchant.Name,
			Amount:          g.GenerateAmount(merchant.Category),
			Category:        merchant.Category,
			Currency:        "INR",
			TransactionDate: timestamp,
			Verified:        g.faker.Bool(),
			CreatedAt:       timestamp,
			UpdatedAt:       timestamp,
		})

		if windowEnd.Equal(endDate) {
			windowStart = startDate
		} else {
			windowStart = windowEnd
		}
	}

	return transactions
}
