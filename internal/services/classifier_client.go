package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zeus-03/pennytrail/internal/config"
	"github.com/zeus-03/pennytrail/internal/models"
)

type classifyRequest struct {
	Merchant    string `json:"merchant"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

type classifyResponse struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// ClassifierClient calls the transaction classification service over HTTP
type ClassifierClient struct {
	baseURL string
	client  *http.Client
	breaker CircuitBreakerInterface
	metrics MetricsRecorderInterface
	logger  *slog.Logger
}

// NewClassifierClient creates a client for the classification service
func NewClassifierClient(
	cfg *config.ServicesConfig,
	breaker CircuitBreakerInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) ClassifierClientInterface {
	return &ClassifierClient{
		baseURL: cfg.ClassifierBaseURL,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		breaker: breaker,
		metrics: metrics,
		logger:  logger,
	}
}

// Classify assigns a spending category to a transaction. When the service is
// unreachable or returns an unknown category the caller falls back to Other.
func (c *ClassifierClient) Classify(ctx context.Context, merchant string, amount decimal.Decimal, description string) (string, float64, error) {
	if c.breaker.IsOpen() {
		c.recordRequest("rejected")
		return "", 0, ErrCircuitBreakerOpen
	}

	start := time.Now()

	payload := classifyRequest{
		Merchant:    merchant,
		Amount:      amount.StringFixed(2),
		Description: description,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", 0, fmt.Errorf("marshal classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("create classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		c.recordRequest("error")
		c.logger.Error("classifier request failed",
			"url", req.URL.String(),
			"merchant", merchant,
			"error", err,
		)
		return "", 0, fmt.Errorf("classifier request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.breaker.RecordFailure()
		c.recordRequest("error")
		return "", 0, fmt.Errorf("read classifier response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.breaker.RecordFailure()
		c.recordRequest("error")
		return "", 0, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var result classifyResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		c.breaker.RecordFailure()
		c.recordRequest("error")
		return "", 0, fmt.Errorf("decode classifier response: %w", err)
	}

	c.breaker.RecordSuccess()
	c.recordRequest("success")
	if c.metrics != nil {
		c.metrics.RecordProcessingTime("classification.duration", time.Since(start))
	}

	if !models.IsValidCategory(result.Category) {
		c.logger.Warn("classifier returned unknown category",
			"merchant", merchant,
			"category", result.Category,
		)
		return models.CategoryOther, result.Confidence, nil
	}

	return result.Category, result.Confidence, nil
}

// Health checks whether the classification service is reachable
func (c *ClassifierClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("classifier unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("classifier unhealthy: status %d", resp.StatusCode)
	}

	return nil
}

func (c *ClassifierClient) recordRequest(status string) {
	if c.metrics == nil {
		return
	}
	c.metrics.IncrementCounter("classification.request", map[string]string{"status": status})
	c.metrics.RecordGauge("circuit_breaker.state", float64(c.breaker.GetState()), map[string]string{"service": "classifier"})
}
