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

	"github.com/zeus-03/pennytrail/internal/config"
)

// ExtractedTransaction is one candidate transaction pulled out of an email
type ExtractedTransaction struct {
	Merchant        string    `json:"merchant"`
	Amount          string    `json:"amount"`
	Currency        string    `json:"currency"`
	TransactionDate time.Time `json:"transactionDate"`
	Description     string    `json:"description"`
}

// ExtractionResult summarizes one extraction run
type ExtractionResult struct {
	TotalEmails         int                    `json:"totalEmails"`
	TransactionalEmails int                    `json:"transactionalEmails"`
	Transactions        []ExtractedTransaction `json:"transactions"`
}

type extractRequest struct {
	MaxResults int        `json:"maxResults"`
	SyncAll    bool       `json:"syncAll"`
	Since      *time.Time `json:"since,omitempty"`
}

// ExtractorClient calls the email extraction service over HTTP
type ExtractorClient struct {
	baseURL string
	client  *http.Client
	breaker CircuitBreakerInterface
	metrics MetricsRecorderInterface
	logger  *slog.Logger
}

// NewExtractorClient creates a client for the email extraction service
func NewExtractorClient(
	cfg *config.ServicesConfig,
	breaker CircuitBreakerInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) ExtractorClientInterface {
	return &ExtractorClient{
		baseURL: cfg.ExtractorBaseURL,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		breaker: breaker,
		metrics: metrics,
		logger:  logger,
	}
}

// Extract asks the extraction service to scan the mailbox and pull out
// candidate transactions. A nil since means the full mailbox window is scanned.
func (c *ExtractorClient) Extract(ctx context.Context, maxResults int, syncAll bool, since *time.Time) (*ExtractionResult, error) {
	if c.breaker.IsOpen() {
		c.recordRequest("rejected")
		return nil, ErrCircuitBreakerOpen
	}

	payload := extractRequest{
		MaxResults: maxResults,
		SyncAll:    syncAll,
		Since:      since,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal extract request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create extract request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		c.recordRequest("error")
		c.logger.Error("extractor request failed",
			"url", req.URL.String(),
			"error", err,
		)
		return nil, fmt.Errorf("extractor request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.breaker.RecordFailure()
		c.recordRequest("error")
		return nil, fmt.Errorf("read extractor response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.breaker.RecordFailure()
		c.recordRequest("error")
		c.logger.Error("extractor returned error status",
			"status", resp.StatusCode,
			"body", string(respBody),
		)
		return nil, fmt.Errorf("extractor returned status %d", resp.StatusCode)
	}

	var result ExtractionResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		c.breaker.RecordFailure()
		c.recordRequest("error")
		return nil, fmt.Errorf("decode extractor response: %w", err)
	}

	c.breaker.RecordSuccess()
	c.recordRequest("success")

	c.logger.Info("extraction completed",
		"total_emails", result.TotalEmails,
		"transactional_emails", result.TransactionalEmails,
		"transactions", len(result.Transactions),
	)

	return &result, nil
}

// Health checks whether the extraction service is reachable
func (c *ExtractorClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("extractor unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("extractor unhealthy: status %d", resp.StatusCode)
	}

	return nil
}

func (c *ExtractorClient) recordRequest(status string) {
	if c.metrics == nil {
		return
	}
	c.metrics.IncrementCounter("extraction.request", map[string]string{"status": status})
	c.metrics.RecordGauge("circuit_breaker.state", float64(c.breaker.GetState()), map[string]string{"service": "extractor"})
}
