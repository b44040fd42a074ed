package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/enetx/g"
	"github.com/enetx/wizard"
	"github.com/google/uuid"
)

// DefaultTimeout bounds one submission when Client.Timeout is unset.
const DefaultTimeout = 10 * time.Second

// HeaderIdempotencyKey lets the CRM collapse duplicate deliveries of one submission.
const HeaderIdempotencyKey = "Idempotency-Key"

// IdempotencyKey returns the key sent with body to endpoint. It is a name-based
// UUID, so every delivery of the same record to the same endpoint carries the
// same key.
func IdempotencyKey(endpoint string, body []byte) string {
	ns := uuid.NewSHA1(uuid.NameSpaceURL, []byte(endpoint))
	return uuid.NewSHA1(ns, body).String()
}

// Receipt confirms an accepted submission.
type Receipt struct {
	OK        bool     `json:"ok"`
	Reference g.String `json:"reference"`
}

// Client posts completed onboarding records to the CRM intake endpoint.
// Each Process call performs exactly one request.
type Client struct {
	Endpoint string
	HTTP     *http.Client
	Timeout  time.Duration
	Logger   *slog.Logger
}

// NewClient returns a client for endpoint using http.DefaultClient.
func NewClient(endpoint string) *Client {
	return &Client{Endpoint: endpoint, Timeout: DefaultTimeout}
}

// Process implements wizard.Processor. Every failure, including malformed
// answers, is reported as *wizard.ErrSubmissionFailed.
func (c *Client) Process(ctx context.Context, answers wizard.Answers) (Receipt, error) {
	in, err := FromAnswers(answers)
	if err != nil {
		return Receipt{}, &wizard.ErrSubmissionFailed{Err: err}
	}

	receipt, err := c.Submit(ctx, in)
	if err != nil {
		return Receipt{}, &wizard.ErrSubmissionFailed{Err: err}
	}

	return receipt, nil
}

// Submit posts one intake record.
func (c *Client) Submit(ctx context.Context, in Intake) (Receipt, error) {
	log := c.Logger
	if log == nil {
		log = slog.Default()
	}

	log = log.With("component", "intake")

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(in)
	if err != nil {
		return Receipt{}, fmt.Errorf("encode intake: %w", err)
	}

	key := IdempotencyKey(c.Endpoint, body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderIdempotencyKey, key)

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()

	resp, err := client.Do(req)
	if err != nil {
		log.Warn("intake submission failed", "endpoint", c.Endpoint, "err", err)
		return Receipt{}, fmt.Errorf("post intake: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Receipt{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("intake rejected", "status", resp.StatusCode, "key", key)
		return Receipt{}, fmt.Errorf("intake endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	receipt := Receipt{OK: true}

	var reply struct {
		Reference g.String `json:"reference"`
	}

	if len(payload) > 0 && json.Unmarshal(payload, &reply) == nil {
		receipt.Reference = reply.Reference.Trim()
	}

	if receipt.Reference == "" {
		receipt.Reference = reference(key)
	}

	log.Info("intake submitted", "reference", receipt.Reference, "took", time.Since(start))

	return receipt, nil
}

// reference derives a short customer-facing reference from an idempotency key.
func reference(key string) g.String {
	return g.String(strings.ToUpper(strings.ReplaceAll(key, "-", "")[:9]))
}
