package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// DefaultTimeout bounds one delivery attempt.
const DefaultTimeout = 8 * time.Second

// ErrNoCallbackURL is returned when no collector is configured.
var ErrNoCallbackURL = errors.New("callback url not configured")

// Client posts payloads to the collector.
type Client struct {
	url    string
	client *http.Client
}

// NewClient returns a Client for url. A non-positive timeout uses DefaultTimeout.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// IdempotencyKey is stable per session so a collector can discard a
// duplicate of a report whose acknowledgement was lost.
func IdempotencyKey(sessionID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("lure:report:"+sessionID)).String()
}

// Send delivers p once. Any non-2xx status is an error.
func (c *Client) Send(ctx context.Context, p Payload) error {
	if c.url == "" {
		return ErrNoCallbackURL
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", IdempotencyKey(p.SessionID))

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("callback post: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("callback returned %d", resp.StatusCode)
	}
	return nil
}
