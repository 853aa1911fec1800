// Package peer probes the health endpoint of a sibling service.
package peer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrUnhealthy = errors.New("peer reported unhealthy")

// HealthClient calls GET <baseURL>/health with a bounded timeout.
type HealthClient struct {
	baseURL string
	http    *http.Client
}

// NewHealthClient creates a HealthClient. Every probe is cut off after timeout.
func NewHealthClient(baseURL string, timeout time.Duration) *HealthClient {
	return &HealthClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Check returns nil only when the peer answers 200. No retries.
func (c *HealthClient) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}
