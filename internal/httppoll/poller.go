// Package httppoll implements the "202 Accepted + Location" long-poll
// primitive: GET a status URL until it stops answering 202.
package httppoll

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrTimeout is returned when the wall-clock budget is exhausted while the
// operation is still reporting 202. It is distinct from StatusError so
// callers can tell "still running when we gave up" from "the service said no".
var ErrTimeout = fmt.Errorf("polling timed out")

// StatusError reports a terminal non-200/202 response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d while polling", e.Code)
}

// Client polls async operation status URLs.
type Client struct {
	http *http.Client

	// sleep is swapped in tests to avoid real delays.
	sleep func(time.Duration)
	now   func() time.Time
}

// NewClient creates a poller over the given HTTP client. A nil client uses
// http.DefaultClient.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{http: httpClient, sleep: time.Sleep, now: time.Now}
}

// Poll GETs the location URL until it answers something other than 202 or the
// wall-clock timeout expires.
//
//   - 200: the body is returned.
//   - 202: sleep interval, poll again.
//   - any other status: *StatusError, immediately, no retry.
//   - transport error: returned immediately, no retry.
//   - timeout: ErrTimeout.
func (c *Client) Poll(ctx context.Context, locationURL string, headers http.Header, timeout, interval time.Duration) (string, error) {
	deadline := c.now().Add(timeout)

	for c.now().Before(deadline) {
		body, code, err := c.get(ctx, locationURL, headers)
		if err != nil {
			return "", fmt.Errorf("polling %s: %w", locationURL, err)
		}

		switch code {
		case http.StatusOK:
			return body, nil
		case http.StatusAccepted:
			c.sleep(interval)
			if err := ctx.Err(); err != nil {
				return "", fmt.Errorf("polling %s: %w", locationURL, err)
			}
		default:
			return "", &StatusError{Code: code, Body: body}
		}
	}

	return "", fmt.Errorf("operation still running after %v: %w", timeout, ErrTimeout)
}

func (c *Client) get(ctx context.Context, url string, headers http.Header) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, err
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, err
	}
	return string(body), resp.StatusCode, nil
}
