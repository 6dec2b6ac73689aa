package deploy

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/imamik/azdemo/internal/config"
	"github.com/imamik/azdemo/internal/console"
	"github.com/imamik/azdemo/internal/util/retry"
)

// healthPath is the built-in APIM health endpoint, available on every
// gateway without any API being deployed.
const healthPath = "/status-0123456789abcdef"

// HTTPProbe is the default Prober: a GET against the gateway health endpoint
// with a few quick retries to ride out cold starts.
type HTTPProbe struct {
	client   *http.Client
	timeouts *config.Timeouts
	sink     *console.Sink
}

// NewHTTPProbe creates a probe. A nil client gets a plain http.Client with
// the configured per-request timeout.
func NewHTTPProbe(client *http.Client, timeouts *config.Timeouts, sink *console.Sink) *HTTPProbe {
	if client == nil {
		client = &http.Client{Timeout: timeouts.ProbeTimeout}
	}
	return &HTTPProbe{client: client, timeouts: timeouts, sink: sink}
}

// Check GETs the gateway health endpoint. Any non-200 answer or transport
// error after the retry budget is returned as an error; the caller treats it
// as advisory.
func (p *HTTPProbe) Check(ctx context.Context, gatewayURL string) error {
	url := strings.TrimRight(gatewayURL, "/") + healthPath

	return retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.Fatal(err)
		}
		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("gateway health answered %d", resp.StatusCode)
		}
		p.sink.Debugf("gateway health ok: %s", url)
		return nil
	},
		retry.WithMaxRetries(p.timeouts.ProbeAttempts-1),
		retry.WithInitialDelay(2*time.Second),
		retry.WithMaxDelay(10*time.Second),
	)
}
