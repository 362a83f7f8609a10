package health

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxProbeBody caps how much of a downstream response is read.
const maxProbeBody = 1 << 20

// HTTPConfig configures the HTTP probe contributor.
type HTTPConfig struct {
	// URL is the downstream address to probe.
	URL string

	// Method is the request method.
	// Default: GET
	Method string

	// Timeout bounds a single probe.
	// Default: 5 seconds
	Timeout time.Duration

	// Client is the HTTP client to use. Default: http.DefaultClient.
	Client *http.Client

	// Header is added to every probe request.
	Header http.Header
}

// HTTPContributor reports the health of a downstream HTTP service.
//
// A 2xx response is UP and anything else DOWN. When the downstream answers
// with a health document of its own ({"status": "..."}), its status is
// adopted instead.
type HTTPContributor struct {
	config HTTPConfig
}

// NewHTTPContributor creates an HTTP probe contributor.
func NewHTTPContributor(config HTTPConfig) *HTTPContributor {
	if config.Method == "" {
		config.Method = http.MethodGet
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	if config.Client == nil {
		config.Client = http.DefaultClient
	}
	return &HTTPContributor{config: config}
}

// Health probes the downstream service.
func (p *HTTPContributor) Health(ctx context.Context) (Health, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, p.config.Method, p.config.URL, nil)
	if err != nil {
		return Health{}, fmt.Errorf("build probe request: %w", err)
	}
	for key, values := range p.config.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.config.Client.Do(req)
	if err != nil {
		return Down(WithDetail("url", p.config.URL), WithError(err)), nil
	}
	defer resp.Body.Close()

	opts := []Option{
		WithDetail("url", p.config.URL),
		WithDetail("status_code", resp.StatusCode),
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxProbeBody))
	var downstream Health
	if len(body) > 0 && json.Unmarshal(body, &downstream) == nil {
		return WithStatus(downstream.Status(), opts...), nil
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Up(opts...), nil
	}
	return Down(opts...), nil
}

// Ensure HTTPContributor implements Contributor
var _ Contributor = (*HTTPContributor)(nil)
