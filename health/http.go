package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// ShowDetails controls whether component health is included in HTTP responses.
type ShowDetails int

const (
	// ShowDetailsAlways includes components in every response.
	ShowDetailsAlways ShowDetails = iota
	// ShowDetailsNever reduces the body to the overall status.
	ShowDetailsNever
	// ShowDetailsWhenAuthorized includes components only for requests
	// accepted by the configured authorizer.
	ShowDetailsWhenAuthorized
)

// ParseShowDetails parses "always", "never" or "when_authorized".
func ParseShowDetails(s string) (ShowDetails, bool) {
	switch s {
	case "", "always":
		return ShowDetailsAlways, true
	case "never":
		return ShowDetailsNever, true
	case "when_authorized", "when-authorized":
		return ShowDetailsWhenAuthorized, true
	default:
		return ShowDetailsAlways, false
	}
}

// HandlerOption configures Handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	show      ShowDetails
	authorize func(*http.Request) bool
	timeout   time.Duration
}

// WithShowDetails sets the details visibility. Default: ShowDetailsAlways.
func WithShowDetails(show ShowDetails) HandlerOption {
	return func(c *handlerConfig) {
		c.show = show
	}
}

// WithAuthorizer sets the check used by ShowDetailsWhenAuthorized.
// Without an authorizer no request is authorized.
func WithAuthorizer(authorize func(*http.Request) bool) HandlerOption {
	return func(c *handlerConfig) {
		c.authorize = authorize
	}
}

// WithRequestTimeout bounds each evaluation. Default: 10 seconds.
func WithRequestTimeout(d time.Duration) HandlerOption {
	return func(c *handlerConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func (c *handlerConfig) showComponents(r *http.Request) bool {
	switch c.show {
	case ShowDetailsAlways:
		return true
	case ShowDetailsWhenAuthorized:
		return c.authorize != nil && c.authorize(r)
	default:
		return false
	}
}

// LivenessHandler returns an HTTP handler for liveness probes.
// It reports UP whenever the process can serve requests.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, Body{Status: StatusUp})
	}
}

// Handler returns an HTTP handler that serves the endpoint's health for group.
func Handler(e *Endpoint, group string, opts ...HandlerOption) http.Handler {
	cfg := handlerConfig{
		show:    ShowDetailsAlways,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), cfg.timeout)
		defer cancel()

		resp, err := e.Health(ctx, group)
		if err != nil {
			if errors.Is(err, ErrUnknownGroup) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		body := resp.Body
		if !cfg.showComponents(r) {
			body.Components = Components{}
		}
		writeJSON(w, r, resp.Status, body)
	})
}

// RegisterHandlers registers the liveness handler at /livez, the default
// group at /health, and every group at /health/{group}.
func RegisterHandlers(mux *http.ServeMux, e *Endpoint, opts ...HandlerOption) {
	mux.Handle("/livez", LivenessHandler())
	mux.Handle("/health", Handler(e, "", opts...))
	for _, group := range e.Groups() {
		mux.Handle("/health/"+group, Handler(e, group, opts...))
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, body Body) {
	data, err := json.Marshal(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if r.Method != http.MethodHead {
		_, _ = w.Write(data)
	}
}
