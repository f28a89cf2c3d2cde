// Package api is the HTTP client for the expense backend. It implements
// the consumer side of the REST contracts: auth, trips, expenses
// (multipart create/update), receipt OCR and settings passthrough. Every
// boundary failure is mapped to the shared error taxonomy before it
// reaches a caller; no raw transport error leaks through.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tripspend/internal/core"
	applog "tripspend/internal/log"
	"tripspend/internal/session"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultOCRTimeout = 90 * time.Second
	defaultOCRMethod  = "builtin"

	maxResponseBody = 4 << 20
)

// Config holds client configuration.
type Config struct {
	BaseURL    string
	Timeout    time.Duration // per-call budget for CRUD requests
	OCRTimeout time.Duration // OCR runs are slower and get their own budget
	OCRMethod  string        // "builtin" or a provider name
	OCRModel   string        // optional provider model
	HTTPClient *http.Client
	Logger     *applog.Logger
}

// Client talks to the expense backend. All methods take a context and
// return errors from the core taxonomy. The zero value is not usable; use
// New.
type Client struct {
	base       *url.URL
	http       *http.Client
	sessions   *session.Store
	logger     *applog.Logger
	timeout    time.Duration
	ocrTimeout time.Duration
	ocrMethod  string
	ocrModel   string
}

// New creates a client bound to the given session store. The store is how
// requests prove identity: the transport reads the current token on every
// call, and a 401/403 clears it.
func New(cfg Config, sessions *session.Store) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api: base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("api: parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api: base URL %q must be absolute", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.OCRTimeout <= 0 {
		cfg.OCRTimeout = defaultOCRTimeout
	}
	if cfg.OCRMethod == "" {
		cfg.OCRMethod = defaultOCRMethod
	}
	logger := cfg.Logger
	if logger == nil {
		logger = applog.Default(applog.ComponentAPI)
	}

	inner := http.DefaultTransport
	if cfg.HTTPClient != nil && cfg.HTTPClient.Transport != nil {
		inner = cfg.HTTPClient.Transport
	}
	httpClient := &http.Client{
		Transport: &authTransport{next: inner, sessions: sessions, logger: logger},
	}

	return &Client{
		base:       base,
		http:       httpClient,
		sessions:   sessions,
		logger:     logger,
		timeout:    cfg.Timeout,
		ocrTimeout: cfg.OCRTimeout,
		ocrMethod:  cfg.OCRMethod,
		ocrModel:   cfg.OCRModel,
	}, nil
}

// call describes one request through the boundary.
type call struct {
	op          string // human-readable operation, e.g. "create expense"
	resource    string // entity name for 404 mapping, e.g. "expense"
	resourceID  string
	method      string
	path        string
	body        io.Reader
	contentType string
	authed      bool
	timeout     time.Duration // overrides the default budget when set
	out         any
}

func (c *Client) do(ctx context.Context, cl call) error {
	if cl.authed && c.sessions.Token() == "" {
		// Rejected locally: no token means no request leaves the process.
		return fmt.Errorf("%s: %w", cl.op, core.ErrAuthRequired)
	}

	budget := cl.timeout
	if budget <= 0 {
		budget = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	u := c.base.JoinPath(cl.path)
	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), cl.body)
	if err != nil {
		return &core.CollaboratorError{Op: cl.op, Err: err}
	}
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &core.CollaboratorError{Op: cl.op, Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// The session is cleared before the error propagates, so by the
		// time the caller sees ErrAuthRequired the store is already empty.
		if cerr := c.sessions.Clear(); cerr != nil {
			c.logger.Warn("clearing session after auth failure",
				applog.FieldError, cerr)
		}
		return fmt.Errorf("%s: %w", cl.op, core.ErrAuthRequired)
	case resp.StatusCode == http.StatusNotFound:
		resource := cl.resource
		if resource == "" {
			resource = cl.op
		}
		return &core.NotFoundError{Resource: resource, ID: cl.resourceID}
	case resp.StatusCode/100 != 2:
		c.logger.Warn("backend rejected request",
			applog.FieldOperation, cl.op,
			applog.FieldStatus, resp.StatusCode,
		)
		return &core.CollaboratorError{
			Op:      cl.op,
			Status:  resp.StatusCode,
			Message: errorMessage(raw),
		}
	}

	if cl.out != nil {
		if err := json.Unmarshal(raw, cl.out); err != nil {
			return &core.CollaboratorError{Op: cl.op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}

// errorMessage pulls the backend's own message out of an error body. The
// backend answers with {"message": "..."} on most failures and with
// {"errors": [...]} on validation problems; those are joined so the user
// sees all of them at once.
func errorMessage(raw []byte) string {
	var body struct {
		Message string   `json:"message"`
		Error   string   `json:"error"`
		Errors  []string `json:"errors"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	switch {
	case body.Message != "":
		return body.Message
	case body.Error != "":
		return body.Error
	case len(body.Errors) > 0:
		return strings.Join(body.Errors, "; ")
	}
	return ""
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}
