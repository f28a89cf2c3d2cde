package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	applog "tripspend/internal/log"
	"tripspend/internal/session"
)

// authTransport attaches the bearer token to every outgoing request and
// logs request/response pairs under a per-request id. The token is read at
// send time so a cleared session stops authenticating immediately.
type authTransport struct {
	next     http.RoundTripper
	sessions *session.Store
	logger   *applog.Logger
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if tok := t.sessions.Token(); tok != "" {
		r.Header.Set("Authorization", "Bearer "+tok)
	}
	// Multipart bodies arrive with their boundary content type already set;
	// nothing here ever forces JSON onto them.

	reqID := uuid.New().String()
	start := time.Now()
	t.logger.Debug("http request",
		applog.FieldRequestID, reqID,
		applog.FieldMethod, r.Method,
		applog.FieldURL, r.URL.Path,
	)

	resp, err := t.next.RoundTrip(r)
	if err != nil {
		t.logger.Warn("http request failed",
			applog.FieldRequestID, reqID,
			applog.FieldMethod, r.Method,
			applog.FieldURL, r.URL.Path,
			applog.FieldError, err,
			applog.FieldDuration, time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	t.logger.Debug("http response",
		applog.FieldRequestID, reqID,
		applog.FieldStatus, resp.StatusCode,
		applog.FieldDuration, time.Since(start).Milliseconds(),
	)
	return resp, nil
}
