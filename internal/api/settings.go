package api

import (
	"context"
	"net/http"

	"tripspend/internal/core"
)

// UpdateEnv passes provider API keys through to the backend's settings
// endpoint. Keys are opaque here: the map goes out as-is, e.g.
// {"OPENAI_API_KEY": "..."}.
func (c *Client) UpdateEnv(ctx context.Context, keys map[string]string) (string, error) {
	body, err := jsonBody(keys)
	if err != nil {
		return "", &core.CollaboratorError{Op: "update settings", Err: err}
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, call{
		op:          "update settings",
		method:      http.MethodPost,
		path:        "/update-env",
		body:        body,
		contentType: "application/json",
		authed:      true,
		out:         &resp,
	}); err != nil {
		return "", err
	}
	return resp.Message, nil
}
