package api

import (
	"context"
	"fmt"
	"net/http"

	"tripspend/internal/core"
	applog "tripspend/internal/log"
	"tripspend/internal/session"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates against the backend and, on success, stores the
// returned token and identity in the session store.
func (c *Client) Login(ctx context.Context, username, password string) (session.User, error) {
	body, err := jsonBody(credentials{Username: username, Password: password})
	if err != nil {
		return session.User{}, &core.CollaboratorError{Op: "login", Err: err}
	}

	var resp struct {
		Token    string  `json:"token"`
		UserID   core.ID `json:"userId"`
		Username string  `json:"username"`
	}
	if err := c.do(ctx, call{
		op:          "login",
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        body,
		contentType: "application/json",
		out:         &resp,
	}); err != nil {
		return session.User{}, err
	}

	if resp.Token == "" || resp.UserID == "" {
		return session.User{}, &core.CollaboratorError{
			Op:  "login",
			Err: fmt.Errorf("incomplete login response from server"),
		}
	}

	user := session.User{ID: resp.UserID.String(), Username: resp.Username}
	if user.Username == "" {
		user.Username = username
	}
	if err := c.sessions.Set(resp.Token, user); err != nil {
		return session.User{}, fmt.Errorf("store session: %w", err)
	}

	c.logger.Info("logged in", applog.FieldUsername, user.Username)
	return user, nil
}

// Register creates a new account. It does not log the user in;
// registration and login stay separate steps.
func (c *Client) Register(ctx context.Context, username, password string) error {
	body, err := jsonBody(credentials{Username: username, Password: password})
	if err != nil {
		return &core.CollaboratorError{Op: "register", Err: err}
	}
	return c.do(ctx, call{
		op:          "register",
		method:      http.MethodPost,
		path:        "/auth/register",
		body:        body,
		contentType: "application/json",
	})
}

// Logout discards the session client-side. The backend keeps no session
// state to invalidate.
func (c *Client) Logout() error {
	return c.sessions.Clear()
}
