package api

import (
	"context"
	"fmt"
	"net/http"

	"tripspend/internal/core"
	applog "tripspend/internal/log"
)

// ListTrips fetches the user's trips.
func (c *Client) ListTrips(ctx context.Context) ([]core.Trip, error) {
	var out []core.Trip
	err := c.do(ctx, call{
		op:       "list trips",
		resource: "trips",
		method:   http.MethodGet,
		path:     "/trips",
		authed:   true,
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTrip creates a trip. The name is the join key expenses reference,
// so it must be unique per user; the backend enforces that and its message
// is surfaced verbatim on conflict.
func (c *Client) CreateTrip(ctx context.Context, name, description string) (core.Trip, error) {
	body, err := jsonBody(struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
	}{Name: name, Description: description})
	if err != nil {
		return core.Trip{}, &core.CollaboratorError{Op: "create trip", Err: err}
	}

	var resp struct {
		Trip core.Trip `json:"trip"`
	}
	if err := c.do(ctx, call{
		op:          "create trip",
		resource:    "trip",
		method:      http.MethodPost,
		path:        "/trips",
		body:        body,
		contentType: "application/json",
		authed:      true,
		out:         &resp,
	}); err != nil {
		return core.Trip{}, err
	}

	c.logger.Info("trip created", applog.FieldTripName, resp.Trip.Name)
	return resp.Trip, nil
}

// DeleteTrip removes a trip by ID.
func (c *Client) DeleteTrip(ctx context.Context, id core.ID) error {
	if id == "" {
		return fmt.Errorf("delete trip: missing id")
	}
	return c.do(ctx, call{
		op:         "delete trip",
		resource:   "trip",
		resourceID: id.String(),
		method:     http.MethodDelete,
		path:       "/trips/" + id.String(),
		authed:     true,
	})
}
