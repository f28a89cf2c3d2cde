package api

import (
	"context"
	"fmt"
	"net/http"

	"tripspend/internal/core"
	applog "tripspend/internal/log"
)

// ListExpenses fetches all expenses for the authenticated user. Filtering
// by trip happens client-side on the trip name, matching the backend's
// join-by-name model.
func (c *Client) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	var out []core.Expense
	err := c.do(ctx, call{
		op:       "list expenses",
		resource: "expenses",
		method:   http.MethodGet,
		path:     "/expenses",
		authed:   true,
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateExpense persists a new expense, optionally attaching the receipt
// file that produced it.
func (c *Client) CreateExpense(ctx context.Context, e core.Expense, receipt *core.ReceiptFile) (core.Expense, error) {
	body, contentType, err := multipartForm(expenseFields(e), receipt)
	if err != nil {
		return core.Expense{}, &core.CollaboratorError{Op: "create expense", Err: err}
	}

	var resp struct {
		Expense core.Expense `json:"expense"`
	}
	if err := c.do(ctx, call{
		op:          "create expense",
		resource:    "expense",
		method:      http.MethodPost,
		path:        "/expenses",
		body:        body,
		contentType: contentType,
		authed:      true,
		out:         &resp,
	}); err != nil {
		return core.Expense{}, err
	}

	c.logger.Info("expense created",
		applog.FieldExpenseID, resp.Expense.ID.String(),
		applog.FieldTripName, e.TripName,
		applog.FieldCostCents, e.Cost.Cents,
	)
	return resp.Expense, nil
}

// UpdateExpense replaces the expense with the given ID.
func (c *Client) UpdateExpense(ctx context.Context, e core.Expense, receipt *core.ReceiptFile) (core.Expense, error) {
	if e.ID == "" {
		return core.Expense{}, fmt.Errorf("update expense: missing id")
	}
	body, contentType, err := multipartForm(expenseFields(e), receipt)
	if err != nil {
		return core.Expense{}, &core.CollaboratorError{Op: "update expense", Err: err}
	}

	var resp struct {
		Expense core.Expense `json:"expense"`
	}
	if err := c.do(ctx, call{
		op:          "update expense",
		resource:    "expense",
		resourceID:  e.ID.String(),
		method:      http.MethodPut,
		path:        "/expenses/" + e.ID.String(),
		body:        body,
		contentType: contentType,
		authed:      true,
		out:         &resp,
	}); err != nil {
		return core.Expense{}, err
	}

	c.logger.Info("expense updated", applog.FieldExpenseID, e.ID.String())
	return resp.Expense, nil
}

// DeleteExpense removes an expense. A NotFoundError means someone else got
// there first; callers refresh their list to reconcile.
func (c *Client) DeleteExpense(ctx context.Context, id core.ID) error {
	if id == "" {
		return fmt.Errorf("delete expense: missing id")
	}
	return c.do(ctx, call{
		op:         "delete expense",
		resource:   "expense",
		resourceID: id.String(),
		method:     http.MethodDelete,
		path:       "/expenses/" + id.String(),
		authed:     true,
	})
}
