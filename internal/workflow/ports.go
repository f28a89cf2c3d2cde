package workflow

import (
	"context"

	"tripspend/internal/core"
)

// Ports for the two collaborators the workflow crosses the boundary to.
// The API client implements both; tests use in-memory fakes.
type (
	// Extractor runs a receipt through OCR and returns whatever subset of
	// fields it recognized.
	Extractor interface {
		ProcessReceipt(ctx context.Context, f core.ReceiptFile) (core.ExtractedFields, error)
	}

	// ExpenseWriter persists expenses, create or update, with an optional
	// receipt attachment.
	ExpenseWriter interface {
		CreateExpense(ctx context.Context, e core.Expense, receipt *core.ReceiptFile) (core.Expense, error)
		UpdateExpense(ctx context.Context, e core.Expense, receipt *core.ReceiptFile) (core.Expense, error)
	}
)
