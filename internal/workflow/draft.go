// Package workflow is the client-side state machine that moves a single
// expense record from an uploaded receipt through an OCR-populated,
// user-edited draft to a persisted expense. One workflow instance owns one
// draft; the session and the list view live elsewhere.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"tripspend/internal/core"
	applog "tripspend/internal/log"
)

// State of the draft workflow.
type State string

const (
	StateEmpty      State = "empty"
	StateUploading  State = "uploading"
	StateExtracted  State = "extracted"
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
)

var (
	// ErrBusy rejects a second upload or submit while one is in flight.
	// Requests per draft are strictly serialized; overlapping submissions
	// would risk duplicates.
	ErrBusy = errors.New("another request is in flight")

	// ErrDiscarded is returned to an in-flight operation whose draft was
	// cancelled while it was out.
	ErrDiscarded = errors.New("draft was discarded")

	errNothingToSubmit = errors.New("nothing to submit")
)

// UploadResult is the outcome of a receipt upload that reached the
// Extracted state. Warning and Err are mutually exclusive: Warning means
// extraction came back empty (manual entry needed, nothing went wrong),
// Err means the collaborator call itself failed. Either way the user can
// proceed to manual entry.
type UploadResult struct {
	Fields  core.ExtractedFields
	Warning string
	Err     error
}

// SubmitResult reports a successful submit. TripName is the trip the
// caller should refresh its list for.
type SubmitResult struct {
	Expense  core.Expense
	TripName string
	Created  bool
}

// Workflow is the draft state machine. All methods are safe for concurrent
// use; boundary-crossing operations (UploadReceipt, Submit) are serialized
// per instance.
type Workflow struct {
	mu      sync.Mutex
	state   State
	draft   core.Draft
	receipt *core.ReceiptFile
	busy    bool
	gen     uint64 // bumped on every reset so stale completions are dropped

	extractor Extractor
	writer    ExpenseWriter
	logger    *applog.Logger
}

// New creates an empty workflow over the given collaborators.
func New(extractor Extractor, writer ExpenseWriter, logger *applog.Logger) *Workflow {
	if logger == nil {
		logger = applog.Default(applog.ComponentWorkflow)
	}
	return &Workflow{
		state:     StateEmpty,
		extractor: extractor,
		writer:    writer,
		logger:    logger,
	}
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Draft returns a copy of the current draft.
func (w *Workflow) Draft() core.Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// UploadReceipt validates the file type, runs it through the OCR
// collaborator and lands in Extracted. Only image or PDF files are
// accepted; anything else is rejected with a validation error before the
// collaborator is ever invoked, and the draft stays as it was.
//
// Extraction failure never blocks the user: an empty result or a failed
// call both produce an all-empty draft in Extracted, distinguished as
// warning versus error on the UploadResult.
func (w *Workflow) UploadReceipt(ctx context.Context, f core.ReceiptFile) (UploadResult, error) {
	if f.ContentType == "" {
		f.ContentType = mimetype.Detect(f.Data).String()
	}
	if !acceptableReceiptType(f.ContentType) {
		ve := &core.ValidationError{}
		ve.Add("receipt", "must be an image or PDF")
		return UploadResult{}, ve
	}

	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return UploadResult{}, ErrBusy
	}
	w.busy = true
	w.state = StateUploading
	gen := w.gen
	w.mu.Unlock()

	w.logger.Info("processing receipt",
		applog.FieldFileName, f.Name,
		applog.FieldFileType, f.ContentType,
	)
	fields, err := w.extractor.ProcessReceipt(ctx, f)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen != gen {
		// Cancelled while the request was out; the result is nobody's.
		return UploadResult{}, ErrDiscarded
	}
	w.busy = false
	w.state = StateExtracted
	w.receipt = &f

	var res UploadResult
	switch {
	case err != nil:
		w.draft = core.Draft{}
		res.Err = err
		w.logger.Warn("receipt processing failed", applog.FieldError, err)
	case fields.Empty():
		w.draft = core.Draft{}
		res.Warning = "could not extract details from the receipt, please fill in manually"
	default:
		w.draft = draftFromFields(fields)
		res.Fields = fields
	}
	return res, nil
}

// BeginEdit loads an existing expense into the draft for editing.
func (w *Workflow) BeginEdit(e core.Expense) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return ErrBusy
	}
	w.draft = core.Draft{
		ID:         e.ID,
		TripName:   e.TripName,
		Type:       e.Type,
		Date:       e.Date,
		Vendor:     e.Vendor,
		Location:   e.Location,
		Cost:       e.Cost.String(),
		Comments:   e.Comments,
		ReceiptURL: e.ReceiptURL,
	}
	w.receipt = nil
	w.state = StateEditing
	return nil
}

// BeginManual opens an all-empty draft without a receipt, the "fill in
// manually" path.
func (w *Workflow) BeginManual() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return ErrBusy
	}
	w.draft = core.Draft{}
	w.receipt = nil
	w.state = StateExtracted
	return nil
}

// EditField mutates one draft field. Valid from Extracted or Editing and
// always lands in Editing.
func (w *Workflow) EditField(name, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateExtracted && w.state != StateEditing {
		return fmt.Errorf("cannot edit draft in state %q", w.state)
	}

	switch name {
	case "tripName":
		w.draft.TripName = value
	case "type":
		w.draft.Type = value
	case "date":
		w.draft.Date = value
	case "vendor":
		w.draft.Vendor = value
	case "location":
		w.draft.Location = value
	case "cost":
		w.draft.Cost = value
	case "comments":
		w.draft.Comments = value
	default:
		return fmt.Errorf("unknown draft field %q", name)
	}
	w.state = StateEditing
	return nil
}

// Validate checks the current draft against every rule without changing
// state.
func (w *Workflow) Validate() error {
	return ValidateDraft(w.Draft())
}

// Submit validates the draft and persists it: update when the draft has an
// identifier, create otherwise. Success resets the workflow to Empty and
// reports the trip name the caller should refresh for. Any failure lands
// in Editing with the draft intact so the user can correct and retry.
func (w *Workflow) Submit(ctx context.Context) (SubmitResult, error) {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return SubmitResult{}, ErrBusy
	}
	if w.state == StateEmpty || w.state == StateUploading {
		w.mu.Unlock()
		return SubmitResult{}, errNothingToSubmit
	}

	draft := w.draft
	if err := ValidateDraft(draft); err != nil {
		w.state = StateEditing
		w.mu.Unlock()
		return SubmitResult{}, err
	}

	expense, err := expenseFromDraft(draft)
	if err != nil {
		w.state = StateEditing
		w.mu.Unlock()
		return SubmitResult{}, err
	}

	receipt := w.receipt
	gen := w.gen
	w.busy = true
	w.state = StateSubmitting
	w.mu.Unlock()

	var (
		saved   core.Expense
		created bool
	)
	if draft.IsNew() {
		saved, err = w.writer.CreateExpense(ctx, expense, receipt)
		created = true
	} else {
		saved, err = w.writer.UpdateExpense(ctx, expense, receipt)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen != gen {
		return SubmitResult{}, ErrDiscarded
	}
	w.busy = false

	if err != nil {
		w.state = StateEditing
		w.logger.Warn("submit failed",
			applog.FieldError, err,
			applog.FieldState, string(StateEditing),
		)
		return SubmitResult{}, err
	}

	tripName := strings.TrimSpace(draft.TripName)
	if tripName == "" {
		tripName = saved.TripName
	}
	w.logger.Info("draft submitted",
		applog.FieldExpenseID, saved.ID.String(),
		applog.FieldTripName, tripName,
	)

	w.reset()
	return SubmitResult{Expense: saved, TripName: tripName, Created: created}, nil
}

// Cancel discards the draft unconditionally and returns to Empty. An
// operation in flight finds its result dropped when it comes back.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false
	w.reset()
}

// reset clears draft state. Callers hold the lock.
func (w *Workflow) reset() {
	w.gen++
	w.draft = core.Draft{}
	w.receipt = nil
	w.state = StateEmpty
}

func acceptableReceiptType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return strings.HasPrefix(ct, "image/") || ct == "application/pdf"
}

// draftFromFields builds a draft from an OCR result. Unset fields default
// to empty; the trip name is never supplied by OCR and stays empty pending
// user input.
func draftFromFields(f core.ExtractedFields) core.Draft {
	return core.Draft{
		Type:     strings.TrimSpace(f.Type),
		Date:     strings.TrimSpace(f.Date),
		Vendor:   strings.TrimSpace(f.Vendor),
		Location: strings.TrimSpace(f.Location),
		Cost:     strings.TrimSpace(string(f.Cost)),
		Comments: strings.TrimSpace(f.Comments),
	}
}

// expenseFromDraft converts a validated draft into the typed expense the
// persistence collaborator takes. Validation has already gated the cost, so
// a parse failure here is a programming error and is reported, not coerced
// to zero.
func expenseFromDraft(d core.Draft) (core.Expense, error) {
	cost, err := core.ParseMoney(d.Cost)
	if err != nil {
		return core.Expense{}, fmt.Errorf("cost %q: %w", d.Cost, err)
	}
	return core.Expense{
		ID:         d.ID,
		TripName:   strings.TrimSpace(d.TripName),
		Type:       strings.TrimSpace(d.Type),
		Date:       strings.TrimSpace(d.Date),
		Vendor:     strings.TrimSpace(d.Vendor),
		Location:   strings.TrimSpace(d.Location),
		Cost:       cost,
		Comments:   strings.TrimSpace(d.Comments),
		ReceiptURL: d.ReceiptURL,
	}, nil
}
