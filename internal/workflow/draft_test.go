package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripspend/internal/core"
)

type fakeExtractor struct {
	mu      sync.Mutex
	fields  core.ExtractedFields
	err     error
	calls   int
	gotFile core.ReceiptFile
	release chan struct{} // when set, ProcessReceipt blocks until closed
	started chan struct{}
}

func (f *fakeExtractor) ProcessReceipt(_ context.Context, file core.ReceiptFile) (core.ExtractedFields, error) {
	f.mu.Lock()
	f.calls++
	f.gotFile = file
	release := f.release
	started := f.started
	f.mu.Unlock()
	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	return f.fields, f.err
}

func (f *fakeExtractor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeWriter struct {
	mu         sync.Mutex
	created    []core.Expense
	updated    []core.Expense
	gotReceipt *core.ReceiptFile
	err        error
	release    chan struct{}
	started    chan struct{}
}

func (f *fakeWriter) CreateExpense(_ context.Context, e core.Expense, receipt *core.ReceiptFile) (core.Expense, error) {
	return f.record(&f.created, e, receipt, "101")
}

func (f *fakeWriter) UpdateExpense(_ context.Context, e core.Expense, receipt *core.ReceiptFile) (core.Expense, error) {
	return f.record(&f.updated, e, receipt, e.ID)
}

func (f *fakeWriter) record(dst *[]core.Expense, e core.Expense, receipt *core.ReceiptFile, id core.ID) (core.Expense, error) {
	f.mu.Lock()
	release := f.release
	started := f.started
	f.mu.Unlock()
	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return core.Expense{}, f.err
	}
	e.ID = id
	*dst = append(*dst, e)
	f.gotReceipt = receipt
	return e, nil
}

func newTestWorkflow(ex *fakeExtractor, wr *fakeWriter) *Workflow {
	return New(ex, wr, nil)
}

func pdfFile() core.ReceiptFile {
	return core.ReceiptFile{Name: "receipt.pdf", Data: []byte("%PDF-1.4\nfake receipt body")}
}

func TestUploadRejectsNonImageNonPDF(t *testing.T) {
	ex := &fakeExtractor{}
	w := newTestWorkflow(ex, &fakeWriter{})

	_, err := w.UploadReceipt(context.Background(), core.ReceiptFile{
		Name:        "notes.txt",
		ContentType: "text/plain",
		Data:        []byte("just text"),
	})
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 0, ex.callCount(), "collaborator must not be invoked for rejected files")
	assert.Equal(t, StateEmpty, w.State(), "rejected upload leaves the workflow unchanged")
	assert.Equal(t, core.Draft{}, w.Draft())
}

func TestUploadSniffsMissingContentType(t *testing.T) {
	ex := &fakeExtractor{fields: core.ExtractedFields{Cost: "9.99"}}
	w := newTestWorkflow(ex, &fakeWriter{})

	// No content type given; the PDF magic bytes decide.
	res, err := w.UploadReceipt(context.Background(), pdfFile())
	require.NoError(t, err)
	require.NoError(t, res.Err)
	assert.Equal(t, "application/pdf", ex.gotFile.ContentType)

	// Plain text sniffs to text/plain and is rejected.
	_, err = w.UploadReceipt(context.Background(), core.ReceiptFile{
		Name: "notes.txt",
		Data: []byte("plain text, nothing like a pdf or image"),
	})
	var ve *core.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUploadPartialExtraction(t *testing.T) {
	ex := &fakeExtractor{fields: core.ExtractedFields{Cost: "12.50"}}
	w := newTestWorkflow(ex, &fakeWriter{})

	res, err := w.UploadReceipt(context.Background(), pdfFile())
	require.NoError(t, err)
	assert.Empty(t, res.Warning)
	assert.NoError(t, res.Err)
	assert.Equal(t, StateExtracted, w.State())

	d := w.Draft()
	assert.Equal(t, "12.50", d.Cost)
	assert.Empty(t, d.Type)
	assert.Empty(t, d.Date)
	assert.Empty(t, d.Vendor)
	assert.Empty(t, d.TripName, "trip name is never supplied by OCR")
}

func TestUploadEmptyExtractionWarns(t *testing.T) {
	ex := &fakeExtractor{fields: core.ExtractedFields{}}
	w := newTestWorkflow(ex, &fakeWriter{})

	res, err := w.UploadReceipt(context.Background(), pdfFile())
	require.NoError(t, err)
	assert.NotEmpty(t, res.Warning, "empty extraction surfaces a warning, not an error")
	assert.NoError(t, res.Err)
	assert.Equal(t, StateExtracted, w.State())
	assert.Equal(t, core.Draft{}, w.Draft())
}

func TestUploadCollaboratorFailureSurfacesError(t *testing.T) {
	ex := &fakeExtractor{err: &core.CollaboratorError{Op: "process receipt", Err: errors.New("connection refused")}}
	w := newTestWorkflow(ex, &fakeWriter{})

	res, err := w.UploadReceipt(context.Background(), pdfFile())
	require.NoError(t, err, "the workflow itself proceeds; the failure rides on the result")
	assert.Error(t, res.Err)
	assert.Empty(t, res.Warning)
	assert.Equal(t, StateExtracted, w.State(), "user is never blocked from manual entry")
	assert.Equal(t, core.Draft{}, w.Draft())
}

func TestUploadSerialized(t *testing.T) {
	ex := &fakeExtractor{
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	w := newTestWorkflow(ex, &fakeWriter{})

	done := make(chan error, 1)
	go func() {
		_, err := w.UploadReceipt(context.Background(), pdfFile())
		done <- err
	}()
	<-ex.started

	_, err := w.UploadReceipt(context.Background(), pdfFile())
	assert.ErrorIs(t, err, ErrBusy)

	close(ex.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, ex.callCount())
}

func TestEditFieldTransitions(t *testing.T) {
	ex := &fakeExtractor{fields: core.ExtractedFields{Cost: "12.50"}}
	w := newTestWorkflow(ex, &fakeWriter{})

	// Editing an empty workflow is invalid.
	err := w.EditField("vendor", "ACME")
	assert.Error(t, err)

	_, err = w.UploadReceipt(context.Background(), pdfFile())
	require.NoError(t, err)
	assert.Equal(t, StateExtracted, w.State())

	require.NoError(t, w.EditField("vendor", "ACME"))
	assert.Equal(t, StateEditing, w.State())
	assert.Equal(t, "ACME", w.Draft().Vendor)

	assert.Error(t, w.EditField("nosuchfield", "x"))
}

func TestSubmitCreatesNewExpense(t *testing.T) {
	wr := &fakeWriter{}
	w := newTestWorkflow(&fakeExtractor{fields: core.ExtractedFields{Cost: "12.50"}}, wr)

	_, err := w.UploadReceipt(context.Background(), pdfFile())
	require.NoError(t, err)
	for field, v := range map[string]string{
		"tripName": "Berlin",
		"type":     "Meals",
		"date":     "2024-04-01",
		"vendor":   "Cafe",
		"location": "Berlin",
	} {
		require.NoError(t, w.EditField(field, v))
	}

	res, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "Berlin", res.TripName, "caller refreshes the list scoped to this trip")
	assert.Equal(t, core.ID("101"), res.Expense.ID)
	assert.Equal(t, StateEmpty, w.State(), "success resets the workflow")
	assert.Equal(t, core.Draft{}, w.Draft())

	require.Len(t, wr.created, 1)
	assert.Empty(t, wr.updated)
	assert.Equal(t, int64(1250), wr.created[0].Cost.Cents)
	require.NotNil(t, wr.gotReceipt, "the uploaded receipt travels with the submit")
	assert.Equal(t, "receipt.pdf", wr.gotReceipt.Name)
}

func TestSubmitWithIdentifierUpdates(t *testing.T) {
	wr := &fakeWriter{}
	w := newTestWorkflow(&fakeExtractor{}, wr)

	require.NoError(t, w.BeginEdit(core.Expense{
		ID:       "42",
		TripName: "Berlin",
		Type:     "Meals",
		Date:     "2024-04-01",
		Vendor:   "Cafe",
		Location: "Berlin",
		Cost:     core.Money{Cents: 1820},
	}))
	assert.Equal(t, StateEditing, w.State())

	require.NoError(t, w.EditField("vendor", "Cafe Einstein"))
	res, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Created)
	require.Len(t, wr.updated, 1)
	assert.Empty(t, wr.created, "a draft with an identifier calls update, not create")
	assert.Equal(t, core.ID("42"), wr.updated[0].ID)
	assert.Equal(t, StateEmpty, w.State())
}

func TestSubmitValidationFailureStaysEditable(t *testing.T) {
	wr := &fakeWriter{}
	w := newTestWorkflow(&fakeExtractor{}, wr)

	require.NoError(t, w.BeginManual())
	require.NoError(t, w.EditField("vendor", "ACME"))

	_, err := w.Submit(context.Background())
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, StateEditing, w.State())
	assert.Equal(t, "ACME", w.Draft().Vendor, "draft survives a failed submit")
	assert.Empty(t, wr.created)
}

func TestSubmitCollaboratorFailureStaysEditable(t *testing.T) {
	wr := &fakeWriter{err: &core.CollaboratorError{Op: "create expense", Status: 500, Message: "storage unavailable"}}
	w := newTestWorkflow(&fakeExtractor{}, wr)

	require.NoError(t, w.BeginManual())
	d := validDraft()
	for field, v := range map[string]string{
		"tripName": d.TripName, "type": d.Type, "date": d.Date,
		"vendor": d.Vendor, "location": d.Location, "cost": d.Cost,
	} {
		require.NoError(t, w.EditField(field, v))
	}

	_, err := w.Submit(context.Background())
	var ce *core.CollaboratorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "storage unavailable", ce.UserMessage(), "backend message surfaced verbatim")
	assert.Equal(t, StateEditing, w.State())
	assert.Equal(t, d.Vendor, w.Draft().Vendor)
}

func TestSubmitSerialized(t *testing.T) {
	wr := &fakeWriter{
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	w := newTestWorkflow(&fakeExtractor{}, wr)

	require.NoError(t, w.BeginManual())
	d := validDraft()
	for field, v := range map[string]string{
		"tripName": d.TripName, "type": d.Type, "date": d.Date,
		"vendor": d.Vendor, "location": d.Location, "cost": d.Cost,
	} {
		require.NoError(t, w.EditField(field, v))
	}

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background())
		done <- err
	}()
	<-wr.started

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(wr.release)
	require.NoError(t, <-done)
	require.Len(t, wr.created, 1, "exactly one submission despite the second attempt")
}

func TestCancelDiscardsInFlightUpload(t *testing.T) {
	ex := &fakeExtractor{
		fields:  core.ExtractedFields{Cost: "12.50"},
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	w := newTestWorkflow(ex, &fakeWriter{})

	done := make(chan error, 1)
	go func() {
		_, err := w.UploadReceipt(context.Background(), pdfFile())
		done <- err
	}()
	<-ex.started

	w.Cancel()
	assert.Equal(t, StateEmpty, w.State())

	close(ex.release)
	assert.ErrorIs(t, <-done, ErrDiscarded)
	assert.Equal(t, StateEmpty, w.State(), "stale completion must not resurrect the draft")
	assert.Equal(t, core.Draft{}, w.Draft())
}

func TestCancelFromEditing(t *testing.T) {
	w := newTestWorkflow(&fakeExtractor{}, &fakeWriter{})
	require.NoError(t, w.BeginEdit(core.Expense{ID: "42", Cost: core.Money{Cents: 100}}))
	w.Cancel()
	assert.Equal(t, StateEmpty, w.State())
	assert.Equal(t, core.Draft{}, w.Draft())
}

func TestSubmitOnEmptyWorkflow(t *testing.T) {
	w := newTestWorkflow(&fakeExtractor{}, &fakeWriter{})
	_, err := w.Submit(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StateEmpty, w.State())
}
