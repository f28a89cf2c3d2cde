package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAuthRequired is the distinguishable condition a caller receives when
// the backend rejected the session (401/403) or when no session exists at
// all. By the time it propagates the session has already been cleared; the
// call is never retried automatically.
var ErrAuthRequired = errors.New("authentication required")

// FieldError is a single violated validation rule.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// ValidationError collects every violated rule of a draft so the user sees
// them all at once rather than fixing one at a time. It never crosses the
// system boundary.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) HasErrors() bool { return len(e.Fields) > 0 }

// OrNil returns the error itself when rules were violated, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// AsValidation unwraps err into a *ValidationError when it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// CollaboratorError wraps a failed call to an external collaborator (OCR or
// persistence) for reasons other than auth: network, 5xx, malformed
// response. Message carries the backend's own message verbatim when the
// response body had one.
type CollaboratorError struct {
	Op      string // e.g. "create expense", "process receipt"
	Status  int    // HTTP status, 0 when the request never completed
	Message string
	Err     error
}

func (e *CollaboratorError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	}
	return e.Op + ": request failed"
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// UserMessage is what the UI shows: the backend message verbatim when
// available, a generic failure otherwise. Raw transport errors never reach
// the user.
func (e *CollaboratorError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s failed, please try again", e.Op)
}

// NotFoundError marks an operation on an entity the backend no longer has,
// typically a delete or edit racing a removal from elsewhere. Callers
// refresh their list to reconcile.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
