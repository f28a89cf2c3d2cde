package core

import (
	"bytes"
	"encoding/json"
	"strings"
)

type (
	// ID is a backend record identifier. The backend is inconsistent about
	// whether it serializes identifiers as JSON numbers or strings, so ID
	// accepts both and normalizes to a string.
	ID string

	// Trip groups expenses under a human-chosen, per-user unique name.
	// Expenses reference a trip by name, not by identifier: the backend uses
	// the name as the join key, including for list filtering, and the client
	// preserves that.
	Trip struct {
		ID          ID     `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		CreatedAt   string `json:"createdAt,omitempty"`
	}

	// Expense is a persisted expense record as the backend returns it.
	Expense struct {
		ID         ID     `json:"id,omitempty"`
		TripName   string `json:"tripName"`
		Type       string `json:"type"`
		Date       string `json:"date"` // YYYY-MM-DD
		Vendor     string `json:"vendor"`
		Location   string `json:"location"`
		Cost       Money  `json:"cost"`
		Comments   string `json:"comments,omitempty"`
		ReceiptURL string `json:"receiptUrl,omitempty"`
	}

	// Draft is the transient, not-yet-persisted projection of an Expense
	// under construction: every field is held exactly as the user typed it.
	// A draft with a non-empty ID edits an existing expense; otherwise
	// submitting it creates a new one. Drafts are never persisted on their
	// own.
	Draft struct {
		ID         ID
		TripName   string
		Type       string
		Date       string
		Vendor     string
		Location   string
		Cost       string
		Comments   string
		ReceiptURL string
	}

	// ReceiptFile is an uploaded receipt: the bytes plus enough metadata to
	// build a multipart part. ContentType may be empty; the workflow sniffs
	// it from the bytes before the file goes anywhere.
	ReceiptFile struct {
		Name        string
		ContentType string
		Data        []byte
	}

	// ExtractedFields is whatever subset of expense fields the OCR
	// collaborator managed to recognize on a receipt. Any field may be
	// absent. Trip name is never supplied by OCR.
	ExtractedFields struct {
		Type     string     `json:"type,omitempty"`
		Date     string     `json:"date,omitempty"`
		Vendor   string     `json:"vendor,omitempty"`
		Location string     `json:"location,omitempty"`
		Cost     JSONString `json:"cost,omitempty"`
		Comments string     `json:"comments,omitempty"`
	}
)

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// JSONString is a string that also tolerates a JSON number on the wire.
// Some OCR backends return the cost as a bare number rather than a string.
type JSONString string

func (s *JSONString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = JSONString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = JSONString(n.String())
	return nil
}

// IsNew reports whether submitting the draft creates a new expense rather
// than updating an existing one.
func (d Draft) IsNew() bool { return d.ID == "" }

// Empty reports whether the extraction produced no usable field. Type, date
// and cost are the fields that decide usability; vendor or comments alone do
// not make a draft worth pre-filling.
func (f ExtractedFields) Empty() bool {
	return strings.TrimSpace(f.Type) == "" &&
		strings.TrimSpace(f.Date) == "" &&
		strings.TrimSpace(string(f.Cost)) == ""
}
