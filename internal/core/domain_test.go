package core

import (
	"encoding/json"
	"testing"
)

func TestIDUnmarshalNumberOrString(t *testing.T) {
	cases := []struct {
		in   string
		want ID
	}{
		{`"42"`, "42"},
		{`42`, "42"},
		{`null`, ""},
	}
	for _, tc := range cases {
		var id ID
		if err := json.Unmarshal([]byte(tc.in), &id); err != nil {
			t.Fatalf("%s: %v", tc.in, err)
		}
		if id != tc.want {
			t.Errorf("%s: got %q, want %q", tc.in, id, tc.want)
		}
	}
}

func TestExtractedFieldsEmpty(t *testing.T) {
	cases := []struct {
		name  string
		f     ExtractedFields
		empty bool
	}{
		{"all empty", ExtractedFields{}, true},
		{"only vendor", ExtractedFields{Vendor: "ACME"}, true},
		{"only comments", ExtractedFields{Comments: "x"}, true},
		{"only cost", ExtractedFields{Cost: "12.50"}, false},
		{"only date", ExtractedFields{Date: "2024-04-01"}, false},
		{"only type", ExtractedFields{Type: "Meals"}, false},
		{"blank cost", ExtractedFields{Cost: "  "}, true},
	}
	for _, tc := range cases {
		if got := tc.f.Empty(); got != tc.empty {
			t.Errorf("%s: Empty() = %v, want %v", tc.name, got, tc.empty)
		}
	}
}

func TestExtractedFieldsUnmarshalNumericCost(t *testing.T) {
	// OCR backends have returned the cost both as a string and as a bare
	// JSON number.
	var f ExtractedFields
	if err := json.Unmarshal([]byte(`{"cost": 12.5, "vendor": "ACME"}`), &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if f.Cost != "12.5" {
		t.Errorf("cost = %q, want %q", f.Cost, "12.5")
	}
	if f.Vendor != "ACME" {
		t.Errorf("vendor = %q", f.Vendor)
	}
}

func TestExpenseJSONDecode(t *testing.T) {
	raw := `{"id": 7, "tripName": "Berlin", "type": "Meals", "date": "2024-04-01",
		"vendor": "Cafe", "location": "Berlin", "cost": "18.20", "comments": ""}`
	var e Expense
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.ID != "7" {
		t.Errorf("id = %q, want 7", e.ID)
	}
	if e.Cost.Cents != 1820 {
		t.Errorf("cost cents = %d, want 1820", e.Cost.Cents)
	}
	if e.TripName != "Berlin" {
		t.Errorf("tripName = %q", e.TripName)
	}
}

func TestDraftIsNew(t *testing.T) {
	if !(Draft{}).IsNew() {
		t.Error("draft without ID should be new")
	}
	if (Draft{ID: "42"}).IsNew() {
		t.Error("draft with ID should not be new")
	}
}
