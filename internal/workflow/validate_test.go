package workflow

import (
	"testing"

	"tripspend/internal/core"
)

func validDraft() core.Draft {
	return core.Draft{
		TripName: "Berlin",
		Type:     "Meals",
		Date:     "2024-04-01",
		Vendor:   "Cafe Einstein",
		Location: "Berlin",
		Cost:     "18.20",
	}
}

func fieldsOf(err error) map[string]string {
	got := map[string]string{}
	if ve, ok := core.AsValidation(err); ok {
		for _, f := range ve.Fields {
			got[f.Field] = f.Message
		}
	}
	return got
}

func TestValidateDraftOK(t *testing.T) {
	if err := ValidateDraft(validDraft()); err != nil {
		t.Fatalf("valid draft rejected: %v", err)
	}
}

func TestValidateDraftTripNameRequiredOnlyForNew(t *testing.T) {
	d := validDraft()
	d.TripName = ""
	if _, ok := fieldsOf(ValidateDraft(d))["tripName"]; !ok {
		t.Error("new draft without trip name should report tripName violation")
	}

	// A draft with an identifier edits an existing expense; trip name is
	// not required regardless of its value.
	d.ID = "42"
	if _, ok := fieldsOf(ValidateDraft(d))["tripName"]; ok {
		t.Error("existing draft should not report tripName violation")
	}
}

func TestValidateDraftDates(t *testing.T) {
	cases := []struct {
		date string
		msg  string
	}{
		{"", "is required"},
		{"2024-4-01", "must be in YYYY-MM-DD format"},
		{"01-04-2024", "must be in YYYY-MM-DD format"},
		{"2024/04/01", "must be in YYYY-MM-DD format"},
		{"20240401", "must be in YYYY-MM-DD format"},
		{"2024-04-01x", "must be in YYYY-MM-DD format"},
		{"2024-04-01", ""},
	}
	for _, tc := range cases {
		d := validDraft()
		d.Date = tc.date
		msg, violated := fieldsOf(ValidateDraft(d))["date"]
		if tc.msg == "" {
			if violated {
				t.Errorf("%q: unexpected date violation %q", tc.date, msg)
			}
		} else if msg != tc.msg {
			t.Errorf("%q: got %q, want %q", tc.date, msg, tc.msg)
		}
	}
}

func TestValidateDraftCosts(t *testing.T) {
	cases := []struct {
		cost string
		ok   bool
	}{
		{"18.20", true},
		{"1", true},
		{"0.01", true},
		{"", false},
		{"0", false},
		{"-5", false},
		{"abc", false},
		{"12abc", false},
		{"1.2.3", false},
	}
	for _, tc := range cases {
		d := validDraft()
		d.Cost = tc.cost
		_, violated := fieldsOf(ValidateDraft(d))["cost"]
		if tc.ok && violated {
			t.Errorf("%q: unexpected cost violation", tc.cost)
		}
		if !tc.ok && !violated {
			t.Errorf("%q: expected cost violation", tc.cost)
		}
	}
}

func TestValidateDraftReportsAllViolationsTogether(t *testing.T) {
	err := ValidateDraft(core.Draft{})
	ve, ok := core.AsValidation(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	// tripName, type, date, vendor, location, cost: one per rule, not
	// fail-fast on the first.
	if len(ve.Fields) != 6 {
		t.Fatalf("got %d violations, want 6: %v", len(ve.Fields), ve)
	}
}

func TestValidateDraftRequiredFields(t *testing.T) {
	for _, field := range []string{"type", "vendor", "location"} {
		d := validDraft()
		switch field {
		case "type":
			d.Type = "  "
		case "vendor":
			d.Vendor = ""
		case "location":
			d.Location = ""
		}
		if _, violated := fieldsOf(ValidateDraft(d))[field]; !violated {
			t.Errorf("expected %s violation", field)
		}
	}
}
