package workflow

import (
	"regexp"
	"strings"

	"tripspend/internal/core"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateDraft checks every rule and reports all violations together; it
// never stops at the first one and never mutates anything.
//
// Trip name is only required when the draft creates a new expense: editing
// an existing one keeps its stored trip, so the rule is asymmetric on
// purpose.
func ValidateDraft(d core.Draft) error {
	ve := &core.ValidationError{}

	if d.IsNew() && strings.TrimSpace(d.TripName) == "" {
		ve.Add("tripName", "is required")
	}
	if strings.TrimSpace(d.Type) == "" {
		ve.Add("type", "is required")
	}

	date := strings.TrimSpace(d.Date)
	switch {
	case date == "":
		ve.Add("date", "is required")
	case !datePattern.MatchString(date):
		ve.Add("date", "must be in YYYY-MM-DD format")
	}

	if strings.TrimSpace(d.Vendor) == "" {
		ve.Add("vendor", "is required")
	}
	if strings.TrimSpace(d.Location) == "" {
		ve.Add("location", "is required")
	}

	cost := strings.TrimSpace(d.Cost)
	switch {
	case cost == "":
		ve.Add("cost", "is required")
	default:
		if _, err := core.ParseDecimalToCents(cost); err != nil {
			ve.Add("cost", "must be a positive number")
		}
	}

	return ve.OrNil()
}
