package log

// Common field names for structured logging.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldURL       = "url"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldOperation = "operation"
	FieldError     = "error"

	FieldTripName  = "trip_name"
	FieldExpenseID = "expense_id"
	FieldCostCents = "cost_cents"
	FieldUsername  = "username"
	FieldFileName  = "file_name"
	FieldFileType  = "file_type"
	FieldState     = "state"
)

// Standard component names.
const (
	ComponentApp      = "app"
	ComponentAPI      = "api"
	ComponentSession  = "session"
	ComponentWorkflow = "workflow"
	ComponentStorage  = "storage"
	ComponentCLI      = "cli"
)
