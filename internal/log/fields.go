package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldStage      = "stage"
	FieldGeneration = "generation"
	FieldExchangeID = "exchange_id"
	FieldSessionID  = "session_id"
	FieldEventID    = "event_id"
	FieldEventKind  = "event_kind"
	FieldCount      = "count"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentAPI        = "api"
	ComponentDashboard  = "dashboard"
	ComponentChat       = "chat"
	ComponentEvents     = "events"
	ComponentTUI        = "tui"
	ComponentTranscript = "transcript"
	ComponentImport     = "import"
)

// Operations defines standard operation names
const (
	OpCreate  = "create"
	OpRead    = "read"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpList    = "list"
	OpRefresh = "refresh"
	OpPublish = "publish"
	OpConsume = "consume"
	OpAsk     = "ask"
)
