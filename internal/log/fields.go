package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldRuleID       = "rule_id"
	FieldCadence      = "cadence"
	FieldAnchorDate   = "anchor_date"
	FieldOccurrence   = "occurrence_date"
	FieldMaterialized = "materialized"

	FieldTransactionID = "transaction_id"
	FieldAmountCents   = "amount_cents"
	FieldAccount       = "account"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentCatchUp = "catchup"
	ComponentWorker  = "worker"
)

// Operations defines standard operation names
const (
	OpCreate      = "create"
	OpDelete      = "delete"
	OpList        = "list"
	OpCatchUp     = "catchup"
	OpProjection  = "projection"
	OpShutdown    = "shutdown"
	OpStartup     = "startup"
)
