package logging

// Standardized attribute keys. Use these instead of ad-hoc strings so log
// consumers can rely on stable field names.
const (
	FieldComponent = "component"
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
	FieldImpact    = "impact"
	FieldItemID    = "item_id"
	FieldItemType  = "item_type"
	FieldStage     = "stage"
	FieldRequestID = "request_id"
	FieldStatus    = "status"
	FieldLang      = "lang"
)
