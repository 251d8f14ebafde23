package contract

import "fmt"

// Structured error codes. The set is closed: downstream consumers route on
// these values, so new codes are a contract change.
const (
	CodeSchemaValidation = "SCHEMA_VALIDATION_ERROR"
	CodeUnknownEvent     = "UNKNOWN_EVENT"
	CodeUnknownError     = "UNKNOWN_ERROR"
)

// StructuredError is the machine-routable error shape carried by normalization
// results and dead-letter envelopes. It crosses service boundaries unmodified;
// HTTP layers translate it to status codes without touching code or details.
type StructuredError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// SchemaError builds a SCHEMA_VALIDATION_ERROR naming the missing or invalid
// fields. The missing list preserves field-declaration order.
func SchemaError(message string, missing []string) *StructuredError {
	err := &StructuredError{
		Code:    CodeSchemaValidation,
		Message: message,
	}
	if len(missing) > 0 {
		err.Details = map[string]interface{}{"missing": missing}
	}
	return err
}

// UnknownEventError builds an UNKNOWN_EVENT error echoing the rejected name.
// Unrecognized names are never classified as schema errors, even when the
// envelope is otherwise well-formed.
func UnknownEventError(eventName string) *StructuredError {
	return &StructuredError{
		Code:    CodeUnknownEvent,
		Message: fmt.Sprintf("unrecognized eventName: %s", eventName),
		Details: map[string]interface{}{"eventName": eventName},
	}
}
