package contract

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStructuredErrorError(t *testing.T) {
	err := &StructuredError{
		Code:    CodeSchemaValidation,
		Message: "missing required fields",
	}
	if got := err.Error(); got != "SCHEMA_VALIDATION_ERROR: missing required fields" {
		t.Errorf("Error() = %q", got)
	}
}

func TestSchemaError(t *testing.T) {
	err := SchemaError("missing required fields", []string{"actionName", "timeBegin"})

	if err.Code != CodeSchemaValidation {
		t.Errorf("Code = %q, want %q", err.Code, CodeSchemaValidation)
	}
	missing, ok := err.Details["missing"].([]string)
	if !ok {
		t.Fatalf("Details[missing] = %T, want []string", err.Details["missing"])
	}
	if len(missing) != 2 || missing[0] != "actionName" || missing[1] != "timeBegin" {
		t.Errorf("missing = %v, want field-declaration order preserved", missing)
	}
}

func TestSchemaErrorNoMissing(t *testing.T) {
	err := SchemaError("eventData must be an object", nil)
	if err.Details != nil {
		t.Errorf("Details = %v, want nil when no fields are missing", err.Details)
	}
}

func TestUnknownEventError(t *testing.T) {
	err := UnknownEventError("InstrumentTelemetrySnapshot")

	if err.Code != CodeUnknownEvent {
		t.Errorf("Code = %q, want %q", err.Code, CodeUnknownEvent)
	}
	if !strings.Contains(err.Message, "InstrumentTelemetrySnapshot") {
		t.Errorf("Message = %q, want rejected name echoed", err.Message)
	}
	if err.Details["eventName"] != "InstrumentTelemetrySnapshot" {
		t.Errorf("Details[eventName] = %v", err.Details["eventName"])
	}
}

func TestStructuredErrorOmitsEmptyDetails(t *testing.T) {
	raw, err := json.Marshal(&StructuredError{Code: CodeUnknownError, Message: "boom"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "details") {
		t.Errorf("expected details omitted, got %s", raw)
	}
}
