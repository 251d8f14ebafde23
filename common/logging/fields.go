package logging

import "log/slog"

// Common field names for consistent logging across services.
const (
	FieldService      = "service"
	FieldControllerID = "controller_id"
	FieldActivityID   = "activity_id"
	FieldActionName   = "action_name"
	FieldActivityName = "activity_name"
	FieldEventName    = "event_name"
	FieldEventType    = "event_type"
	FieldSubject      = "subject"
	FieldErrorCode    = "error_code"
	FieldError        = "error"
	FieldDuration     = "duration_ms"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// ControllerID returns a slog attribute for the instrument controller ID.
func ControllerID(id string) slog.Attr {
	return slog.String(FieldControllerID, id)
}

// ActivityID returns a slog attribute for an activity ID.
func ActivityID(id string) slog.Attr {
	return slog.String(FieldActivityID, id)
}

// EventName returns a slog attribute for a raw event name.
func EventName(name string) slog.Attr {
	return slog.String(FieldEventName, name)
}

// EventType returns a slog attribute for a canonical event type.
func EventType(t string) slog.Attr {
	return slog.String(FieldEventType, t)
}

// Subject returns a slog attribute for a message bus subject.
func Subject(s string) slog.Attr {
	return slog.String(FieldSubject, s)
}

// Error returns a slog attribute for an error value.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(FieldError, "")
	}
	return slog.String(FieldError, err.Error())
}
