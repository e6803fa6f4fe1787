package logging

import "log/slog"

// Common field names so the gateway's audit trail stays greppable.
const (
	FieldService  = "service"
	FieldUserID   = "user_id"
	FieldUsername = "username"
	FieldRole     = "role"
	FieldMethod   = "method"
	FieldPath     = "path"
	FieldStatus   = "status"
	FieldOutcome  = "outcome"
	FieldRoute    = "route"
	FieldError    = "error"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// UserID returns a slog attribute for the user ID.
func UserID(id string) slog.Attr {
	return slog.String(FieldUserID, id)
}

// Username returns a slog attribute for the username.
func Username(name string) slog.Attr {
	return slog.String(FieldUsername, name)
}

// Role returns a slog attribute for the user role.
func Role(role string) slog.Attr {
	return slog.String(FieldRole, role)
}

// Method returns a slog attribute for the HTTP method.
func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

// Path returns a slog attribute for the HTTP path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// Status returns a slog attribute for the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Outcome returns a slog attribute for the authentication outcome.
func Outcome(outcome string) slog.Attr {
	return slog.String(FieldOutcome, outcome)
}

// Route returns a slog attribute for the matched route prefix.
func Route(prefix string) slog.Attr {
	return slog.String(FieldRoute, prefix)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
