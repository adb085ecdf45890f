package errors

import (
	stderrors "errors"
	"net/http"
)

var (
	// ErrorGeneric generic error key no status
	ErrorGeneric = Error{Key: "ERROR.UNKNOWN"}

	// ErrorNotAuthorized - returns 401
	ErrorNotAuthorized = Error{Key: "ERROR.NOT_LOGGED_IN", Status: http.StatusUnauthorized}

	ErrorForbidden = Error{Key: "ERROR.FORBIDDEN", Status: http.StatusForbidden}

	ErrorFatal = Error{Key: "ERROR.FATAL"}

	ErrorMissConfigured = Error{Key: "ERROR.MISSCONFIGUIRED", Status: http.StatusInternalServerError}

	// ErrorFrozen is returned when mutating finalized configuration or containers
	ErrorFrozen = Error{Key: "ERROR.FROZEN"}
)

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool { return stderrors.As(err, target) }

// Join wraps errs into one error, nil when every err is nil
func Join(errs ...error) error { return stderrors.Join(errs...) }
