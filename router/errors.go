package router

import (
	"net/http"

	"github.com/slimloans/hanami/errors"
)

var (
	ErrorInvalidRoute   = errors.Error{Key: "ERROR.INVALID_ROUTE"}
	ErrorDuplicateRoute = errors.Error{Key: "ERROR.DUPLICATE_ROUTE"}
	ErrorDuplicateSlice = errors.Error{Key: "ERROR.DUPLICATE_SLICE_MOUNT"}
	ErrorMissingAction  = errors.Error{Key: "ERROR.MISSING_ACTION", Status: http.StatusInternalServerError}
	ErrorUnknownRoute   = errors.Error{Key: "ERROR.UNKNOWN_ROUTE"}
	ErrorMissingParam   = errors.Error{Key: "ERROR.MISSING_ROUTE_PARAM"}
	ErrorInvalidParam   = errors.Error{Key: "ERROR.INVALID_ROUTE_PARAM"}
)
