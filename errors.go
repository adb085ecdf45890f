package hanami

import (
	"github.com/slimloans/hanami/errors"
)

var (
	ErrorSliceNotFound    = errors.Error{Key: "ERROR.SLICE_NOT_FOUND"}
	ErrorDuplicateSlice   = errors.Error{Key: "ERROR.DUPLICATE_SLICE"}
	ErrorInvalidSliceName = errors.Error{Key: "ERROR.INVALID_SLICE_NAME"}
	ErrorAutoRegister     = errors.Error{Key: "ERROR.AUTO_REGISTER"}
	ErrorSliceState       = errors.Error{Key: "ERROR.SLICE_STATE"}
	ErrorNoApplication    = errors.Error{Key: "ERROR.NO_APPLICATION"}
	ErrorUnknownFormat    = errors.Error{Key: "ERROR.UNKNOWN_FORMAT"}

	// ErrorExit stops a command without reporting an error
	ErrorExit = errors.Error{Key: "ERROR.EXIT"}
)
