package action

import (
	"fmt"
	"net/http"

	"github.com/slimloans/hanami/errors"
)

var (
	ErrorInvalidParams    = errors.Error{Key: "ERROR.INVALID_PARAMS", Status: http.StatusBadRequest}
	ErrorInvalidCSRFToken = errors.Error{Key: "ERROR.INVALID_CSRF_TOKEN", Status: http.StatusForbidden}
	ErrorNotAcceptable    = errors.Error{Key: "ERROR.NOT_ACCEPTABLE", Status: http.StatusNotAcceptable}
	ErrorUnsupportedMedia = errors.Error{Key: "ERROR.UNSUPPORTED_MEDIA_TYPE", Status: http.StatusUnsupportedMediaType}
	ErrorMissingSession   = errors.Error{Key: "ERROR.MISSING_SESSION", Status: http.StatusInternalServerError}
	ErrorViewRender       = errors.Error{Key: "ERROR.VIEW_RENDER", Status: http.StatusInternalServerError}
)

// HaltError stops an action and responds with Status and Body
type HaltError struct {
	Status int
	Body   string
}

func (h *HaltError) Error() string {
	return fmt.Sprintf("halted with %d", h.Status)
}

// Halt is returned from handlers to stop with the given status, the body
// defaults to the status text
func Halt(status int, body ...string) error {
	h := &HaltError{Status: status, Body: http.StatusText(status)}
	if len(body) > 0 {
		h.Body = body[0]
	}
	return h
}
