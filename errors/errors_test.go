package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	t.Run("it should return nil for nil errors", func(t *testing.T) {
		assert.Nil(t, Wrap(ErrorGeneric, nil))
		assert.Nil(t, WrapWithStatus(ErrorGeneric, nil, 500))
	})

	t.Run("it should keep the key status and caller", func(t *testing.T) {
		err := WrapNotFound(fmt.Errorf("book 1 missing"))

		ae, ok := err.(Error)
		assert.True(t, ok)
		assert.Equal(t, "ERROR.RECORD_NOT_FOUND", ae.Key)
		assert.Equal(t, http.StatusNotFound, ae.Status)
		assert.Equal(t, "book 1 missing", ae.Error())
		assert.Contains(t, ae.Caller, "errors_test.go")
	})

	t.Run("it should match with errors.Is by key", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", ErrorFrozen.Errorf("setting %s", "root"))

		assert.True(t, stderrors.Is(err, ErrorFrozen))
		assert.False(t, stderrors.Is(err, ErrorFatal))
	})

	t.Run("it should unwrap to the underlying cause", func(t *testing.T) {
		cause := fmt.Errorf("boom")
		err := WrapGeneric(cause)

		assert.True(t, stderrors.Is(err, cause))
	})
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, 0, StatusOf(nil))
	assert.Equal(t, 0, StatusOf(fmt.Errorf("plain")))
	assert.Equal(t, 422, StatusOf(WrapUnprocessable(fmt.Errorf("bad"))))
	assert.Equal(t, 403, StatusOf(fmt.Errorf("wrapped: %w", WrapForbidden(fmt.Errorf("no")))))
}

func TestSetData(t *testing.T) {
	err := SetData(WrapInvalidFields(fmt.Errorf("invalid")), "title", "is missing")

	assert.Equal(t, "is missing", Unwrap(err).Data["title"])
	assert.Equal(t, "ERROR.UNKNOWN", Unwrap(fmt.Errorf("x")).Key)
}
