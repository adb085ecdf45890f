package errors

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/slimloans/hanami/utils"
)

// Error struct holds the wrapped error
type Error struct {
	Key         string                 `json:"key"`
	Err         error                  `json:"-"`
	Status      int                    `json:"-"`
	Caller      string                 `json:"-"`
	ErrorString string                 `json:"error,omitempty"`
	Data        map[string]interface{} `json:"field_errors,omitempty"`
}

func (ae Error) Error() string {
	if ae.ErrorString == "" {
		return ae.Key
	}
	return ae.ErrorString
}

// Unwrap exposes the wrapped error to errors.Is / errors.As
func (ae Error) Unwrap() error {
	return ae.Err
}

// Is matches any Error carrying the same key
func (ae Error) Is(target error) bool {
	if t, ok := target.(Error); ok {
		return t.Key == ae.Key
	}
	return false
}

func (ae Error) ToLogFields() logrus.Fields {
	return logrus.Fields{
		"key":    ae.Key,
		"error":  ae.Err,
		"caller": ae.Caller,
	}
}

// NewError returns a new error resolving format and other stuff
func (ae Error) NewError(err error) Error {
	source := ""
	if e, ok := err.(Error); ok {
		source = e.Caller
	} else {
		source = utils.FileWithLineNum()
	}

	e := Error{Key: ae.Key, Err: err, Caller: source, Status: ae.Status}

	er := ae.Err
	if er == nil {
		er = err
	}

	e.ErrorString = er.Error()
	return e
}

// Errorf wraps a formatted message with the error key
func (ae Error) Errorf(format string, args ...interface{}) error {
	return ae.NewError(fmt.Errorf(format, args...))
}

func SetData(err error, key string, value interface{}) error {
	if err != nil {
		if ae, ok := err.(Error); ok {
			if ae.Data == nil {
				ae.Data = map[string]interface{}{}
			}
			ae.Data[key] = value
			return ae
		}
	}
	return err
}

// WrapWithStatus wraps a standard error with given status used when rendering
func WrapWithStatus(ae Error, err error, status int) error {
	if err == nil {
		return nil
	}

	if e, ok := err.(Error); ok {
		if e.Status == 0 {
			e.Status = status
		}
		return e
	}

	n := ae.NewError(err)
	n.Status = status
	return n
}

// Wrap wraps an error
func Wrap(ae Error, err error) error {
	if err == nil {
		return nil
	}

	return ae.NewError(err)
}

// StatusOf returns the http status carried by err, 0 when there is none
func StatusOf(err error) int {
	for err != nil {
		if ae, ok := err.(Error); ok && ae.Status != 0 {
			return ae.Status
		}

		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0
		}
		err = u.Unwrap()
	}
	return 0
}
