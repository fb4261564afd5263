package errors

import (
	stderrors "errors"
	"io/fs"
	"maps"
)

// PlatformError is the error type returned by every filestore package.
type PlatformError interface {
	error

	Code() ErrorCode
	Classification() ErrorClassification

	// Message is the text without the code prefix or the cause.
	Message() string

	// Context returns a copy of the attached fields, or nil when there are none.
	Context() map[string]interface{}

	Unwrap() error
}

type platformError struct {
	code  ErrorCode
	class ErrorClassification
	msg   string
	ctx   map[string]any
	cause error
}

// Error renders "[CODE] message", followed by ": cause" when wrapping.
func (e *platformError) Error() string {
	s := "[" + string(e.code) + "] " + e.msg
	if e.cause != nil {
		s += ": " + e.cause.Error()
	}
	return s
}

func (e *platformError) Code() ErrorCode                     { return e.code }
func (e *platformError) Classification() ErrorClassification { return e.class }
func (e *platformError) Message() string                     { return e.msg }
func (e *platformError) Context() map[string]interface{}     { return maps.Clone(e.ctx) }
func (e *platformError) Unwrap() error                       { return e.cause }

// Is matches the io/fs sentinels that correspond to the error's code.
func (e *platformError) Is(target error) bool {
	switch target {
	case fs.ErrNotExist:
		return e.code == CodeNotFound
	case fs.ErrExist:
		return e.code == CodeAlreadyExists
	case fs.ErrPermission:
		return e.code == CodePermission
	case stderrors.ErrUnsupported:
		return e.code == CodeUnsupported
	}
	return false
}

// outermost returns the first PlatformError in err's chain.
func outermost(err error) (PlatformError, bool) {
	var pe PlatformError
	ok := stderrors.As(err, &pe)
	return pe, ok
}

// derive copies the outermost PlatformError in err's chain so it can be
// amended. Errors without one become CodeUnknown wrappers.
func derive(err error) *platformError {
	pe, ok := outermost(err)
	if !ok {
		return &platformError{
			code:  CodeUnknown,
			class: ClassificationPermanent,
			msg:   err.Error(),
			cause: err,
		}
	}
	return &platformError{
		code:  pe.Code(),
		class: pe.Classification(),
		msg:   pe.Message(),
		ctx:   pe.Context(),
		cause: pe.Unwrap(),
	}
}
