package errors

import (
	"fmt"
	"maps"
)

// New returns an error with code's default classification.
//
//	err := errors.New(errors.CodeInvalidPath, "path escapes the store root")
func New(code ErrorCode, message string) PlatformError {
	return &platformError{code: code, class: code.classification(), msg: message}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) PlatformError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap places err under code and message. It returns nil for a nil err.
//
//	if _, err := client.StatObject(ctx, bucket, key, opts); err != nil {
//	    return errors.Wrap(err, errors.CodeNetwork, "stat object")
//	}
func Wrap(err error, code ErrorCode, message string) PlatformError {
	return WrapWithContext(err, code, message, nil)
}

// WrapWithContext is Wrap plus a copy of ctx. When err already carries a
// classification it is kept, so a timeout stays retryable after rewrapping.
func WrapWithContext(err error, code ErrorCode, message string, ctx map[string]interface{}) PlatformError {
	if err == nil {
		return nil
	}
	class := code.classification()
	if pe, ok := outermost(err); ok {
		class = pe.Classification()
	}
	return &platformError{
		code:  code,
		class: class,
		msg:   message,
		ctx:   maps.Clone(ctx),
		cause: err,
	}
}

// WithContext sets one context field. See WithContextMap.
func WithContext(err error, key string, value interface{}) PlatformError {
	return WithContextMap(err, map[string]interface{}{key: value})
}

// WithContextMap merges ctx into the context of the outermost PlatformError in
// err's chain; keys in ctx win. Plain errors become CodeUnknown. Returns nil
// for a nil err.
//
//	err = errors.WithContextMap(err, map[string]interface{}{
//	    "op":       "rename",
//	    "path":     src.String(),
//	    "provider": p.Name(),
//	})
func WithContextMap(err error, ctx map[string]interface{}) PlatformError {
	if err == nil {
		return nil
	}
	e := derive(err)
	if e.ctx == nil {
		e.ctx = make(map[string]any, len(ctx))
	}
	maps.Copy(e.ctx, ctx)
	return e
}

// WithClassification replaces the classification. Returns nil for a nil err.
func WithClassification(err error, class ErrorClassification) PlatformError {
	if err == nil {
		return nil
	}
	e := derive(err)
	e.class = class
	return e
}
