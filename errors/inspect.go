package errors

import (
	stderrors "errors"
)

// Is is errors.Is from the standard library. PlatformErrors also match the
// io/fs sentinels, so Is(err, fs.ErrNotExist) holds for CodeNotFound.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As is errors.As from the standard library.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// GetCode returns the code of the outermost PlatformError in err's chain, or
// CodeUnknown.
func GetCode(err error) ErrorCode {
	if pe, ok := outermost(err); ok {
		return pe.Code()
	}
	return CodeUnknown
}

// HasCode reports whether any PlatformError in err's chain carries code.
// Unlike GetCode it looks past outer wrappers, so a PartialRename wrapping a
// NotFound answers true for both.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if pe, ok := err.(PlatformError); ok && pe.Code() == code {
			return true
		}
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				if HasCode(e, code) {
					return true
				}
			}
			return false
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// GetClassification returns the classification of the outermost
// PlatformError in err's chain. Anything else is permanent.
func GetClassification(err error) ErrorClassification {
	if pe, ok := outermost(err); ok {
		return pe.Classification()
	}
	return ClassificationPermanent
}

// IsRetryable reports whether err is classified retryable.
func IsRetryable(err error) bool {
	return GetClassification(err).IsRetryable()
}
