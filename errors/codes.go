package errors

// ErrorCode names a failure condition. Codes are strings so they read well in
// logs and JSON.
type ErrorCode string

// Path errors.
const (
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeAlreadyExists     ErrorCode = "ALREADY_EXISTS"
	CodeIsADirectory      ErrorCode = "IS_A_DIRECTORY"
	CodeNotADirectory     ErrorCode = "NOT_A_DIRECTORY"
	CodeDirectoryNotEmpty ErrorCode = "DIRECTORY_NOT_EMPTY"
	// CodeInvalidPath is returned when the normalizer rejects an input.
	CodeInvalidPath ErrorCode = "INVALID_PATH"
	CodePermission  ErrorCode = "PERMISSION_DENIED"
)

// Capability errors.
const (
	// CodeUnsupported means the bound provider lacks the capability and the
	// store has no fallback for it.
	CodeUnsupported ErrorCode = "UNSUPPORTED"
	// CodePartialRename means a copy-then-delete rename stopped after some
	// entries had already been copied or deleted.
	CodePartialRename ErrorCode = "PARTIAL_RENAME"
)

// Runtime errors.
const (
	CodePluginLoadFailure ErrorCode = "PLUGIN_LOAD_FAILURE"
	CodeSecretNotProvided ErrorCode = "SECRET_NOT_PROVIDED"
	CodeInvalidConfig     ErrorCode = "INVALID_CONFIGURATION"
	// CodeInvalidInput covers malformed data handed to a codec or command.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Infrastructure errors. These are retryable by default.
const (
	CodeNetwork     ErrorCode = "NETWORK_ERROR"
	CodeTimeout     ErrorCode = "TIMEOUT"
	CodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

const (
	CodeInternal ErrorCode = "INTERNAL_ERROR"
	// CodeUnknown is reported for errors that carry no code at all.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// ErrorClassification tells callers whether repeating the operation can help.
type ErrorClassification string

const (
	ClassificationRetryable ErrorClassification = "RETRYABLE"
	ClassificationPermanent ErrorClassification = "PERMANENT"
)

// IsRetryable reports c == ClassificationRetryable.
func (c ErrorClassification) IsRetryable() bool {
	return c == ClassificationRetryable
}

// classification is the default for errors created with code.
func (code ErrorCode) classification() ErrorClassification {
	switch code {
	case CodeNetwork, CodeTimeout, CodeUnavailable:
		return ClassificationRetryable
	default:
		return ClassificationPermanent
	}
}
