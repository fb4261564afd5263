// Package errors provides the structured error type shared by every filestore package.
//
// A PlatformError carries an error code, a retry classification, a human-readable
// message, optional context metadata and an optional cause. It stays compatible with
// the standard library (errors.Is, errors.As, errors.Unwrap) and additionally maps its
// codes onto the io/fs sentinels, so callers holding plain Go code can keep writing
//
//	if errors.Is(err, fs.ErrNotExist) { ... }
//
// while filestore-aware callers can switch on codes:
//
//	switch errors.GetCode(err) {
//	case errors.CodeUnsupported:
//	    // backend lacks the capability and no fallback exists
//	case errors.CodeInvalidPath:
//	    // the normalizer rejected the input
//	}
//
// # Context
//
// Storage errors name the failing path, the operation and, when relevant, the
// capability and provider:
//
//	err := errors.New(errors.CodeUnsupported, "stat not supported")
//	err = errors.WithContextMap(err, map[string]interface{}{
//	    "op":         "stat",
//	    "path":       "reports/q1.xlsx",
//	    "capability": "stat",
//	    "provider":   "minio",
//	})
//
// Context survives wrapping and is included in JSON output. Never put secret values
// in messages or context.
//
// # Classification
//
// Network, timeout and availability failures are retryable; everything a caller
// can only fix by changing its input (missing paths, kind mismatches, unsupported
// capabilities, bad configuration) is permanent. IsRetryable reports the decision.
package errors
