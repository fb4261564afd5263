package secrets

import "log/slog"

// Redacted holds a secret that must not appear in logs or error messages.
type Redacted string

// String masks the value.
func (r Redacted) String() string {
	if r == "" {
		return ""
	}
	return "[REDACTED]"
}

// LogValue implements slog.LogValuer.
func (r Redacted) LogValue() slog.Value {
	return slog.StringValue(r.String())
}

// Reveal returns the underlying value.
func (r Redacted) Reveal() string {
	return string(r)
}
