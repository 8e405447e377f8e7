package slogx

import (
	"log/slog"
	"strings"
)

// Redacted replaces the value of any attribute that looks like a credential.
const Redacted = "[REDACTED]"

var sensitiveKeys = map[string]struct{}{
	"password":       {},
	"secret":         {},
	"token":          {},
	"authorization":  {},
	"cookie":         {},
	"code":           {},
	"otp":            {},
	"encryption_key": {},
}

var sensitiveSuffixes = []string{"_password", "_secret", "_token"}

// IsSensitive reports whether an attribute key names secret material. Token
// fingerprints ("token_fp") are safe and deliberately not matched.
func IsSensitive(key string) bool {
	key = strings.ToLower(key)
	if _, ok := sensitiveKeys[key]; ok {
		return true
	}
	for _, s := range sensitiveSuffixes {
		if strings.HasSuffix(key, s) {
			return true
		}
	}
	return false
}

// Redact is a slog.HandlerOptions.ReplaceAttr func that masks sensitive
// attributes, including ones nested in groups.
func Redact(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		return a
	}
	if IsSensitive(a.Key) {
		return slog.String(a.Key, Redacted)
	}
	return a
}
