package logging

import (
	"log/slog"
	"strings"
)

// Keys containing any of these fragments are fully redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"signing_key",
	"api_key",
	"authorization",
	"bearer",
}

// RedactedValue replaces sensitive attribute values.
const RedactedValue = "***REDACTED***"

// jwtPrefix is the base64url encoding of `{"`, the start of every JSON JOSE header.
const jwtPrefix = "eyJ"

func redact(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redact(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	if a.Value.Kind() != slog.KindString {
		return a
	}

	val := a.Value.String()
	if val == "" {
		return a
	}
	key := strings.ToLower(a.Key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(key, pattern) {
			return slog.String(a.Key, RedactedValue)
		}
	}
	if looksLikeJWT(val) {
		return slog.String(a.Key, maskToken(val))
	}
	return a
}

func looksLikeJWT(s string) bool {
	return strings.HasPrefix(s, jwtPrefix) && strings.Count(s, ".") == 2
}

// maskToken keeps the first and last three characters so operators can correlate
// log lines without being able to replay the token.
func maskToken(s string) string {
	if len(s) <= 12 {
		return "***"
	}
	return s[:3] + "..." + s[len(s)-3:]
}
