package redact

import (
	"regexp"
	"strings"
	"sync/atomic"
)

var enabled atomic.Bool

var (
	hexKeyRe = regexp.MustCompile(`\b(?:0x)?[0-9a-fA-F]{64}\b`)
	uuidRe   = regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`)
	cgKeyRe  = regexp.MustCompile(`\bCG-[A-Za-z0-9]{8,}\b`)
)

// SetEnabled toggles credential redaction in log output.
func SetEnabled(v bool) {
	enabled.Store(v)
}

// Enabled returns true when redaction is active.
func Enabled() bool {
	return enabled.Load()
}

// Text redacts API keys and wallet secrets when enabled.
// Response payloads are never passed through here, only log fields.
func Text(in string) string {
	if !enabled.Load() || strings.TrimSpace(in) == "" {
		return in
	}
	out := hexKeyRe.ReplaceAllString(in, "[REDACTED_KEY]")
	out = uuidRe.ReplaceAllString(out, "[REDACTED_KEY]")
	out = cgKeyRe.ReplaceAllString(out, "[REDACTED_KEY]")
	return out
}

// Secret masks a credential for logging, keeping a short identifying
// prefix and suffix. Empty input stays empty.
func Secret(s string) string {
	if !enabled.Load() || s == "" {
		return s
	}
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + "..." + s[len(s)-4:]
}
