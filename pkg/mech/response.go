// Package mech implements the dispatch core shared by every toolkit:
// a static operation registry, a dispatcher that normalizes outcomes
// into one response shape, and a retry controller that rotates
// credentials on rate limits.
package mech

import "github.com/mechkit/mechkit/pkg/keychain"

// Args is the caller-supplied argument map for one invocation. The
// core reads it, never mutates it.
type Args map[string]any

// String extracts a string argument. ok is false when the key is
// absent or holds a non-string value.
func (a Args) String(key string) (string, bool) {
	v, ok := a[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return s, true
}

// Map extracts a nested map argument.
func (a Args) Map(key string) (map[string]any, bool) {
	v, ok := a[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return m, true
}

// Response is the fixed shape every invocation resolves to. Prompt
// stays a pointer because nil and "" mean different things: nil marks
// an unused slot, "" marks a soft failure, and a non-empty value is
// the echoed operation name on toolkits that opt in.
type Response struct {
	Text        string         `json:"text"`
	Prompt      *string        `json:"prompt"`
	Transaction map[string]any `json:"transaction"`
	Cost        map[string]any `json:"cost"`
	Keys        keychain.Pool  `json:"-"`
}

// UsageError reports a caller mistake inside a handler, such as a
// missing wallet or a malformed payload field. The dispatcher folds it
// into a plain-text response instead of failing the invocation.
type UsageError struct {
	Msg string
}

func (e UsageError) Error() string { return e.Msg }
