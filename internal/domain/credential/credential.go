// Package credential models the single provider API credential that
// gates application usability.
package credential

import (
	"errors"
	"strings"
)

// Prefix is the expected key prefix of the provider (Groq issues keys
// starting with gsk_).
const Prefix = "gsk_"

// Credential is an opaque bearer token for the chat-completion provider.
type Credential string

var (
	ErrEmpty  = errors.New("credential must not be empty")
	ErrFormat = errors.New("credential must start with " + Prefix)
)

// Validate checks the static format only. Real validity is discovered
// lazily on the first provider request returning 401.
func (c Credential) Validate() error {
	trimmed := strings.TrimSpace(string(c))
	if trimmed == "" {
		return ErrEmpty
	}
	if !strings.HasPrefix(trimmed, Prefix) {
		return ErrFormat
	}
	return nil
}

// String returns the raw token.
func (c Credential) String() string {
	return string(c)
}

// Masked returns a redacted form safe for logs.
func (c Credential) Masked() string {
	s := string(c)
	if len(s) <= 8 {
		return "****"
	}
	return s[:8] + "..."
}
