package config

import (
	"encoding/json"
	"strings"
)

const redacted = "[REDACTED]"

// Secret holds key material. Every printing path redacts it; use Reveal to
// get the value.
type Secret string

func NewSecret(value string) Secret {
	return Secret(strings.TrimSpace(value))
}

func (s Secret) Reveal() string { return string(s) }

func (s Secret) IsEmpty() bool { return s == "" }

func (s Secret) String() string {
	if s.IsEmpty() {
		return ""
	}
	return redacted
}

func (s Secret) GoString() string { return s.String() }

func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
