package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration is a time.Duration that decodes from strings such as "15s",
// which is how durations appear in YAML files and environment variables.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	if parsed < 0 {
		return fmt.Errorf("duration cannot be negative: %s", text)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration().String()), nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Secret holds a credential such as the catalog API token. Every
// formatting and encoding path prints a placeholder; only Value exposes
// the raw string.
type Secret string

const redactedSecret = "[REDACTED]"

func (s Secret) masked() string {
	if s == "" {
		return ""
	}
	return redactedSecret
}

func (s Secret) String() string               { return s.masked() }
func (s Secret) GoString() string             { return "Secret(" + redactedSecret + ")" }
func (s Secret) MarshalText() ([]byte, error) { return []byte(s.masked()), nil }
func (s Secret) MarshalJSON() ([]byte, error) { return json.Marshal(s.masked()) }

// UnmarshalText accepts the raw value.
func (s *Secret) UnmarshalText(text []byte) error {
	*s = Secret(text)
	return nil
}

// Value returns the raw secret.
func (s Secret) Value() string { return string(s) }

// IsSet reports whether a value was configured.
func (s Secret) IsSet() bool { return s != "" }
