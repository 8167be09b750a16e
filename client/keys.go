package client

import (
	"errors"
	"fmt"
	"strings"
)

// Providers accepted by the key manager.
var Providers = []string{"gemini", "openai", "anthropic"}

// MinKeyLength is the shortest key accepted after trimming.
const MinKeyLength = 10

var (
	ErrProviderRequired = errors.New("provider is required")
	ErrKeyRequired      = errors.New("api key is required")
	ErrKeyTooShort      = fmt.Errorf("api key is too short (min %d characters)", MinKeyLength)
)

// ValidateAPIKey checks a key form before it is sent.
func ValidateAPIKey(provider, key string) error {
	if provider == "" {
		return ErrProviderRequired
	}
	known := false
	for _, p := range Providers {
		if p == provider {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown provider %q (want one of %s)", provider, strings.Join(Providers, ", "))
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrKeyRequired
	}
	if len(key) < MinKeyLength {
		return ErrKeyTooShort
	}
	return nil
}

// Masked shows the first and last four characters of the key.
func (k APIKey) Masked() string {
	return MaskKey(k.Key)
}

// MaskKey hides all but the first and last four characters. Keys of eight
// characters or fewer are fully hidden.
func MaskKey(key string) string {
	r := []rune(key)
	if len(r) <= 8 {
		return strings.Repeat("•", len(r))
	}
	return string(r[:4]) + "…" + string(r[len(r)-4:])
}
