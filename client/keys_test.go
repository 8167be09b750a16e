package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		key      string
		wantErr  error
	}{
		{"ok", "openai", "sk-1234567890", nil},
		{"missing provider", "", "sk-1234567890", ErrProviderRequired},
		{"blank key", "gemini", "   ", ErrKeyRequired},
		{"short after trim", "anthropic", "  123456789  ", ErrKeyTooShort},
		{"exactly ten", "gemini", "1234567890", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPIKey(tt.provider, tt.key)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateAPIKey_UnknownProvider(t *testing.T) {
	err := ValidateAPIKey("cohere", "1234567890")
	assert.ErrorContains(t, err, "unknown provider")
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "sk-1…wxyz", MaskKey("sk-1234567890wxyz"))
	assert.Equal(t, "••••••••", MaskKey("12345678"))
	assert.Equal(t, "", MaskKey(""))
}
