package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJWTConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     JWTConfig
		wantErr string
	}{
		{"valid", JWTConfig{Secret: "0123456789abcdef", ExpirationHours: 24}, ""},
		{"missing secret", JWTConfig{ExpirationHours: 24}, "secret is required"},
		{"short secret", JWTConfig{Secret: "short", ExpirationHours: 24}, "at least 16 bytes"},
		{"zero expiration", JWTConfig{Secret: "0123456789abcdef"}, "at least 1 hour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestJWTConfig_Expiration(t *testing.T) {
	cfg := JWTConfig{ExpirationHours: 2}
	assert.Equal(t, 2*time.Hour, cfg.Expiration())
}
