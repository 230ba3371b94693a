package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBlacklistedTokenExpiry(t *testing.T) {
	tests := []struct {
		name    string
		token   BlacklistedToken
		expired bool
	}{
		{
			name: "revoked access token still within its signed lifetime",
			token: BlacklistedToken{
				JTI:           "jti-logout-1",
				BlacklistedAt: time.Now(),
				ExpiresAt:     time.Now().Add(15 * time.Minute),
			},
			expired: false,
		},
		{
			name: "revoked access token past its signed lifetime",
			token: BlacklistedToken{
				JTI:           "jti-logout-2",
				BlacklistedAt: time.Now().Add(-time.Hour),
				ExpiresAt:     time.Now().Add(-45 * time.Minute),
			},
			expired: true,
		},
	}

	for i := range tests {
		tt := &tests[i]
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expired, tt.token.IsExpired())
			// Entries are prunable exactly when the token would have died on
			// its own.
			assert.Equal(t, tt.expired, tt.token.CanBeDeleted())
		})
	}
}
