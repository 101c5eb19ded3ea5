package otp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := Generate()
		require.NoError(t, err)
		require.Len(t, code, CodeLength)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "code %q contains non-digit", code)
		}
		seen[code] = struct{}{}
	}
	// 200 draws from a space of 10000 should not collapse to a handful of values.
	assert.Greater(t, len(seen), 50)
}

func TestExpired(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 59, 0, time.UTC)

	tests := []struct {
		name    string
		ttl     time.Duration
		elapsed time.Duration
		want    bool
	}{
		{"well within ttl", 10 * time.Minute, 4 * time.Minute, false},
		{"exactly at ttl", 10 * time.Minute, 10 * time.Minute, false},
		{"one second past ttl", 10 * time.Minute, 10*time.Minute + time.Second, true},
		{"one minute one second with one minute ttl", time.Minute, time.Minute + time.Second, true},
		{"eleven minutes with ten minute ttl", 10 * time.Minute, 11 * time.Minute, true},
		{"zero elapsed", 5 * time.Minute, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Expired(issued, tt.ttl, issued.Add(tt.elapsed))
			assert.Equal(t, tt.want, got)
		})
	}
}
