package tier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/tenantkit/pkg/tier"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want tier.Tier
		ok   bool
	}{
		{"free", "free", tier.Free, true},
		{"starter", "starter", tier.Starter, true},
		{"professional", "professional", tier.Professional, true},
		{"enterprise", "enterprise", tier.Enterprise, true},
		{"mixed case", "Enterprise", tier.Enterprise, true},
		{"whitespace", "  starter ", tier.Starter, true},
		{"unknown falls back to free", "platinum", tier.Free, false},
		{"empty falls back to free", "", tier.Free, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := tier.Parse(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestTierValid(t *testing.T) {
	t.Parallel()

	for _, known := range tier.All {
		assert.True(t, known.Valid(), string(known))
	}
	assert.False(t, tier.Tier("platinum").Valid())
	assert.False(t, tier.Tier("FREE").Valid())
	assert.False(t, tier.Tier("").Valid())
}

func TestSignupTrialDays(t *testing.T) {
	t.Parallel()

	assert.Zero(t, tier.SignupTrialDays(tier.Free))
	assert.Positive(t, tier.SignupTrialDays(tier.Starter))
	assert.Positive(t, tier.SignupTrialDays(tier.Professional))
	assert.Positive(t, tier.SignupTrialDays(tier.Enterprise))
	assert.Zero(t, tier.SignupTrialDays(tier.Tier("unknown")))
}
