package tier

import "strings"

// Tier is a named subscription level. Every organization carries exactly
// one tier; the tier bounds its countable resources via the limits table.
type Tier string

const (
	Free         Tier = "free"
	Starter      Tier = "starter"
	Professional Tier = "professional"
	Enterprise   Tier = "enterprise"
)

// All lists the known tiers in ascending order of capability.
var All = []Tier{Free, Starter, Professional, Enterprise}

// Parse resolves a tier name case-insensitively. The boolean reports
// whether the name was recognized; unrecognized names resolve to Free so
// callers can fall back safely (and log the fallback).
func Parse(name string) (Tier, bool) {
	switch Tier(strings.ToLower(strings.TrimSpace(name))) {
	case Free:
		return Free, true
	case Starter:
		return Starter, true
	case Professional:
		return Professional, true
	case Enterprise:
		return Enterprise, true
	}
	return Free, false
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	_, ok := Parse(string(t))
	return ok && Tier(strings.ToLower(string(t))) == t
}

// String implements fmt.Stringer.
func (t Tier) String() string { return string(t) }

// signupTrialDays is the trial window granted when a tier is assigned at
// organization bootstrap. Zero means a permanent assignment.
var signupTrialDays = map[Tier]int{
	Free:         0,
	Starter:      14,
	Professional: 14,
	Enterprise:   30,
}

// SignupTrialDays returns the trial length in days granted when the tier
// is assigned at bootstrap time. Zero means no trial (permanent tier).
func SignupTrialDays(t Tier) int {
	return signupTrialDays[t]
}
