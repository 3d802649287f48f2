package subscription

import (
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/tier"
)

// TierInfo is the derived view of an organization's tier state.
type TierInfo struct {
	OrgID         string     `json:"org_id"`
	Tier          tier.Tier  `json:"tier"`
	IsTrial       bool       `json:"is_trial"`
	TierExpiresAt *time.Time `json:"tier_expires_at,omitempty"`
	DaysRemaining int        `json:"days_remaining"`
	ChangedAt     time.Time  `json:"changed_at"`
	ChangeReason  string     `json:"change_reason,omitempty"`
}

// ListOptions filter the organization listing.
type ListOptions struct {
	// Tier restricts results to a single tier when non-empty.
	Tier tier.Tier
	// IncludeExpired keeps organizations whose trial has lapsed in the
	// result. Otherwise lapsed-trial organizations are skipped.
	IncludeExpired bool
	// Limit caps the number of results; zero means no cap.
	Limit int64
}

// OrgInfo is one row of the organization listing.
type OrgInfo struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Tier          tier.Tier  `json:"tier"`
	TierExpiresAt *time.Time `json:"tier_expires_at,omitempty"`
	IsTrial       bool       `json:"is_trial"`
	IsExpired     bool       `json:"is_expired"`
	IsDemo        bool       `json:"is_demo"`
	CreatedAt     time.Time  `json:"created_at"`
}

// SweepResult reports a trial-expiry sweep run.
type SweepResult struct {
	Scanned    int `json:"scanned"`
	Downgraded int `json:"downgraded"`
	Failed     int `json:"failed"`
}

// RepairResult reports a limits-snapshot consistency sweep run.
type RepairResult struct {
	Scanned  int `json:"scanned"`
	Repaired int `json:"repaired"`
	Failed   int `json:"failed"`
}
