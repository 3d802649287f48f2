package tier

import (
	"errors"
	"fmt"
	"maps"
)

// Resource is a countable organization resource type.
type Resource string

const (
	ResourceAssets     Resource = "assets"
	ResourceUsers      Resource = "users"
	ResourcePMRules    Resource = "pm_rules"
	ResourceWorkOrders Resource = "work_orders"
)

// Resources lists every resource governed by the limits table.
var Resources = []Resource{ResourceAssets, ResourceUsers, ResourcePMRules, ResourceWorkOrders}

// Unlimited marks a resource with no enforced ceiling (-1).
const Unlimited int64 = -1

// Limits maps a resource type to its integer ceiling for one tier.
type Limits map[Resource]int64

// Table maps every tier to its resource limits. The table is the single
// source of truth for enforcement; the per-organization RateLimits document
// is a display snapshot derived from it.
type Table map[Tier]Limits

// defaults is the built-in limits table. Work orders are a per-month
// allowance; the other resources are absolute ceilings.
var defaults = Table{
	Free: {
		ResourceAssets:     10,
		ResourceUsers:      3,
		ResourcePMRules:    5,
		ResourceWorkOrders: 50,
	},
	Starter: {
		ResourceAssets:     100,
		ResourceUsers:      10,
		ResourcePMRules:    50,
		ResourceWorkOrders: 500,
	},
	Professional: {
		ResourceAssets:     1000,
		ResourceUsers:      50,
		ResourcePMRules:    500,
		ResourceWorkOrders: 5000,
	},
	Enterprise: {
		ResourceAssets:     Unlimited,
		ResourceUsers:      Unlimited,
		ResourcePMRules:    Unlimited,
		ResourceWorkOrders: Unlimited,
	},
}

// Defaults returns a deep copy of the built-in limits table.
func Defaults() Table {
	return defaults.Clone()
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for tier, limits := range t {
		out[tier] = maps.Clone(limits)
	}
	return out
}

// LimitsFor returns a copy of the limits for the given tier. Unknown tiers
// resolve to the Free limits so enforcement degrades to the strictest row.
func (t Table) LimitsFor(tier Tier) Limits {
	if limits, ok := t[tier]; ok {
		return maps.Clone(limits)
	}
	return maps.Clone(t[Free])
}

// Limit returns the ceiling for one resource on one tier. A resource
// missing from the row is treated as Unlimited (tracked, not enforced).
func (t Table) Limit(tier Tier, res Resource) int64 {
	limits, ok := t[tier]
	if !ok {
		limits = t[Free]
	}
	if limit, ok := limits[res]; ok {
		return limit
	}
	return Unlimited
}

// Validate checks the table for structural problems: every known tier must
// have a row, and no limit may be below -1.
func (t Table) Validate() error {
	for _, tier := range All {
		limits, ok := t[tier]
		if !ok {
			return errors.Join(ErrInvalidTable, fmt.Errorf("missing row for tier %q", tier))
		}
		for res, limit := range limits {
			if limit < Unlimited {
				return errors.Join(ErrInvalidTable,
					fmt.Errorf("tier %q resource %q has invalid limit %d", tier, res, limit))
			}
		}
	}
	return nil
}
