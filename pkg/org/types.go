package org

import (
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/tier"
)

// Collection names used by the tenancy core.
const (
	CollectionOrganizations = "organizations"
	CollectionUsers         = "users"
	CollectionRateLimits    = "rate_limits"
	CollectionAssets        = "assets"
	CollectionWorkOrders    = "work_orders"
	CollectionPMRules       = "pm_schedule_rules"
	CollectionParts         = "parts"
)

// ChildCollections is the fixed set of collections whose documents are
// scoped to an organization via an "organization_id" field. Cascading
// deletes (org teardown, demo cleanup) iterate exactly this list, so any
// new collection that stores organization_id must be added here or its
// documents will leak after the owning organization is removed.
var ChildCollections = []string{
	CollectionAssets,
	CollectionWorkOrders,
	CollectionPMRules,
	CollectionParts,
}

// RoleOwner is the role assigned to the user who bootstraps an organization.
const RoleOwner = "owner"

// DefaultOwnerPermissions are granted to the owner at bootstrap. The
// authorization layer interpreting them is outside this module.
var DefaultOwnerPermissions = []string{
	"org:manage",
	"assets:write",
	"work_orders:write",
	"pm_rules:write",
	"members:invite",
}

// Organization is the root tenant document. The counts map is mutated only
// through the store's atomic increment (quota service); the tier fields are
// mutated only through the subscription service so the RateLimits snapshot
// stays in sync.
type Organization struct {
	ID               string                  `bson:"_id" json:"id"`
	Name             string                  `bson:"name" json:"name"`
	Tier             tier.Tier               `bson:"tier" json:"tier"`
	TierExpiresAt    *time.Time              `bson:"tier_expires_at,omitempty" json:"tier_expires_at,omitempty"`
	TierChangedAt    time.Time               `bson:"tier_changed_at" json:"tier_changed_at"`
	TierChangeReason string                  `bson:"tier_change_reason,omitempty" json:"tier_change_reason,omitempty"`
	Counts           map[tier.Resource]int64 `bson:"counts" json:"counts"`
	IsDemo           bool                    `bson:"is_demo" json:"is_demo"`
	ExpiresAt        *time.Time              `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	Members          []Member                `bson:"members" json:"members"`
	CreatedAt        time.Time               `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time               `bson:"updated_at" json:"updated_at"`
}

// TierExpired reports whether the organization's tier assignment has a
// lapsed expiry at the given time. Permanent assignments never expire.
func (o *Organization) TierExpired(now time.Time) bool {
	return o.TierExpiresAt != nil && !o.TierExpiresAt.After(now)
}

// Member is one entry in the organization's ordered member list.
type Member struct {
	UserID   string    `bson:"user_id" json:"user_id"`
	Email    string    `bson:"email" json:"email"`
	Role     string    `bson:"role" json:"role"`
	Name     string    `bson:"name,omitempty" json:"name,omitempty"`
	JoinedAt time.Time `bson:"joined_at" json:"joined_at"`
}

// User is the account document. OrganizationID stays empty until bootstrap
// links the user to a tenant. The session fields are set only for demo
// users.
type User struct {
	ID               string     `bson:"_id" json:"uid"`
	Email            string     `bson:"email" json:"email"`
	Name             string     `bson:"name,omitempty" json:"name,omitempty"`
	OrganizationID   string     `bson:"organization_id,omitempty" json:"organization_id,omitempty"`
	Role             string     `bson:"role,omitempty" json:"role,omitempty"`
	Permissions      []string   `bson:"permissions,omitempty" json:"permissions,omitempty"`
	IsDemo           bool       `bson:"is_demo" json:"is_demo"`
	SessionToken     string     `bson:"session_token,omitempty" json:"-"`
	SessionExpiresAt *time.Time `bson:"session_expires_at,omitempty" json:"session_expires_at,omitempty"`
	CreatedAt        time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `bson:"updated_at" json:"updated_at"`
}

// SessionValidAt is the single expiry predicate for demo sessions. Every
// path that accepts a session token must go through it.
func (u *User) SessionValidAt(now time.Time) bool {
	return u.SessionToken != "" && u.SessionExpiresAt != nil && now.Before(*u.SessionExpiresAt)
}

// RateLimits is the per-organization snapshot of the tier limits table,
// keyed 1:1 by organization id. It is rewritten on every tier change and
// exists for display and external consumers; enforcement reads the tier
// table directly.
type RateLimits struct {
	ID        string      `bson:"_id" json:"organization_id"`
	Limits    tier.Limits `bson:"limits" json:"limits"`
	UpdatedAt time.Time   `bson:"updated_at" json:"updated_at"`
}
