package org

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/store"
	"github.com/dmitrymomot/tenantkit/pkg/tier"
)

// Service provisions and tears down tenants.
type Service interface {
	// Bootstrap creates an organization, its RateLimits snapshot and links
	// the owner user to it. Re-invoking for an owner that already belongs
	// to an organization returns the existing identity and writes nothing.
	Bootstrap(ctx context.Context, params BootstrapParams) (*BootstrapResult, error)

	// Status returns a read-only projection of the organization for display.
	Status(ctx context.Context, orgID string) (*Status, error)

	// Delete removes the organization and cascades across ChildCollections,
	// removes the RateLimits snapshot and unlinks member users.
	Delete(ctx context.Context, orgID string) error
}

// BootstrapParams are the inputs to tenant creation.
type BootstrapParams struct {
	OrgID       string
	OrgName     string
	OwnerUserID string
	OwnerEmail  string
	Tier        tier.Tier
}

// BootstrapResult reports the organization the owner ended up in. Created
// is false when the call was an idempotent no-op.
type BootstrapResult struct {
	OrgID   string
	Tier    tier.Tier
	Created bool
}

// Status is a display projection of an organization and its quota state.
type Status struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	Tier          tier.Tier               `json:"tier"`
	TierExpiresAt *time.Time              `json:"tier_expires_at,omitempty"`
	IsDemo        bool                    `json:"is_demo"`
	Counts        map[tier.Resource]int64 `json:"counts"`
	Limits        tier.Limits             `json:"limits"`
	MemberCount   int                     `json:"member_count"`
	CreatedAt     time.Time               `json:"created_at"`
}

// Option configures the bootstrap service.
type Option func(*service)

// WithTable overrides the built-in tier limits table.
func WithTable(t tier.Table) Option {
	return func(s *service) {
		if t != nil {
			s.table = t
		}
	}
}

// WithLogger sets the structured logger used for warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

type service struct {
	store store.Store
	table tier.Table
	log   *slog.Logger
	now   func() time.Time
}

// NewService creates the bootstrap service. Panics on nil store to fail
// fast during initialization.
func NewService(st store.Store, opts ...Option) Service {
	if st == nil {
		panic("org: store is required")
	}
	s := &service{
		store: st,
		table: tier.Defaults(),
		log:   slog.Default(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bootstrap performs three sequential writes: organization, rate limits
// snapshot, owner user link. There is no cross-document transaction, so two
// concurrent bootstrap calls for the same owner can still race between the
// user read and the user update and create two organizations. That window
// is accepted and documented rather than closed.
func (s *service) Bootstrap(ctx context.Context, params BootstrapParams) (*BootstrapResult, error) {
	if params.OrgID == "" || params.OrgName == "" || params.OwnerUserID == "" || params.OwnerEmail == "" {
		return nil, ErrInvalidParams
	}

	t := params.Tier
	if !t.Valid() {
		s.log.WarnContext(ctx, "unknown tier on bootstrap, falling back to free",
			slog.String("tier", string(params.Tier)),
			slog.String("org_id", params.OrgID))
		t = tier.Free
	}

	// Idempotency check: an owner that already belongs to an organization
	// gets the existing identity back.
	var owner User
	ownerExists := true
	if err := s.store.Get(ctx, CollectionUsers, params.OwnerUserID, &owner); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, errors.Join(ErrBootstrapFailed, err)
		}
		ownerExists = false
	}
	if ownerExists && owner.OrganizationID != "" {
		var existing Organization
		if err := s.store.Get(ctx, CollectionOrganizations, owner.OrganizationID, &existing); err != nil {
			return nil, errors.Join(ErrBootstrapFailed, err)
		}
		return &BootstrapResult{OrgID: existing.ID, Tier: existing.Tier, Created: false}, nil
	}

	now := s.now()

	counts := make(map[tier.Resource]int64, len(tier.Resources))
	for _, res := range tier.Resources {
		counts[res] = 0
	}

	var expiresAt *time.Time
	if days := tier.SignupTrialDays(t); days > 0 {
		exp := now.AddDate(0, 0, days)
		expiresAt = &exp
	}

	organization := Organization{
		ID:               params.OrgID,
		Name:             params.OrgName,
		Tier:             t,
		TierExpiresAt:    expiresAt,
		TierChangedAt:    now,
		TierChangeReason: "bootstrap",
		Counts:           counts,
		Members: []Member{{
			UserID:   params.OwnerUserID,
			Email:    params.OwnerEmail,
			Role:     RoleOwner,
			JoinedAt: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, CollectionOrganizations, organization); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrOrgAlreadyExists
		}
		return nil, errors.Join(ErrBootstrapFailed, err)
	}

	snapshot := RateLimits{
		ID:        params.OrgID,
		Limits:    s.table.LimitsFor(t),
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, CollectionRateLimits, snapshot); err != nil && !errors.Is(err, store.ErrAlreadyExists) {
		return nil, errors.Join(ErrBootstrapFailed, err)
	}

	if ownerExists {
		err := s.store.Update(ctx, CollectionUsers, params.OwnerUserID, map[string]any{
			"organization_id": params.OrgID,
			"role":            RoleOwner,
			"permissions":     DefaultOwnerPermissions,
			"updated_at":      now,
		})
		if err != nil {
			return nil, errors.Join(ErrBootstrapFailed, err)
		}
	} else {
		user := User{
			ID:             params.OwnerUserID,
			Email:          params.OwnerEmail,
			OrganizationID: params.OrgID,
			Role:           RoleOwner,
			Permissions:    DefaultOwnerPermissions,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.store.Create(ctx, CollectionUsers, user); err != nil {
			return nil, errors.Join(ErrBootstrapFailed, err)
		}
	}

	return &BootstrapResult{OrgID: params.OrgID, Tier: t, Created: true}, nil
}

func (s *service) Status(ctx context.Context, orgID string) (*Status, error) {
	var organization Organization
	if err := s.store.Get(ctx, CollectionOrganizations, orgID, &organization); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOrgNotFound
		}
		return nil, err
	}

	return &Status{
		ID:            organization.ID,
		Name:          organization.Name,
		Tier:          organization.Tier,
		TierExpiresAt: organization.TierExpiresAt,
		IsDemo:        organization.IsDemo,
		Counts:        organization.Counts,
		Limits:        s.table.LimitsFor(organization.Tier),
		MemberCount:   len(organization.Members),
		CreatedAt:     organization.CreatedAt,
	}, nil
}

func (s *service) Delete(ctx context.Context, orgID string) error {
	var organization Organization
	if err := s.store.Get(ctx, CollectionOrganizations, orgID, &organization); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrOrgNotFound
		}
		return errors.Join(ErrDeleteFailed, err)
	}

	scope := map[string]any{"organization_id": orgID}
	for _, collection := range ChildCollections {
		if _, err := s.store.DeleteMany(ctx, collection, scope); err != nil {
			return errors.Join(ErrDeleteFailed, err)
		}
	}

	if err := s.store.Delete(ctx, CollectionRateLimits, orgID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return errors.Join(ErrDeleteFailed, err)
	}

	// Unlink members instead of deleting their accounts; the accounts may
	// be re-bootstrapped into a new organization later.
	var users []User
	if err := s.store.Query(ctx, CollectionUsers, store.Query{Eq: scope}, &users); err != nil {
		return errors.Join(ErrDeleteFailed, err)
	}
	now := s.now()
	for _, u := range users {
		err := s.store.Update(ctx, CollectionUsers, u.ID, map[string]any{
			"organization_id": "",
			"role":            "",
			"permissions":     []string{},
			"updated_at":      now,
		})
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return errors.Join(ErrDeleteFailed, err)
		}
	}

	if err := s.store.Delete(ctx, CollectionOrganizations, orgID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return errors.Join(ErrDeleteFailed, err)
	}
	return nil
}
