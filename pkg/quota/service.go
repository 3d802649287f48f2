package quota

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/tenantkit/pkg/org"
	"github.com/dmitrymomot/tenantkit/pkg/store"
	"github.com/dmitrymomot/tenantkit/pkg/tier"
)

// Service enforces per-organization resource ceilings using the atomic
// counter stored on the organization document.
type Service interface {
	// Reserve claims n slots of a resource. Returns *QuotaExceededError
	// without mutating counts when the ceiling would be crossed.
	Reserve(ctx context.Context, orgID string, res tier.Resource, n int64) error

	// Release returns up to n slots. The applied decrement is clamped so
	// the counter never goes negative.
	Release(ctx context.Context, orgID string, res tier.Resource, n int64) error

	// Check is a pure dry run: no mutation, full status back.
	Check(ctx context.Context, orgID string, res tier.Resource, n int64) (*Status, error)
}

// Status is the result of a dry-run quota check.
type Status struct {
	Allowed   bool      `json:"allowed"`
	Current   int64     `json:"current"`
	Limit     int64     `json:"limit"`
	Tier      tier.Tier `json:"tier"`
	Remaining int64     `json:"remaining"` // -1 when unlimited
}

// Option configures the quota service.
type Option func(*service)

// WithTable overrides the built-in tier limits table.
func WithTable(t tier.Table) Option {
	return func(s *service) {
		if t != nil {
			s.table = t
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithFailOpen controls what Reserve does when the store is unreachable or
// the organization record is missing. When enabled (the default) such
// failures are treated as permission granted, trading strictness for
// availability. Disable to surface ErrStoreUnavailable instead.
func WithFailOpen(enabled bool) Option {
	return func(s *service) {
		s.failOpen = enabled
	}
}

type service struct {
	store    store.Store
	table    tier.Table
	log      *slog.Logger
	failOpen bool
}

// NewService creates the quota service. Panics on nil store to fail fast
// during initialization.
func NewService(st store.Store, opts ...Option) Service {
	if st == nil {
		panic("quota: store is required")
	}
	s := &service{
		store:    st,
		table:    tier.Defaults(),
		log:      slog.Default(),
		failOpen: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reserve reads the current count, checks it against the tier ceiling and
// then applies an atomic increment. Two concurrent calls can both pass the
// check before either increment lands, so the ceiling can be overshot by at
// most the number of concurrent racers minus one. That window is an
// accepted tradeoff of the transactionless store, not a target to close.
func (s *service) Reserve(ctx context.Context, orgID string, res tier.Resource, n int64) error {
	if n <= 0 {
		return ErrInvalidAmount
	}

	var organization org.Organization
	if err := s.store.Get(ctx, org.CollectionOrganizations, orgID, &organization); err != nil {
		return s.failOpenOr(ctx, orgID, res, "read organization", err)
	}

	t := s.resolveTier(ctx, &organization)
	limit := s.table.Limit(t, res)
	current := organization.Counts[res]

	if limit != tier.Unlimited && current+n > limit {
		return &QuotaExceededError{Resource: res, Limit: limit, Current: current, Tier: t}
	}

	err := s.store.AtomicIncrement(ctx, org.CollectionOrganizations, orgID, countField(res), n)
	if err != nil {
		return s.failOpenOr(ctx, orgID, res, "increment counter", err)
	}
	return nil
}

func (s *service) Release(ctx context.Context, orgID string, res tier.Resource, n int64) error {
	if n <= 0 {
		return ErrInvalidAmount
	}

	var organization org.Organization
	if err := s.store.Get(ctx, org.CollectionOrganizations, orgID, &organization); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return org.ErrOrgNotFound
		}
		return errors.Join(ErrStoreUnavailable, err)
	}

	// Clamp so the counter never goes below zero even if callers release
	// more than they reserved.
	delta := min(n, organization.Counts[res])
	if delta <= 0 {
		return nil
	}
	if err := s.store.AtomicIncrement(ctx, org.CollectionOrganizations, orgID, countField(res), -delta); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (s *service) Check(ctx context.Context, orgID string, res tier.Resource, n int64) (*Status, error) {
	if n <= 0 {
		return nil, ErrInvalidAmount
	}

	var organization org.Organization
	if err := s.store.Get(ctx, org.CollectionOrganizations, orgID, &organization); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, org.ErrOrgNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	t := s.resolveTier(ctx, &organization)
	limit := s.table.Limit(t, res)
	current := organization.Counts[res]

	status := &Status{
		Current: current,
		Limit:   limit,
		Tier:    t,
	}
	if limit == tier.Unlimited {
		status.Allowed = true
		status.Remaining = tier.Unlimited
		return status, nil
	}
	status.Allowed = current+n <= limit
	status.Remaining = max(0, limit-current)
	return status, nil
}

// failOpenOr implements the availability-over-strictness policy for
// Reserve: infrastructure failures grant the reservation when fail-open is
// enabled, and surface as errors otherwise.
func (s *service) failOpenOr(ctx context.Context, orgID string, res tier.Resource, op string, err error) error {
	if !s.failOpen {
		if errors.Is(err, store.ErrNotFound) {
			return org.ErrOrgNotFound
		}
		return errors.Join(ErrStoreUnavailable, err)
	}
	s.log.WarnContext(ctx, "quota check failed open",
		slog.String("org_id", orgID),
		slog.String("resource", string(res)),
		slog.String("op", op),
		slog.Any("error", err))
	return nil
}

func (s *service) resolveTier(ctx context.Context, organization *org.Organization) tier.Tier {
	if organization.Tier.Valid() {
		return organization.Tier
	}
	s.log.WarnContext(ctx, "unknown tier on organization, treating as free",
		slog.String("org_id", organization.ID),
		slog.String("tier", string(organization.Tier)))
	return tier.Free
}

func countField(res tier.Resource) string {
	return "counts." + string(res)
}
