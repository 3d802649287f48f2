package subscription

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/org"
	"github.com/dmitrymomot/tenantkit/pkg/store"
	"github.com/dmitrymomot/tenantkit/pkg/tier"
)

// Service owns the tier state machine: flat tier reassignments plus the
// orthogonal trial expiry, and the periodic sweeps that reconcile
// time-based state.
type Service interface {
	// SetTier is the single authoritative tier mutation point. It writes
	// the tier fields on the organization and force-overwrites the
	// RateLimits snapshot. trialDays > 0 makes the assignment a trial;
	// zero makes it permanent. Unrecognized tier names fall back to free
	// with a logged warning.
	SetTier(ctx context.Context, orgID, tierName string, trialDays int, reason string) (*TierInfo, error)

	// ExtendTrial pushes the trial expiry additionalDays from max(now,
	// current expiry): extending a lapsed trial restarts the clock from
	// now instead of adding to a stale timestamp.
	ExtendTrial(ctx context.Context, orgID string, additionalDays int) (time.Time, error)

	// Info derives the trial view of an organization's tier state.
	Info(ctx context.Context, orgID string) (*TierInfo, error)

	// List enumerates organizations newest first with tier/expiry filters.
	List(ctx context.Context, opts ListOptions) ([]OrgInfo, error)

	// ProcessExpiredTrials downgrades every organization whose trial has
	// lapsed to the free tier. Idempotent; each organization is processed
	// independently so a crash mid-sweep leaves prior downgrades in place.
	ProcessExpiredTrials(ctx context.Context) (*SweepResult, error)

	// RepairLimits rewrites any RateLimits snapshot that has drifted from
	// the tier table, e.g. after a table change or a bypassed SetTier.
	RepairLimits(ctx context.Context) (*RepairResult, error)
}

// Option configures the subscription service.
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

// NewService creates the subscription service. Panics on nil store to fail
// fast during initialization.
func NewService(st store.Store, opts ...Option) Service {
	if st == nil {
		panic("subscription: store is required")
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

func (s *service) SetTier(ctx context.Context, orgID, tierName string, trialDays int, reason string) (*TierInfo, error) {
	if trialDays < 0 {
		return nil, ErrInvalidTrialDays
	}

	t, ok := tier.Parse(tierName)
	if !ok {
		s.log.WarnContext(ctx, "unknown tier name, falling back to free",
			slog.String("tier", tierName),
			slog.String("org_id", orgID))
	}

	var organization org.Organization
	if err := s.store.Get(ctx, org.CollectionOrganizations, orgID, &organization); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, org.ErrOrgNotFound
		}
		return nil, errors.Join(ErrTierChangeFailed, err)
	}

	now := s.now()
	var expiresAt *time.Time
	if trialDays > 0 {
		exp := now.AddDate(0, 0, trialDays)
		expiresAt = &exp
	}

	err := s.store.Update(ctx, org.CollectionOrganizations, orgID, map[string]any{
		"tier":               t,
		"tier_expires_at":    expiresAt,
		"tier_changed_at":    now,
		"tier_change_reason": reason,
		"updated_at":         now,
	})
	if err != nil {
		return nil, errors.Join(ErrTierChangeFailed, err)
	}

	if err := s.writeSnapshot(ctx, orgID, t, now); err != nil {
		return nil, err
	}

	return &TierInfo{
		OrgID:         orgID,
		Tier:          t,
		IsTrial:       expiresAt != nil,
		TierExpiresAt: expiresAt,
		DaysRemaining: daysRemaining(expiresAt, now),
		ChangedAt:     now,
		ChangeReason:  reason,
	}, nil
}

// writeSnapshot force-overwrites the RateLimits document for the tier,
// creating it if bootstrap never did.
func (s *service) writeSnapshot(ctx context.Context, orgID string, t tier.Tier, now time.Time) error {
	limits := s.table.LimitsFor(t)
	err := s.store.Update(ctx, org.CollectionRateLimits, orgID, map[string]any{
		"limits":     limits,
		"updated_at": now,
	})
	if errors.Is(err, store.ErrNotFound) {
		err = s.store.Create(ctx, org.CollectionRateLimits, org.RateLimits{
			ID:        orgID,
			Limits:    limits,
			UpdatedAt: now,
		})
	}
	if err != nil {
		return errors.Join(ErrTierChangeFailed, err)
	}
	return nil
}

func (s *service) ExtendTrial(ctx context.Context, orgID string, additionalDays int) (time.Time, error) {
	if additionalDays <= 0 {
		return time.Time{}, ErrInvalidTrialDays
	}

	var organization org.Organization
	if err := s.store.Get(ctx, org.CollectionOrganizations, orgID, &organization); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return time.Time{}, org.ErrOrgNotFound
		}
		return time.Time{}, errors.Join(ErrTierChangeFailed, err)
	}

	now := s.now()
	base := now
	if organization.TierExpiresAt != nil && organization.TierExpiresAt.After(now) {
		base = *organization.TierExpiresAt
	}
	newExpiry := base.AddDate(0, 0, additionalDays)

	err := s.store.Update(ctx, org.CollectionOrganizations, orgID, map[string]any{
		"tier_expires_at": newExpiry,
		"updated_at":      now,
	})
	if err != nil {
		return time.Time{}, errors.Join(ErrTierChangeFailed, err)
	}
	return newExpiry, nil
}

func (s *service) Info(ctx context.Context, orgID string) (*TierInfo, error) {
	var organization org.Organization
	if err := s.store.Get(ctx, org.CollectionOrganizations, orgID, &organization); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, org.ErrOrgNotFound
		}
		return nil, err
	}

	return &TierInfo{
		OrgID:         organization.ID,
		Tier:          organization.Tier,
		IsTrial:       organization.TierExpiresAt != nil,
		TierExpiresAt: organization.TierExpiresAt,
		DaysRemaining: daysRemaining(organization.TierExpiresAt, s.now()),
		ChangedAt:     organization.TierChangedAt,
		ChangeReason:  organization.TierChangeReason,
	}, nil
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]OrgInfo, error) {
	q := store.Query{
		Sort: &store.Sort{Field: "created_at", Desc: true},
	}
	if opts.Tier != "" {
		q.Eq = map[string]any{"tier": opts.Tier}
	}

	var orgs []org.Organization
	if err := s.store.Query(ctx, org.CollectionOrganizations, q, &orgs); err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]OrgInfo, 0, len(orgs))
	for _, o := range orgs {
		expired := o.TierExpired(now)
		if expired && !opts.IncludeExpired {
			continue
		}
		out = append(out, OrgInfo{
			ID:            o.ID,
			Name:          o.Name,
			Tier:          o.Tier,
			TierExpiresAt: o.TierExpiresAt,
			IsTrial:       o.TierExpiresAt != nil,
			IsExpired:     expired,
			IsDemo:        o.IsDemo,
			CreatedAt:     o.CreatedAt,
		})
		if opts.Limit > 0 && int64(len(out)) == opts.Limit {
			break
		}
	}
	return out, nil
}

func (s *service) ProcessExpiredTrials(ctx context.Context) (*SweepResult, error) {
	now := s.now()

	var expired []org.Organization
	err := s.store.Query(ctx, org.CollectionOrganizations, store.Query{
		Range: &store.Range{Field: "tier_expires_at", Op: store.OpLTE, Value: now},
	}, &expired)
	if err != nil {
		return nil, errors.Join(ErrSweepFailed, err)
	}

	result := &SweepResult{Scanned: len(expired)}
	for _, o := range expired {
		if o.Tier == tier.Free {
			continue
		}
		// Route through SetTier so the snapshot stays synchronized; a
		// failure on one organization must not stop the rest.
		if _, err := s.SetTier(ctx, o.ID, string(tier.Free), 0, "trial_expired"); err != nil {
			result.Failed++
			s.log.ErrorContext(ctx, "failed to downgrade expired trial",
				slog.String("org_id", o.ID),
				slog.Any("error", err))
			continue
		}
		result.Downgraded++
		s.log.InfoContext(ctx, "trial expired, downgraded to free",
			slog.String("org_id", o.ID),
			slog.String("from_tier", string(o.Tier)))
	}
	return result, nil
}

func (s *service) RepairLimits(ctx context.Context) (*RepairResult, error) {
	var orgs []org.Organization
	if err := s.store.Query(ctx, org.CollectionOrganizations, store.Query{}, &orgs); err != nil {
		return nil, errors.Join(ErrSweepFailed, err)
	}

	now := s.now()
	result := &RepairResult{Scanned: len(orgs)}
	for _, o := range orgs {
		t := o.Tier
		if !t.Valid() {
			t = tier.Free
		}
		expected := s.table.LimitsFor(t)

		var snapshot org.RateLimits
		err := s.store.Get(ctx, org.CollectionRateLimits, o.ID, &snapshot)
		if err == nil && maps.Equal(snapshot.Limits, expected) {
			continue
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			result.Failed++
			continue
		}

		if err := s.writeSnapshot(ctx, o.ID, t, now); err != nil {
			result.Failed++
			s.log.ErrorContext(ctx, "failed to repair limits snapshot",
				slog.String("org_id", o.ID),
				slog.Any("error", err))
			continue
		}
		result.Repaired++
		s.log.InfoContext(ctx, "repaired drifted limits snapshot",
			slog.String("org_id", o.ID),
			slog.String("tier", string(t)))
	}
	return result, nil
}

// daysRemaining rounds partial days half up, matching what users expect to
// see in a countdown. Lapsed or permanent assignments report zero.
func daysRemaining(expiresAt *time.Time, now time.Time) int {
	if expiresAt == nil {
		return 0
	}
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Hours()/24 + 0.5)
}
