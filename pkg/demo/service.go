package demo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantkit/pkg/org"
	"github.com/dmitrymomot/tenantkit/pkg/randomname"
	"github.com/dmitrymomot/tenantkit/pkg/store"
	"github.com/dmitrymomot/tenantkit/pkg/tier"
)

// DefaultTTL is how long a demo tenant lives before the cleanup sweep
// reclaims it.
const DefaultTTL = 2 * time.Hour

// DefaultRedirectPath is where a fresh demo session lands.
const DefaultRedirectPath = "/dashboard"

// Service manages ephemeral, fully-seeded demo tenants.
type Service interface {
	// CreateSession provisions a demo organization on the starter tier,
	// seeds representative domain records and returns the session
	// descriptor the caller redirects with.
	CreateSession(ctx context.Context, clientIP string) (*Session, error)

	// UserByToken resolves a demo session token to its user. Expiry is
	// checked lazily at lookup time; lapsed sessions return
	// ErrSessionExpired.
	UserByToken(ctx context.Context, token string) (*org.User, error)

	// CleanupExpiredDemos removes every expired demo tenant together with
	// its seeded child documents, rate limits and demo users. Demo tenants
	// that have not expired yet are left fully intact.
	CleanupExpiredDemos(ctx context.Context) (*CleanupResult, error)
}

// Session describes a freshly created demo tenant.
type Session struct {
	OrgID       string    `json:"org_id"`
	OrgName     string    `json:"org_name"`
	UserID      string    `json:"user_id"`
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
	RedirectURL string    `json:"redirect_url"`
}

// CleanupResult aggregates what a cleanup sweep removed.
type CleanupResult struct {
	Organizations int              `json:"organizations"`
	Users         int64            `json:"users"`
	RateLimits    int              `json:"rate_limits"`
	Documents     map[string]int64 `json:"documents"` // per child collection
	Failed        int              `json:"failed"`
}

// Option configures the demo service.
type Option func(*service)

// WithTTL overrides the demo tenant lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithRedirectPath overrides where new demo sessions are pointed.
func WithRedirectPath(path string) Option {
	return func(s *service) {
		if path != "" {
			s.redirectPath = path
		}
	}
}

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
	store        store.Store
	table        tier.Table
	log          *slog.Logger
	now          func() time.Time
	ttl          time.Duration
	redirectPath string
}

// NewService creates the demo lifecycle service. Panics on nil store to
// fail fast during initialization.
func NewService(st store.Store, opts ...Option) Service {
	if st == nil {
		panic("demo: store is required")
	}
	s := &service{
		store:        st,
		table:        tier.Defaults(),
		log:          slog.Default(),
		now:          func() time.Time { return time.Now().UTC() },
		ttl:          DefaultTTL,
		redirectPath: DefaultRedirectPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateSession(ctx context.Context, clientIP string) (*Session, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, errors.Join(ErrCreateFailed, err)
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	orgID := "demo-" + uuid.NewString()
	userID := "demo-" + uuid.NewString()
	orgName := randomname.Company()

	// Starter tier so the demo shows paid-tier features without being
	// unlimited. The tier itself is permanent; the whole tenant expires.
	members := make([]org.Member, 0, 1+len(fakeTeamMembers))
	members = append(members, org.Member{
		UserID:   userID,
		Email:    demoEmail(userID),
		Role:     org.RoleOwner,
		Name:     "Demo User",
		JoinedAt: now,
	})
	for _, m := range fakeTeamMembers {
		members = append(members, org.Member{
			UserID:   "demo-" + uuid.NewString(),
			Email:    m.Email,
			Role:     m.Role,
			Name:     m.Name,
			JoinedAt: now,
		})
	}

	organization := org.Organization{
		ID:               orgID,
		Name:             orgName,
		Tier:             tier.Starter,
		TierChangedAt:    now,
		TierChangeReason: "demo_session",
		Counts:           seedCounts(),
		IsDemo:           true,
		ExpiresAt:        &expiresAt,
		Members:          members,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.Create(ctx, org.CollectionOrganizations, organization); err != nil {
		return nil, errors.Join(ErrCreateFailed, err)
	}

	snapshot := org.RateLimits{
		ID:        orgID,
		Limits:    s.table.LimitsFor(tier.Starter),
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, org.CollectionRateLimits, snapshot); err != nil {
		return nil, errors.Join(ErrCreateFailed, err)
	}

	user := org.User{
		ID:               userID,
		Email:            demoEmail(userID),
		Name:             "Demo User",
		OrganizationID:   orgID,
		Role:             org.RoleOwner,
		Permissions:      org.DefaultOwnerPermissions,
		IsDemo:           true,
		SessionToken:     token,
		SessionExpiresAt: &expiresAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.Create(ctx, org.CollectionUsers, user); err != nil {
		return nil, errors.Join(ErrCreateFailed, err)
	}

	if err := s.seedRecords(ctx, orgID, now); err != nil {
		return nil, errors.Join(ErrCreateFailed, err)
	}

	s.log.InfoContext(ctx, "demo session created",
		slog.String("org_id", orgID),
		slog.String("client_ip", clientIP),
		slog.Time("expires_at", expiresAt))

	return &Session{
		OrgID:       orgID,
		OrgName:     orgName,
		UserID:      userID,
		Token:       token,
		ExpiresAt:   expiresAt,
		RedirectURL: s.redirectPath,
	}, nil
}

func (s *service) UserByToken(ctx context.Context, token string) (*org.User, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	var users []org.User
	err := s.store.Query(ctx, org.CollectionUsers, store.Query{
		Eq:    map[string]any{"session_token": token, "is_demo": true},
		Limit: 1,
	}, &users)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrSessionNotFound
	}

	user := users[0]
	if !user.SessionValidAt(s.now()) {
		return nil, ErrSessionExpired
	}
	return &user, nil
}

func (s *service) CleanupExpiredDemos(ctx context.Context) (*CleanupResult, error) {
	now := s.now()

	var expired []org.Organization
	err := s.store.Query(ctx, org.CollectionOrganizations, store.Query{
		Eq:    map[string]any{"is_demo": true},
		Range: &store.Range{Field: "expires_at", Op: store.OpLTE, Value: now},
	}, &expired)
	if err != nil {
		return nil, err
	}

	result := &CleanupResult{Documents: make(map[string]int64)}
	for _, o := range expired {
		if err := s.teardown(ctx, o.ID, result); err != nil {
			result.Failed++
			s.log.ErrorContext(ctx, "failed to tear down expired demo",
				slog.String("org_id", o.ID),
				slog.Any("error", err))
			continue
		}
		result.Organizations++
		s.log.InfoContext(ctx, "expired demo removed", slog.String("org_id", o.ID))
	}
	return result, nil
}

// teardown removes one demo tenant: child documents first, then the rate
// limits snapshot, the demo users and finally the organization itself, so
// a partial failure leaves the organization discoverable by the next sweep.
func (s *service) teardown(ctx context.Context, orgID string, result *CleanupResult) error {
	scope := map[string]any{"organization_id": orgID}

	for _, collection := range org.ChildCollections {
		removed, err := s.store.DeleteMany(ctx, collection, scope)
		if err != nil {
			return err
		}
		result.Documents[collection] += removed
	}

	if err := s.store.Delete(ctx, org.CollectionRateLimits, orgID); err == nil {
		result.RateLimits++
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	removed, err := s.store.DeleteMany(ctx, org.CollectionUsers, map[string]any{
		"organization_id": orgID,
		"is_demo":         true,
	})
	if err != nil {
		return err
	}
	result.Users += removed

	if err := s.store.Delete(ctx, org.CollectionOrganizations, orgID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}
