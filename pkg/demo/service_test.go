package demo_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/demo"
	"github.com/dmitrymomot/tenantkit/pkg/org"
	"github.com/dmitrymomot/tenantkit/pkg/store"
	"github.com/dmitrymomot/tenantkit/pkg/tier"
)

func mutableClock(start time.Time) (func() time.Time, func(time.Time)) {
	current := start
	return func() time.Time { return current }, func(t time.Time) { current = t }
}

func countDocs(t *testing.T, st store.Store, collection, orgID string) int {
	t.Helper()
	var docs []map[string]any
	require.NoError(t, st.Query(context.Background(), collection, store.Query{
		Eq: map[string]any{"organization_id": orgID},
	}, &docs))
	return len(docs)
}

func TestCreateSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	start := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	st := store.NewMemory()
	clock, _ := mutableClock(start)
	svc := demo.NewService(st,
		demo.WithClock(clock),
		demo.WithLogger(slog.New(slog.DiscardHandler)))

	sess, err := svc.CreateSession(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sess.OrgID, "demo-"))
	assert.True(t, strings.HasPrefix(sess.UserID, "demo-"))
	assert.NotEmpty(t, sess.OrgName)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, start.Add(demo.DefaultTTL), sess.ExpiresAt)
	assert.Equal(t, demo.DefaultRedirectPath, sess.RedirectURL)

	var o org.Organization
	require.NoError(t, st.Get(ctx, org.CollectionOrganizations, sess.OrgID, &o))
	assert.True(t, o.IsDemo)
	assert.Equal(t, tier.Starter, o.Tier)
	assert.Nil(t, o.TierExpiresAt, "the tier is permanent, the tenant expires")
	require.NotNil(t, o.ExpiresAt)
	assert.Equal(t, sess.ExpiresAt, o.ExpiresAt.UTC())
	assert.Len(t, o.Members, 4)
	assert.Equal(t, org.RoleOwner, o.Members[0].Role)

	// Counters match the seeded documents.
	assert.Equal(t, int64(3), o.Counts[tier.ResourceAssets])
	assert.Equal(t, int64(4), o.Counts[tier.ResourceUsers])
	assert.Equal(t, int64(2), o.Counts[tier.ResourcePMRules])
	assert.Equal(t, int64(3), o.Counts[tier.ResourceWorkOrders])
	assert.Equal(t, 3, countDocs(t, st, org.CollectionAssets, sess.OrgID))
	assert.Equal(t, 2, countDocs(t, st, org.CollectionPMRules, sess.OrgID))
	assert.Equal(t, 3, countDocs(t, st, org.CollectionWorkOrders, sess.OrgID))
	assert.Equal(t, 3, countDocs(t, st, org.CollectionParts, sess.OrgID))

	var rl org.RateLimits
	require.NoError(t, st.Get(ctx, org.CollectionRateLimits, sess.OrgID, &rl))
	assert.Equal(t, int64(100), rl.Limits[tier.ResourceAssets])

	var u org.User
	require.NoError(t, st.Get(ctx, org.CollectionUsers, sess.UserID, &u))
	assert.True(t, u.IsDemo)
	assert.Equal(t, sess.OrgID, u.OrganizationID)
	assert.Equal(t, sess.Token, u.SessionToken)

	// Tokens are unique across sessions.
	sess2, err := svc.CreateSession(ctx, "203.0.113.8")
	require.NoError(t, err)
	assert.NotEqual(t, sess.Token, sess2.Token)
	assert.NotEqual(t, sess.OrgID, sess2.OrgID)
}

func TestUserByToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	start := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	t.Run("valid session resolves to its user", func(t *testing.T) {
		t.Parallel()
		st := store.NewMemory()
		clock, _ := mutableClock(start)
		svc := demo.NewService(st, demo.WithClock(clock), demo.WithLogger(slog.New(slog.DiscardHandler)))

		sess, err := svc.CreateSession(ctx, "198.51.100.1")
		require.NoError(t, err)

		u, err := svc.UserByToken(ctx, sess.Token)
		require.NoError(t, err)
		assert.Equal(t, sess.UserID, u.ID)
		assert.Equal(t, sess.OrgID, u.OrganizationID)
	})

	t.Run("lapsed session expires lazily at lookup", func(t *testing.T) {
		t.Parallel()
		st := store.NewMemory()
		clock, advance := mutableClock(start)
		svc := demo.NewService(st, demo.WithClock(clock), demo.WithLogger(slog.New(slog.DiscardHandler)))

		sess, err := svc.CreateSession(ctx, "198.51.100.2")
		require.NoError(t, err)

		advance(start.Add(demo.DefaultTTL + time.Minute))
		_, err = svc.UserByToken(ctx, sess.Token)
		assert.ErrorIs(t, err, demo.ErrSessionExpired)
	})

	t.Run("unknown or empty token", func(t *testing.T) {
		t.Parallel()
		svc := demo.NewService(store.NewMemory(), demo.WithLogger(slog.New(slog.DiscardHandler)))

		_, err := svc.UserByToken(ctx, "no-such-token")
		assert.ErrorIs(t, err, demo.ErrSessionNotFound)
		_, err = svc.UserByToken(ctx, "")
		assert.ErrorIs(t, err, demo.ErrSessionNotFound)
	})

	t.Run("shortened ttl applies", func(t *testing.T) {
		t.Parallel()
		st := store.NewMemory()
		clock, advance := mutableClock(start)
		svc := demo.NewService(st,
			demo.WithClock(clock),
			demo.WithTTL(10*time.Minute),
			demo.WithLogger(slog.New(slog.DiscardHandler)))

		sess, err := svc.CreateSession(ctx, "198.51.100.3")
		require.NoError(t, err)
		assert.Equal(t, start.Add(10*time.Minute), sess.ExpiresAt)

		advance(start.Add(11 * time.Minute))
		_, err = svc.UserByToken(ctx, sess.Token)
		assert.ErrorIs(t, err, demo.ErrSessionExpired)
	})
}

func TestCleanupExpiredDemos(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	start := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	st := store.NewMemory()
	clock, advance := mutableClock(start)
	svc := demo.NewService(st, demo.WithClock(clock), demo.WithLogger(slog.New(slog.DiscardHandler)))

	expired, err := svc.CreateSession(ctx, "192.0.2.1")
	require.NoError(t, err)

	// Second tenant created later so it outlives the sweep.
	advance(start.Add(demo.DefaultTTL))
	alive, err := svc.CreateSession(ctx, "192.0.2.2")
	require.NoError(t, err)

	// A regular customer organization must never be touched by the sweep.
	require.NoError(t, st.Create(ctx, org.CollectionOrganizations, org.Organization{
		ID:        "real-org",
		Name:      "Real Customer",
		Tier:      tier.Professional,
		Counts:    map[tier.Resource]int64{},
		CreatedAt: start,
		UpdatedAt: start,
	}))

	advance(start.Add(demo.DefaultTTL + time.Minute))
	result, err := svc.CleanupExpiredDemos(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Organizations)
	assert.Equal(t, int64(1), result.Users)
	assert.Equal(t, 1, result.RateLimits)
	assert.Zero(t, result.Failed)
	assert.Equal(t, int64(3), result.Documents[org.CollectionAssets])
	assert.Equal(t, int64(2), result.Documents[org.CollectionPMRules])
	assert.Equal(t, int64(3), result.Documents[org.CollectionWorkOrders])
	assert.Equal(t, int64(3), result.Documents[org.CollectionParts])

	// Expired tenant is fully gone.
	var o org.Organization
	assert.ErrorIs(t, st.Get(ctx, org.CollectionOrganizations, expired.OrgID, &o), store.ErrNotFound)
	assert.ErrorIs(t, st.Get(ctx, org.CollectionUsers, expired.UserID, &o), store.ErrNotFound)
	assert.ErrorIs(t, st.Get(ctx, org.CollectionRateLimits, expired.OrgID, &o), store.ErrNotFound)
	assert.Zero(t, countDocs(t, st, org.CollectionAssets, expired.OrgID))

	// The live demo tenant and the real customer survive intact.
	require.NoError(t, st.Get(ctx, org.CollectionOrganizations, alive.OrgID, &o))
	assert.Equal(t, 3, countDocs(t, st, org.CollectionAssets, alive.OrgID))
	require.NoError(t, st.Get(ctx, org.CollectionOrganizations, "real-org", &o))

	// Sweeping again removes nothing new.
	result, err = svc.CleanupExpiredDemos(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Organizations)
}
