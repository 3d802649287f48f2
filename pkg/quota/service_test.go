package quota_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/org"
	"github.com/dmitrymomot/tenantkit/pkg/quota"
	"github.com/dmitrymomot/tenantkit/pkg/store"
	"github.com/dmitrymomot/tenantkit/pkg/tier"
)

func seedOrg(t *testing.T, st store.Store, id string, tr tier.Tier, counts map[tier.Resource]int64) {
	t.Helper()
	if counts == nil {
		counts = map[tier.Resource]int64{}
	}
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.Create(context.Background(), org.CollectionOrganizations, org.Organization{
		ID:        id,
		Name:      "Org " + id,
		Tier:      tr,
		Counts:    counts,
		CreatedAt: now,
		UpdatedAt: now,
	}))
}

func orgCount(t *testing.T, st store.Store, id string, res tier.Resource) int64 {
	t.Helper()
	var o org.Organization
	require.NoError(t, st.Get(context.Background(), org.CollectionOrganizations, id, &o))
	return o.Counts[res]
}

// brokenStore simulates an unreachable document store.
type brokenStore struct {
	store.Store
	err error
}

func (b *brokenStore) Get(ctx context.Context, collection, id string, dest any) error {
	return b.err
}

func TestReserve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("free tier hits the assets ceiling at ten", func(t *testing.T) {
		t.Parallel()
		st := store.NewMemory()
		svc := quota.NewService(st)
		seedOrg(t, st, "org-free", tier.Free, nil)

		for i := range 10 {
			require.NoError(t, svc.Reserve(ctx, "org-free", tier.ResourceAssets, 1), "reserve %d", i+1)
		}
		assert.Equal(t, int64(10), orgCount(t, st, "org-free", tier.ResourceAssets))

		err := svc.Reserve(ctx, "org-free", tier.ResourceAssets, 1)
		qe, ok := quota.IsQuotaExceeded(err)
		require.True(t, ok, "expected QuotaExceededError, got %v", err)
		assert.Equal(t, tier.ResourceAssets, qe.Resource)
		assert.Equal(t, int64(10), qe.Limit)
		assert.Equal(t, int64(10), qe.Current)
		assert.Equal(t, tier.Free, qe.Tier)
		assert.Equal(t, "reached the assets limit (10/10) for the free tier", qe.Error())

		// Failed reservation leaves the counter untouched.
		assert.Equal(t, int64(10), orgCount(t, st, "org-free", tier.ResourceAssets))
	})

	t.Run("bulk increment that would cross the ceiling is rejected", func(t *testing.T) {
		t.Parallel()
		st := store.NewMemory()
		svc := quota.NewService(st)
		seedOrg(t, st, "org-bulk", tier.Free, map[tier.Resource]int64{tier.ResourceAssets: 8})

		err := svc.Reserve(ctx, "org-bulk", tier.ResourceAssets, 3)
		_, ok := quota.IsQuotaExceeded(err)
		assert.True(t, ok)
		assert.Equal(t, int64(8), orgCount(t, st, "org-bulk", tier.ResourceAssets))

		// Exactly filling the ceiling is allowed.
		require.NoError(t, svc.Reserve(ctx, "org-bulk", tier.ResourceAssets, 2))
		assert.Equal(t, int64(10), orgCount(t, st, "org-bulk", tier.ResourceAssets))
	})

	t.Run("unlimited resources are tracked but not enforced", func(t *testing.T) {
		t.Parallel()
		st := store.NewMemory()
		svc := quota.NewService(st)
		seedOrg(t, st, "org-ent", tier.Enterprise, nil)

		require.NoError(t, svc.Reserve(ctx, "org-ent", tier.ResourceAssets, 5000))
		assert.Equal(t, int64(5000), orgCount(t, st, "org-ent", tier.ResourceAssets))
	})

	t.Run("unknown tier on the document enforces free limits", func(t *testing.T) {
		t.Parallel()
		st := store.NewMemory()
		svc := quota.NewService(st, quota.WithLogger(slog.New(slog.DiscardHandler)))
		seedOrg(t, st, "org-weird", tier.Tier("platinum"), map[tier.Resource]int64{tier.ResourceAssets: 10})

		err := svc.Reserve(ctx, "org-weird", tier.ResourceAssets, 1)
		qe, ok := quota.IsQuotaExceeded(err)
		require.True(t, ok)
		assert.Equal(t, tier.Free, qe.Tier)
	})

	t.Run("invalid amount", func(t *testing.T) {
		t.Parallel()
		svc := quota.NewService(store.NewMemory())

		assert.ErrorIs(t, svc.Reserve(ctx, "org", tier.ResourceAssets, 0), quota.ErrInvalidAmount)
		assert.ErrorIs(t, svc.Reserve(ctx, "org", tier.ResourceAssets, -1), quota.ErrInvalidAmount)
	})

	t.Run("concurrent reservations never lose increments", func(t *testing.T) {
		t.Parallel()
		st := store.NewMemory()
		svc := quota.NewService(st)
		seedOrg(t, st, "org-race", tier.Enterprise, nil)

		const workers = 32
		var wg sync.WaitGroup
		wg.Add(workers)
		for range workers {
			go func() {
				defer wg.Done()
				_ = svc.Reserve(ctx, "org-race", tier.ResourceWorkOrders, 1)
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(workers), orgCount(t, st, "org-race", tier.ResourceWorkOrders))
	})
}

func TestReserveFailOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("missing organization is permitted by default", func(t *testing.T) {
		t.Parallel()
		svc := quota.NewService(store.NewMemory(), quota.WithLogger(slog.New(slog.DiscardHandler)))

		assert.NoError(t, svc.Reserve(ctx, "ghost-org", tier.ResourceAssets, 1))
	})

	t.Run("store outage is permitted by default", func(t *testing.T) {
		t.Parallel()
		broken := &brokenStore{Store: store.NewMemory(), err: errors.New("connection refused")}
		svc := quota.NewService(broken, quota.WithLogger(slog.New(slog.DiscardHandler)))

		assert.NoError(t, svc.Reserve(ctx, "any-org", tier.ResourceAssets, 1))
	})

	t.Run("fail-open disabled surfaces the failure", func(t *testing.T) {
		t.Parallel()
		svc := quota.NewService(store.NewMemory(), quota.WithFailOpen(false))
		assert.ErrorIs(t, svc.Reserve(ctx, "ghost-org", tier.ResourceAssets, 1), org.ErrOrgNotFound)

		broken := &brokenStore{Store: store.NewMemory(), err: errors.New("connection refused")}
		svc = quota.NewService(broken, quota.WithFailOpen(false))
		assert.ErrorIs(t, svc.Reserve(ctx, "any-org", tier.ResourceAssets, 1), quota.ErrStoreUnavailable)
	})
}

func TestRelease(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("decrements the counter", func(t *testing.T) {
		t.Parallel()
		st := store.NewMemory()
		svc := quota.NewService(st)
		seedOrg(t, st, "org-rel", tier.Free, map[tier.Resource]int64{tier.ResourceAssets: 5})

		require.NoError(t, svc.Release(ctx, "org-rel", tier.ResourceAssets, 2))
		assert.Equal(t, int64(3), orgCount(t, st, "org-rel", tier.ResourceAssets))
	})

	t.Run("clamps so the counter never goes negative", func(t *testing.T) {
		t.Parallel()
		st := store.NewMemory()
		svc := quota.NewService(st)
		seedOrg(t, st, "org-clamp", tier.Free, map[tier.Resource]int64{tier.ResourceAssets: 2})

		require.NoError(t, svc.Release(ctx, "org-clamp", tier.ResourceAssets, 10))
		assert.Equal(t, int64(0), orgCount(t, st, "org-clamp", tier.ResourceAssets))

		// Releasing from zero is a no-op.
		require.NoError(t, svc.Release(ctx, "org-clamp", tier.ResourceAssets, 1))
		assert.Equal(t, int64(0), orgCount(t, st, "org-clamp", tier.ResourceAssets))
	})

	t.Run("release is not fail-open", func(t *testing.T) {
		t.Parallel()
		svc := quota.NewService(store.NewMemory())
		assert.ErrorIs(t, svc.Release(ctx, "ghost-org", tier.ResourceAssets, 1), org.ErrOrgNotFound)
	})
}

func TestReserveReleaseAccounting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := store.NewMemory()
	svc := quota.NewService(st)
	seedOrg(t, st, "org-acct", tier.Starter, nil)

	// counts = successful increments minus actually-applied decrements.
	require.NoError(t, svc.Reserve(ctx, "org-acct", tier.ResourceUsers, 3))
	require.NoError(t, svc.Release(ctx, "org-acct", tier.ResourceUsers, 1))
	require.NoError(t, svc.Reserve(ctx, "org-acct", tier.ResourceUsers, 2))
	require.NoError(t, svc.Release(ctx, "org-acct", tier.ResourceUsers, 10)) // clamped to 4

	assert.Equal(t, int64(0), orgCount(t, st, "org-acct", tier.ResourceUsers))
}

func TestCheck(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("dry run does not mutate", func(t *testing.T) {
		t.Parallel()
		st := store.NewMemory()
		svc := quota.NewService(st)
		seedOrg(t, st, "org-chk", tier.Free, map[tier.Resource]int64{tier.ResourceAssets: 9})

		status, err := svc.Check(ctx, "org-chk", tier.ResourceAssets, 1)
		require.NoError(t, err)
		assert.True(t, status.Allowed)
		assert.Equal(t, int64(9), status.Current)
		assert.Equal(t, int64(10), status.Limit)
		assert.Equal(t, tier.Free, status.Tier)
		assert.Equal(t, int64(1), status.Remaining)
		assert.Equal(t, int64(9), orgCount(t, st, "org-chk", tier.ResourceAssets))

		status, err = svc.Check(ctx, "org-chk", tier.ResourceAssets, 2)
		require.NoError(t, err)
		assert.False(t, status.Allowed)
	})

	t.Run("unlimited reports -1 remaining", func(t *testing.T) {
		t.Parallel()
		st := store.NewMemory()
		svc := quota.NewService(st)
		seedOrg(t, st, "org-unl", tier.Enterprise, map[tier.Resource]int64{tier.ResourceAssets: 123})

		status, err := svc.Check(ctx, "org-unl", tier.ResourceAssets, 1)
		require.NoError(t, err)
		assert.True(t, status.Allowed)
		assert.Equal(t, tier.Unlimited, status.Limit)
		assert.Equal(t, tier.Unlimited, status.Remaining)
	})

	t.Run("check is not fail-open", func(t *testing.T) {
		t.Parallel()
		svc := quota.NewService(store.NewMemory())
		_, err := svc.Check(ctx, "ghost-org", tier.ResourceAssets, 1)
		assert.ErrorIs(t, err, org.ErrOrgNotFound)
	})
}
