// Package subscription implements the tier state machine for organizations.
//
// Tiers are flat: a transition is a reassignment plus an orthogonal expiry
// timestamp that marks the assignment as a trial. SetTier is the single
// authoritative mutation point: it writes the tier fields and rewrites the
// per-organization RateLimits snapshot in one pass, and every other
// transition (trial expiry, admin downgrade) routes through it.
//
//	svc := subscription.NewService(st)
//	info, err := svc.SetTier(ctx, orgID, "enterprise", 30, "sales_trial")
//
// Two sweeps reconcile time-based state and are meant to run on a timer off
// the request path:
//
//   - ProcessExpiredTrials downgrades every lapsed trial to free.
//   - RepairLimits rewrites RateLimits snapshots that drifted from the
//     tier table.
//
// Both are idempotent and process each organization independently, so a
// crash mid-sweep leaves already-processed organizations in their final
// state and a repeat run picks up the rest.
package subscription
