// Package quota enforces per-organization resource ceilings.
//
// Counts live on the organization document and are mutated exclusively
// through the store's atomic increment; the ceiling for each resource comes
// from the tier limits table resolved at read time. A reservation that
// would cross the ceiling fails with *QuotaExceededError and leaves the
// counter untouched; releases are clamped so counters never go negative.
//
//	svc := quota.NewService(st)
//	if err := svc.Reserve(ctx, orgID, tier.ResourceAssets, 1); err != nil {
//	    if qe, ok := quota.IsQuotaExceeded(err); ok {
//	        // surface qe.Current / qe.Limit / qe.Tier to the user
//	    }
//	    return err
//	}
//
// Reserve fails open by default: a store outage or missing organization
// record grants the reservation and logs a warning, a deliberate
// availability-over-strictness tradeoff. Pass WithFailOpen(false) to turn
// infrastructure failures into errors instead.
package quota
