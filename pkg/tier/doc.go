// Package tier defines subscription tiers and their resource-limit table.
//
// A Tier (free, starter, professional, enterprise) maps to a row of integer
// ceilings for the countable resources an organization owns: assets, users,
// preventive-maintenance rules and monthly work orders. -1 means unlimited.
//
// The Table is the single source of truth for limit enforcement. Services
// resolve limits from the table at read time rather than trusting the
// per-organization snapshot, which exists only for display and external
// consumers.
//
// The built-in Defaults table can be overridden at deploy time through a
// YAML file Source:
//
//	table, err := tier.NewFileSource("limits.yaml").Load(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc := quota.NewService(st, quota.WithTable(table))
package tier
