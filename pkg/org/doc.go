// Package org owns the tenant document shapes and the bootstrap service.
//
// Bootstrap is idempotent on the owner: if the owner user already carries an
// organization_id, the existing organization identity is returned and
// nothing is written. Otherwise three sequential writes happen: the
// organization (counts zeroed, trial expiry per tier signup policy), the
// RateLimits snapshot and the owner user link. The store offers no
// cross-document transactions, so a narrow duplicate-creation race under
// concurrent bootstrap for the same owner is documented rather than closed.
//
//	svc := org.NewService(st)
//	res, err := svc.Bootstrap(ctx, org.BootstrapParams{
//	    OrgID:       uuid.NewString(),
//	    OrgName:     "Acme Maintenance",
//	    OwnerUserID: userID,
//	    OwnerEmail:  "owner@acme.test",
//	    Tier:        tier.Starter,
//	})
//
// The package also defines the ChildCollections cascade contract consumed
// by Delete and by the demo cleanup sweep.
package org
