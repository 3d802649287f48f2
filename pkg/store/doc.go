// Package store defines the document storage contract shared by the tenancy
// services and provides two implementations: a MongoDB-backed store for
// production and an in-memory store for tests.
//
// The contract is intentionally narrow. Services get per-document get,
// create, partial update and delete, collection scans with equality plus a
// single range filter, and one concurrency primitive: an atomic numeric
// field increment. There is no multi-document transaction support; callers
// sequence their writes and document the races that remain.
//
// Usage:
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	st := store.NewMongo(db)
//
//	var org org.Organization
//	if err := st.Get(ctx, "organizations", orgID, &org); err != nil { ... }
//
//	// Counters are only ever mutated through the atomic increment.
//	err = st.AtomicIncrement(ctx, "organizations", orgID, "counts.assets", 1)
//
// The in-memory store round-trips every document, update value and filter
// value through bson encoding, so struct tags, nested field paths and value
// types behave identically across both implementations. Tests can therefore
// exercise the real service logic without a running MongoDB.
package store
