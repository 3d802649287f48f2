// Package demo manages ephemeral demo tenants: fully-seeded organizations
// with a fixed time-to-live and a token-scoped demo user.
//
// A demo session is a real organization on the starter tier with sample
// assets, maintenance rules, work orders and parts, so the product looks
// populated from the first click. The session token is the only credential;
// expiry is checked lazily at token lookup and storage is reclaimed by the
// CleanupExpiredDemos sweep, which an external scheduler runs periodically.
//
//	svc := demo.NewService(st)
//	session, err := svc.CreateSession(ctx, clientIP)
//	// redirect the visitor to session.RedirectURL with session.Token
//
// The set of collections the cleanup cascades over is the ChildCollections
// contract in the org package.
package demo
