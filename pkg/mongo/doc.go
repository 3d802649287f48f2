// Package mongo provides MongoDB connection management for the tenancy
// services: environment-driven configuration, a retrying connector and a
// health check probe.
//
//	var cfg mongo.Config
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	st := store.NewMongo(db)
package mongo
