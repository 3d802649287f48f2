// Package logger is a small slog factory with production-safe defaults.
// Every service in this module logs through log/slog; this package only
// standardizes handler construction.
//
//	log := logger.New(logger.WithService("tenantkit"))
//	logger.SetAsDefault(log)
package logger
