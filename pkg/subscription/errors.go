package subscription

import "errors"

var (
	// ErrInvalidTrialDays is returned when a trial length is negative
	// (SetTier) or not positive (ExtendTrial).
	ErrInvalidTrialDays = errors.New("subscription: invalid trial days")

	// ErrTierChangeFailed wraps store failures during a tier change.
	ErrTierChangeFailed = errors.New("subscription: tier change failed")

	// ErrSweepFailed wraps store failures that abort a sweep scan.
	ErrSweepFailed = errors.New("subscription: sweep failed")
)
