package quota

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/tenantkit/pkg/tier"
)

var (
	// ErrInvalidAmount is returned when a reserve/release amount is not positive.
	ErrInvalidAmount = errors.New("quota: amount must be positive")

	// ErrStoreUnavailable wraps store failures when fail-open is disabled.
	ErrStoreUnavailable = errors.New("quota: store unavailable")
)

// QuotaExceededError is the only structured error surfaced to callers. It
// carries everything needed for a user-facing message.
type QuotaExceededError struct {
	Resource tier.Resource
	Limit    int64
	Current  int64
	Tier     tier.Tier
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("reached the %s limit (%d/%d) for the %s tier",
		e.Resource, e.Current, e.Limit, e.Tier)
}

// IsQuotaExceeded reports whether err is a QuotaExceededError and returns it.
func IsQuotaExceeded(err error) (*QuotaExceededError, bool) {
	var qe *QuotaExceededError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}
