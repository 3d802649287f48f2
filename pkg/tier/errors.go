package tier

import "errors"

var (
	// ErrInvalidTable is returned when a limits table fails validation.
	ErrInvalidTable = errors.New("tier: invalid limits table")

	// ErrFailedToLoadTable is returned when a Source cannot load its table.
	ErrFailedToLoadTable = errors.New("tier: failed to load limits table")
)
