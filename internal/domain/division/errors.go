package division

import "errors"

// Sentinel kinds for division errors. Callers match them with errors.Is.
var (
	// ErrValidation reports malformed input: empty pool, team count out of
	// range, unknown strategy, duplicate or malformed participants.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound reports participant ids that do not resolve to members.
	ErrNotFound = errors.New("participant not found")
)
