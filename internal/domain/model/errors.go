package model

import "errors"

// Sentinel kinds for model parsing errors.
var (
	ErrUnknownPosition       = errors.New("unknown position")
	ErrUnknownMembershipType = errors.New("unknown membership type")
	ErrUnknownStrategy       = errors.New("unknown balance strategy")
)
