package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateName  = errors.New("formation name already used by club")
	ErrInvalidRecord  = errors.New("invalid record")
	ErrUnknownBackend = errors.New("unknown database driver")
)
