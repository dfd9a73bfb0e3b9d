package services

import "errors"

var (
	ErrInvalidSession  = errors.New("invalid or expired ladder session")
	ErrAlreadyCapped   = errors.New("ladder session already at maximum multiplier")
	ErrSessionConflict = errors.New("ladder session was modified concurrently")
)
