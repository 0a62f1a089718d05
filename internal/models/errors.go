package models

import "errors"

var (
	// ErrInvalidConfiguration indicates structurally malformed input:
	// duplicate names, undersized couples, or fewer than 2 participants.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInfeasible indicates the retry ceiling was exhausted without
	// finding an assignment that satisfies every constraint.
	ErrInfeasible = errors.New("no valid assignment found")
)
