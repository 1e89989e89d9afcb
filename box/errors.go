package box

import "errors"

// Validation errors (spec.md §7).
var (
	ErrInvalidKey   = errors.New("box: invalid dotted key")
	ErrInvalidName  = errors.New("box: invalid name")
	ErrDuplicateName = errors.New("box: duplicate name")
	ErrMalformedNeed = errors.New("box: malformed need expression")
)

// Hierarchy errors (spec.md §7).
var (
	ErrUnresolvedName = errors.New("box: unresolved box name")
	ErrCycle          = errors.New("box: cycle in over-chain")
	ErrUnderBeforeOver = errors.New("box: under referenced before its over")
	ErrAlreadyRegistered = errors.New("box: already registered")
)
