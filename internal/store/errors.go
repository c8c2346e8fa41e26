package store

import "errors"

var (
	// ErrConflict reports that another scheduled appointment already held
	// the target slot at commit time.
	ErrConflict = errors.New("slot conflict")
	// ErrNotFound reports an update or cancel against an unknown id.
	ErrNotFound = errors.New("not found")
)
