package session

import "errors"

var (
	// ErrNotFound reports an update against a session that does not exist.
	ErrNotFound = errors.New("session not found")
	// ErrVersionConflict reports an optimistic-lock failure: the session
	// changed since it was read.
	ErrVersionConflict = errors.New("session version conflict")
	// ErrInvalidStoreType reports an unknown driver name.
	ErrInvalidStoreType = errors.New("invalid session store type")
	// ErrInvalidConfig reports a driver missing required configuration.
	ErrInvalidConfig = errors.New("invalid session store config")
)
