package gameerrors

import "errors"

// Sentinel errors shared by the game, records, storage and ws packages
// to avoid circular imports.
var (
	// ErrInvalidTransition is returned when a player action is not allowed in
	// the current session state. The session is left untouched.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrPersistenceRead is returned when stored records cannot be read.
	ErrPersistenceRead = errors.New("persistence read failure")

	// ErrPersistenceWrite is returned when records cannot be stored.
	ErrPersistenceWrite = errors.New("persistence write failure")
)
