package services

import "errors"

// Errors shared by the services and mapped to HTTP responses by the handlers.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation: the request is rejected before anything is written.
	ErrValidationFailed       = errors.New("validation failed")
	ErrSubstitutionIncomplete = errors.New("substitution requires team, outgoing and incoming player")
	ErrSubstitutionNotAllowed = errors.New("team has already made its substitution in this fixture")
	ErrNoEligiblePlayers      = errors.New("no eligible substitute players")
	ErrPlayerNotEligible      = errors.New("player is not eligible to substitute")
	ErrMatchEnded             = errors.New("match has already ended")

	// Persistence: the in-memory session keeps the attempted state.
	ErrWriteFailed = errors.New("failed to save match")
	ErrConflict    = errors.New("match was changed elsewhere, reload and retry")

	ErrMatchAlreadyExists  = errors.New("match already exists")
	ErrPlayerAlreadyExists = errors.New("player already exists")
)
