package domain

import "errors"

var (
	// ErrStoreUnavailable the store cannot be opened or reached.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrUnknownTable a table name outside the allow-list reached the repository.
	ErrUnknownTable = errors.New("unknown table")
	// ErrUnknownList a lookup list outside {disciplines, goal_areas}.
	ErrUnknownList = errors.New("unknown list")
	// ErrNotFound lookup found nothing. Expected outcome, not a fault.
	ErrNotFound = errors.New("not found")
	// ErrInvalidStatus a status outside Regression/Stable/Progress.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrDanglingReference a parent's child_link names a child that does not exist.
	ErrDanglingReference = errors.New("dangling child reference")

	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
)
