package repository

import "errors"

// Common repository errors
var (
	// ErrInvalidImportance is returned when a todo carries an unknown importance
	ErrInvalidImportance = errors.New("invalid importance")
)
