package store

import "errors"

// Predefined errors for the store layer.
var (
	// ErrNotFound indicates that no trip exists under the requested id.
	ErrNotFound = errors.New("resource not found")

	// ErrNotInitialized is returned when a backend is used before Init.
	ErrNotInitialized = errors.New("store not initialized")
)
