package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrSessionNotConfigured  = errors.New("session has no team names")
	ErrGameOver              = errors.New("game already won")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
