package service

import (
	"errors"

	"wordladder/internal/validation"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrAlreadySubmitted = errors.New("session already submitted")
	ErrNotSubmitted     = errors.New("session not submitted yet")
	ErrNoContent        = errors.New("no content available")
	ErrCycle            = errors.New("component would create a cycle")
	ErrPositionConflict = errors.New("component position already taken")

	// ErrValidation matches every *validation.Error.
	ErrValidation = validation.ErrInvalid
)
