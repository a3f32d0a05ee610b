package repository

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// Specific variants wrap the generic sentinels so callers can match
	// either level with errors.Is.
	ErrPlayerNotFound  = fmt.Errorf("player %w", ErrNotFound)
	ErrArtworkNotFound = fmt.Errorf("artwork %w", ErrNotFound)
)
