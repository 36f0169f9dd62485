package spatial

import "errors"

// Core spatial index errors
var (
	ErrInvalidCellSize = errors.New("cell size must be positive")
	ErrAlreadyIndexed  = errors.New("entity is already indexed")
)
