package repository

import "errors"

// ErrNotFound is returned when a requested record is not found in the repository.
// Services translate it without knowing the storage engine behind it.
var ErrNotFound = errors.New("record not found")

// ErrInvalidTable is returned when attempting to clear a table that is not whitelisted.
var ErrInvalidTable = errors.New("invalid table name")

// ErrDuplicate is returned when a unique key such as a restaurant slug is taken
var ErrDuplicate = errors.New("duplicate record")
