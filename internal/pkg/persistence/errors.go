package persistence

import "errors"

// ErrDuplicate is returned when a unique record already exists
var ErrDuplicate = errors.New("duplicate record")
