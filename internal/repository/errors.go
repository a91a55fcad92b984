package repository

import "errors"

// ErrNotFound indicates the requested sandbox row does not exist.
var ErrNotFound = errors.New("not found")
