package models

import "errors"

// ErrInvalidInput marks a request rejected before any computation runs.
var ErrInvalidInput = errors.New("invalid input")
