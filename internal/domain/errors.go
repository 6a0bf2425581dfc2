package domain

import "errors"

var ErrNotFound = errors.New("not found")
var ErrAlreadyExists = errors.New("already exists")

// ErrNotReady signals that a requested trickplay artifact does not exist yet
// but generation is permitted and has been triggered. Callers retry later.
var ErrNotReady = errors.New("not ready")

var (
	ErrEmptyInput        = errors.New("no frames to pack")
	ErrDimensionMismatch = errors.New("frame dimensions do not match tier configuration")
	ErrCorruptManifest   = errors.New("existing manifest is unreadable")
)
