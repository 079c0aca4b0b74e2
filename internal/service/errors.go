package service

import "errors"

// Sentinel errors for query operations.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrHistoryDisabled = errors.New("snapshot history is disabled")
)
