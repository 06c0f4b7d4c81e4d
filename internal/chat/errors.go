package chat

import "errors"

var (
	// ErrNotFound is returned when a conversation, message, or user does
	// not exist.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied is returned when the caller is not allowed to
	// act on the target, e.g. a non-sender deleting a message or a
	// non-participant reading a conversation.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrEmptyMessage is returned when a send carries neither text nor
	// files.
	ErrEmptyMessage = errors.New("message needs text or files")
	// ErrInvalidInput is returned for malformed requests that never reach
	// storage.
	ErrInvalidInput = errors.New("invalid input")
)
