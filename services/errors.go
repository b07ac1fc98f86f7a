package services

import "errors"

var (
	// ErrInvalidInput marks uploads rejected before any processing.
	ErrInvalidInput = errors.New("invalid input")
	// ErrTooLarge marks uploads over the configured size cap.
	ErrTooLarge = errors.New("file too large")
	// ErrExtraction marks documents that could not be turned into chunks.
	ErrExtraction = errors.New("pdf extraction failed")
	// ErrNotReady is returned when no processed document backs a session.
	ErrNotReady = errors.New("no processed document")
	// ErrInvalidSessionID marks client-supplied session IDs that are too long
	// or contain characters outside [A-Za-z0-9._:-].
	ErrInvalidSessionID = errors.New("invalid session id")
	// ErrSessionNotFound is returned for unknown session IDs.
	ErrSessionNotFound = errors.New("session not found")
)
