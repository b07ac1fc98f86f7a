package utils

import (
	"context"
	"time"
)

const (
	// DefaultTimeout bounds store lookups (Redis, MongoDB)
	DefaultTimeout = 10 * time.Second

	// ShortTimeout is for quick operations (health pings)
	ShortTimeout = 2 * time.Second
)

// WithTimeout creates a context with default timeout
func WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DefaultTimeout)
}

// WithShortTimeout creates a context with short timeout for quick operations
func WithShortTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, ShortTimeout)
}
