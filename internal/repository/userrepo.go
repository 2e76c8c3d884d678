// Package repository defines storage interfaces implemented by concrete backends.
package repository

import "context"

// UserRepository stores the registration namespace of the mirror server.
type UserRepository interface {
	// Register adds username; registering a known name again succeeds.
	Register(ctx context.Context, username string) error
	// List returns all usernames in registration order.
	List(ctx context.Context) ([]string, error)
}
