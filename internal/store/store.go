// Package store defines the to-do collection contract shared by the remote
// client and the server-side backends.
package store

import (
	"context"

	"github.com/idilsaglam/todos/internal/model"
)

// Store lists and creates to-do items. ListAll returns items in store order.
type Store interface {
	ListAll(ctx context.Context) ([]model.Item, error)
	Create(ctx context.Context, body string, completed bool) (model.Item, error)
}

// Backend is a Store that owns resources the server must release.
type Backend interface {
	Store
	Close() error
}
