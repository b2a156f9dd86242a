package tasks

import (
	"context"
	"errors"
)

// ErrInvalidID is returned (wrapped) by a Store when an id is not in the
// format the backend assigns. Unknown but well-formed ids are not errors.
var ErrInvalidID = errors.New("invalid id")

// Store is the persistence contract the handlers run against.
type Store interface {
	Insert(ctx context.Context, t NewTask) (Task, error)
	FindAll(ctx context.Context) ([]Task, error)

	// UpdateByID returns nil, nil when no record has the id.
	UpdateByID(ctx context.Context, id string, p Patch) (*Task, error)

	// DeleteByID is idempotent.
	DeleteByID(ctx context.Context, id string) error

	// DeleteByCategory removes every record whose category equals the
	// argument exactly and reports how many went away.
	DeleteByCategory(ctx context.Context, category string) (int64, error)
}
