// Package db holds the task store backends. The backend is picked from the
// scheme of the connection string.
package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"todo-backend/internal/tasks"
)

// Store is a tasks.Store that can be health-checked and closed.
type Store interface {
	tasks.Store
	Ping(ctx context.Context) error
	Close() error
}

type Options struct {
	MongoDatabase   string
	MongoCollection string
}

// Open connects to the store named by location, pings it and prepares the
// schema. Supported schemes: mongodb, mongodb+srv, postgres, postgresql,
// mysql, sqlite, file and memory.
func Open(ctx context.Context, location string, opts Options) (Store, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("store location is empty")
	}

	if strings.HasPrefix(location, "file:") {
		return opened(OpenGorm(location))
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parse store location: %w", err)
	}

	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		return opened(OpenMongo(ctx, location, opts.MongoDatabase, opts.MongoCollection))
	case "postgres", "postgresql":
		return opened(OpenSQL(ctx, DialectPostgres, location))
	case "mysql":
		dsn, err := MySQLDSN(u)
		if err != nil {
			return nil, err
		}
		return opened(OpenSQL(ctx, DialectMySQL, dsn))
	case "sqlite":
		return opened(OpenGorm(sqlitePath(location)))
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported store scheme %q", u.Scheme)
	}
}

// opened keeps a failed open from returning a non-nil Store holding a nil
// pointer.
func opened(s Store, err error) (Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

// sqlitePath turns sqlite://path/to.db or sqlite:///abs/to.db into a path
// the sqlite driver understands.
func sqlitePath(location string) string {
	p := strings.TrimPrefix(location, "sqlite://")
	if p == "" || p == ":memory:" {
		return ":memory:"
	}
	return p
}
