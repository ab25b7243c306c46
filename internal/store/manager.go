// Package store wires the repositories to a live PostgreSQL database:
// it opens the connection via the pgx stdlib driver, runs the embedded
// goose migrations and hands out the per-entity repositories.
package store

import (
	"context"
	"database/sql"

	"github.com/mkarpuk/rowguard/internal/repo/customers"
	"github.com/mkarpuk/rowguard/internal/repo/products"
)

// RepositoryManager is the single construction point callers use to reach
// the repositories. Each repository still opens its own unit of work per
// operation; the manager only owns the shared connection pool.
type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Customers() *customers.Repository
	Products() *products.Repository
	Close() error
}
