package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mkarpuk/rowguard/internal/config"
	"github.com/mkarpuk/rowguard/internal/logging"
	"github.com/mkarpuk/rowguard/internal/repo/customers"
	"github.com/mkarpuk/rowguard/internal/repo/products"
	"github.com/mkarpuk/rowguard/internal/store/migrations"
)

type PostgresRepositoryManager struct {
	db        *sql.DB
	customers *customers.Repository
	products  *products.Repository
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) Customers() *customers.Repository {
	return m.customers
}

func (m *PostgresRepositoryManager) Products() *products.Repository {
	return m.products
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

// NewPostgresRepositoryManager opens the database, applies pending
// migrations and builds the repositories with the configured lock-wait
// timeout.
func NewPostgresRepositoryManager(cfg *config.Config, log logging.Logger) (RepositoryManager, error) {
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &PostgresRepositoryManager{
		db:        db,
		customers: customers.NewRepository(db, log),
		products:  products.NewRepository(db, cfg.LockTimeout, log),
	}

	if err := m.RunMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
