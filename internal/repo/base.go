// Package repo implements the concurrency-control repository layer: a
// generic read repository plus two write disciplines. The automatic
// discipline relies on the store comparing and advancing a single row
// version inside a conditional write; the manual discipline holds an
// exclusive row lock for the whole read-validate-write sequence and lets
// per-entity policies maintain independent version counters. Every
// operation opens its own unit of work and returns a result envelope,
// never a raw store error.
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkarpuk/rowguard/internal/dbx"
	"github.com/mkarpuk/rowguard/internal/logging"
	"github.com/mkarpuk/rowguard/internal/metrics"
	"github.com/mkarpuk/rowguard/internal/models"
	"github.com/mkarpuk/rowguard/internal/pgerr"
	"github.com/mkarpuk/rowguard/internal/result"
)

// ReadRepository provides paged, filtered, sorted reads for one entity
// type. Reads are plain queries against the handed-in connection; nothing
// is tracked or cached between calls.
type ReadRepository[T models.Record] struct {
	db  dbx.DBTX
	m   Mapper[T]
	log logging.Logger
}

func NewReadRepository[T models.Record](db dbx.DBTX, m Mapper[T], log logging.Logger) *ReadRepository[T] {
	return &ReadRepository[T]{db: db, m: m, log: log}
}

// Get returns one page of entities. Page numbers below 1 clamp to 1, a
// non-positive size falls back to DefaultPageSize and sizes above
// MaxPageSize clamp down. Unknown filter/sort columns and unsupported
// operators are the caller's mistake and come back as bad request.
func (r *ReadRepository[T]) Get(ctx context.Context, filter Filter, sort []Sort, page, size int) *result.Result[[]T] {
	page = clampPage(page)
	size = clampPageSize(size)

	query := "SELECT " + strings.Join(r.m.SelectColumns(), ", ") + " FROM " + r.m.Table()

	var args []any
	if len(filter) > 0 {
		preds := make([]string, 0, len(filter))
		for _, c := range filter {
			if !r.columnAllowed(c.Column) {
				return result.BadRequest[[]T](c.Column, "unknown filter column")
			}
			op, ok := allowedOps[strings.ToLower(c.Op)]
			if !ok {
				return result.BadRequest[[]T](c.Column, "unsupported filter operator")
			}
			args = append(args, c.Value)
			preds = append(preds, fmt.Sprintf("%s %s $%d", c.Column, op, len(args)))
		}
		query += " WHERE " + strings.Join(preds, " AND ")
	}

	orderBy := "id"
	if len(sort) > 0 {
		parts := make([]string, 0, len(sort))
		for _, s := range sort {
			if !r.columnAllowed(s.Column) {
				return result.BadRequest[[]T](s.Column, "unknown sort column")
			}
			p := s.Column
			if s.Desc {
				p += " DESC"
			}
			parts = append(parts, p)
		}
		orderBy = strings.Join(parts, ", ")
	}
	query += " ORDER BY " + orderBy

	args = append(args, size, (page-1)*size)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fatalResult[[]T](ctx, r.log, r.m.Table(), "get", err)
	}
	defer rows.Close()

	items := make([]T, 0, size)
	for rows.Next() {
		item, err := r.m.ScanRow(rows)
		if err != nil {
			return fatalResult[[]T](ctx, r.log, r.m.Table(), "get", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return fatalResult[[]T](ctx, r.log, r.m.Table(), "get", err)
	}
	return result.OK(items)
}

// GetByID returns the entity with the given id, or not-found.
func (r *ReadRepository[T]) GetByID(ctx context.Context, id int64) *result.Result[T] {
	query := "SELECT " + strings.Join(r.m.SelectColumns(), ", ") + " FROM " + r.m.Table() + " WHERE id = $1"
	item, err := r.m.ScanRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result.NotFound[T]("record not found")
		}
		return fatalResult[T](ctx, r.log, r.m.Table(), "get_by_id", err)
	}
	return result.OK(item)
}

func (r *ReadRepository[T]) columnAllowed(col string) bool {
	for _, c := range r.m.SelectColumns() {
		if c == col {
			return true
		}
	}
	return false
}

// fatalResult logs the cause with a fresh reference id and hands the
// caller only the reference, keeping store internals out of user-facing
// messages.
func fatalResult[T any](ctx context.Context, log logging.Logger, table, op string, err error) *result.Result[T] {
	ref := uuid.NewString()
	log.Error(ctx, "repository failure", "table", table, "op", op, "ref", ref, "err", err)
	metrics.Failure(table)
	return result.Fatal[T]("something went wrong on our side, reference " + ref)
}

func uniqueConflict[T any](v *pgerr.UniqueViolation) *result.Result[T] {
	r := &result.Result[T]{Code: result.CodeConflict}
	return r.AddMessage(v.Field, fmt.Sprintf("value %q for %s is already in use in %s", v.Value, v.Field, v.Table))
}

// conflictMessage names the last modifier when the just-read live row
// still carries that information.
func conflictMessage(a *models.Audit) string {
	if a != nil && a.Modified.Valid {
		who := a.ModifiedBy.String
		if who == "" {
			who = "another user"
		}
		return fmt.Sprintf("the record was changed by %s at %s, reload and try again",
			who, a.Modified.Time.Format(time.RFC3339))
	}
	return "the record was changed by another user, reload and try again"
}

func insertQuery(table string, cols []string) string {
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	return "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(ph, ", ") + ")"
}
