package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkarpuk/rowguard/internal/dbx"
	"github.com/mkarpuk/rowguard/internal/logging"
	"github.com/mkarpuk/rowguard/internal/metrics"
	"github.com/mkarpuk/rowguard/internal/models"
	"github.com/mkarpuk/rowguard/internal/pgerr"
	"github.com/mkarpuk/rowguard/internal/result"
)

// StampedRecord is an entity under automatic optimistic control.
type StampedRecord interface {
	models.Record
	models.Stamped
}

// OptimisticRepository implements add/update/delete for entities with one
// store-maintained row version. No lock is ever held: the conditional
// UPDATE/DELETE performs the compare-and-advance atomically and a losing
// writer is told to retry.
type OptimisticRepository[T StampedRecord] struct {
	*ReadRepository[T]
}

func NewOptimisticRepository[T StampedRecord](db dbx.DBTX, m Mapper[T], log logging.Logger) *OptimisticRepository[T] {
	return &OptimisticRepository[T]{ReadRepository: NewReadRepository[T](db, m, log)}
}

// Add inserts the entity, letting the store assign id and initial row
// version. On any failure the entity's audit fields are restored to their
// pre-call values so the caller can retry with an uncorrupted object.
func (r *OptimisticRepository[T]) Add(ctx context.Context, e T, userID string) *result.Result[T] {
	prev := e.AuditFields().Snapshot()
	e.SetRecordID(0)
	e.AuditFields().TouchCreated(time.Now().UTC(), userID)

	query := insertQuery(r.m.Table(), r.m.InsertColumns()) + " RETURNING id, row_version"

	var id, stamp int64
	if err := r.db.QueryRowContext(ctx, query, r.m.InsertValues(e)...).Scan(&id, &stamp); err != nil {
		e.AuditFields().Restore(prev)
		if v, ok := pgerr.AsUniqueViolation(err); ok {
			metrics.Conflict(r.m.Table(), metrics.KindUnique)
			return uniqueConflict[T](v)
		}
		return fatalResult[T](ctx, r.log, r.m.Table(), "add", err)
	}

	e.SetRecordID(id)
	e.SetStamp(stamp)
	return result.Created(e)
}

// Update overwrites every data column with the caller's values, but only
// if the live row version still equals the stamp the caller read earlier.
// The live row is fetched up front so a conflict can name who last
// changed it and when. On success the returned entity carries the
// store-advanced stamp.
func (r *OptimisticRepository[T]) Update(ctx context.Context, e T, userID string) *result.Result[T] {
	prev := e.AuditFields().Snapshot()

	cur := r.GetByID(ctx, e.RecordID())
	if !cur.Success() {
		return cur
	}

	e.AuditFields().TouchModified(time.Now().UTC(), userID)

	cols := r.m.UpdateColumns()
	args := r.m.UpdateValues(e)
	sets := make([]string, 0, len(cols)+3)
	for i, c := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", c, i+1))
	}
	args = append(args, e.AuditFields().Modified, e.AuditFields().ModifiedBy)
	sets = append(sets,
		fmt.Sprintf("modified = $%d", len(args)-1),
		fmt.Sprintf("modified_by = $%d", len(args)),
		"row_version = row_version + 1")
	args = append(args, e.RecordID(), e.Stamp())
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d AND row_version = $%d RETURNING row_version",
		r.m.Table(), strings.Join(sets, ", "), len(args)-1, len(args))

	var stamp int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&stamp); err != nil {
		e.AuditFields().Restore(prev)
		if errors.Is(err, sql.ErrNoRows) {
			metrics.Conflict(r.m.Table(), metrics.KindStamp)
			return result.Conflict[T](conflictMessage(cur.Payload.AuditFields()))
		}
		if v, ok := pgerr.AsUniqueViolation(err); ok {
			metrics.Conflict(r.m.Table(), metrics.KindUnique)
			return uniqueConflict[T](v)
		}
		return fatalResult[T](ctx, r.log, r.m.Table(), "update", err)
	}

	e.SetStamp(stamp)
	return result.OK(e)
}

// Delete removes the row if the live row version still equals the
// caller's stamp. The compare-and-delete is atomic; the live row is
// re-read only after a miss, to tell a stamp conflict apart from a row
// that no longer exists.
func (r *OptimisticRepository[T]) Delete(ctx context.Context, e T) *result.Result[struct{}] {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1 AND row_version = $2", r.m.Table())
	res, err := r.db.ExecContext(ctx, query, e.RecordID(), e.Stamp())
	if err != nil {
		return fatalResult[struct{}](ctx, r.log, r.m.Table(), "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fatalResult[struct{}](ctx, r.log, r.m.Table(), "delete", err)
	}
	if n == 1 {
		return result.OK(struct{}{})
	}

	cur := r.GetByID(ctx, e.RecordID())
	switch {
	case cur.Success():
		metrics.Conflict(r.m.Table(), metrics.KindStamp)
		return result.Conflict[struct{}](conflictMessage(cur.Payload.AuditFields()))
	case cur.Code == result.CodeNotFound:
		return result.NotFound[struct{}]("record not found")
	default:
		return &result.Result[struct{}]{Code: cur.Code, Messages: cur.Messages}
	}
}
