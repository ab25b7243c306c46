package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkarpuk/rowguard/internal/copier"
	"github.com/mkarpuk/rowguard/internal/dbx"
	"github.com/mkarpuk/rowguard/internal/logging"
	"github.com/mkarpuk/rowguard/internal/metrics"
	"github.com/mkarpuk/rowguard/internal/models"
	"github.com/mkarpuk/rowguard/internal/pgerr"
	"github.com/mkarpuk/rowguard/internal/result"
)

// StampPolicy supplies the per-entity version-counter logic the manual
// protocol is generic over. Validate and Advance must only ever touch the
// counters of the groups the write targets; the others stay as read.
type StampPolicy[T any] interface {
	// InitStamps sets every counter's starting value before insert.
	InitStamps(e T) bool

	// ValidateStamps compares the caller's counters against the row just
	// read under lock. False means the caller's view is stale.
	ValidateStamps(incoming, persisted T) bool

	// AdvanceStamps moves the targeted counters forward by exactly 1 on
	// the persisted row. False indicates an internal policy error.
	AdvanceStamps(incoming, persisted T) bool

	// StampFields names the entity struct fields holding counters, so
	// whole-record mapping can leave already-advanced counters alone.
	StampFields() []string
}

// errHandled tells InTx to roll back after the outcome has already been
// captured in a Result.
var errHandled = errors.New("outcome handled")

// ManualRepository implements the pessimistic write protocol for entities
// with application-maintained counters: each write runs in its own
// repeatable-read transaction, takes an exclusive row lock bounded by the
// configured lock-wait timeout, validates and advances counters under
// that lock, and rolls back on every failure edge.
type ManualRepository[T models.Record] struct {
	*ReadRepository[T]
	sqlDB  *sql.DB
	policy StampPolicy[T]
	LockWait
}

func NewManualRepository[T models.Record](db *sql.DB, m Mapper[T], policy StampPolicy[T], lockTimeout time.Duration, log logging.Logger) *ManualRepository[T] {
	return &ManualRepository[T]{
		ReadRepository: NewReadRepository[T](db, m, log),
		sqlDB:          db,
		policy:         policy,
		LockWait:       NewLockWait(lockTimeout),
	}
}

// Add inserts the entity with freshly initialized counters. Audit fields
// are restored on every failure path.
func (r *ManualRepository[T]) Add(ctx context.Context, e T, userID string) *result.Result[T] {
	prev := e.AuditFields().Snapshot()
	e.SetRecordID(0)
	if !r.policy.InitStamps(e) {
		return fatalResult[T](ctx, r.log, r.m.Table(), "add", errors.New("stamp initialization rejected"))
	}
	e.AuditFields().TouchCreated(time.Now().UTC(), userID)

	query := insertQuery(r.m.Table(), r.m.InsertColumns()) + " RETURNING id"

	var id int64
	if err := r.db.QueryRowContext(ctx, query, r.m.InsertValues(e)...).Scan(&id); err != nil {
		e.AuditFields().Restore(prev)
		if v, ok := pgerr.AsUniqueViolation(err); ok {
			metrics.Conflict(r.m.Table(), metrics.KindUnique)
			return uniqueConflict[T](v)
		}
		return fatalResult[T](ctx, r.log, r.m.Table(), "add", err)
	}

	e.SetRecordID(id)
	return result.Created(e)
}

// Update is the whole-record write: it validates and advances every
// counter via the policy and copies all data fields onto the locked row,
// leaving id, audit columns and the already-advanced counters alone.
func (r *ManualRepository[T]) Update(ctx context.Context, e T, userID string) *result.Result[T] {
	skip := append([]string{"ID", "Created", "CreatedBy", "Modified", "ModifiedBy"}, r.policy.StampFields()...)
	return r.UpdateRow(ctx, e.RecordID(),
		func(persisted T) error { return copier.Copy(e, persisted, skip...) },
		func(persisted T) bool { return r.policy.ValidateStamps(e, persisted) },
		func(persisted T) bool { return r.policy.AdvanceStamps(e, persisted) },
		userID)
}

// UpdateRow is the core protocol shared by whole-record and per-group
// updates. Inside one repeatable-read transaction it reads the target row
// under an exclusive lock, asks validateAfterRead whether the caller's
// counters still match, lets setBeforeUpdate advance the targeted
// counters, applies mapFields to merge the caller's changes, stamps the
// modification audit fields and persists. Any failure rolls the
// transaction back; the row is never left half-written.
func (r *ManualRepository[T]) UpdateRow(
	ctx context.Context,
	id int64,
	mapFields func(persisted T) error,
	validateAfterRead func(persisted T) bool,
	setBeforeUpdate func(persisted T) bool,
	userID string,
) *result.Result[T] {
	var res *result.Result[T]

	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead}
	err := dbx.InTx(ctx, r.sqlDB, opts, func(ctx context.Context, tx dbx.DBTX) error {
		persisted, err := r.lockRow(ctx, tx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				res = result.NotFound[T]("record not found")
				return errHandled
			}
			return err
		}

		if !validateAfterRead(persisted) {
			metrics.Conflict(r.m.Table(), metrics.KindCounter)
			res = result.Conflict[T](conflictMessage(persisted.AuditFields()))
			return errHandled
		}
		if !setBeforeUpdate(persisted) {
			res = fatalResult[T](ctx, r.log, r.m.Table(), "update", errors.New("stamp advancement rejected"))
			return errHandled
		}
		if err := mapFields(persisted); err != nil {
			return err
		}
		persisted.AuditFields().TouchModified(time.Now().UTC(), userID)

		cols := r.m.UpdateColumns()
		args := r.m.UpdateValues(persisted)
		sets := make([]string, 0, len(cols)+2)
		for i, c := range cols {
			sets = append(sets, fmt.Sprintf("%s = $%d", c, i+1))
		}
		args = append(args, persisted.AuditFields().Modified, persisted.AuditFields().ModifiedBy)
		sets = append(sets,
			fmt.Sprintf("modified = $%d", len(args)-1),
			fmt.Sprintf("modified_by = $%d", len(args)))
		args = append(args, id)
		query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", r.m.Table(), strings.Join(sets, ", "), len(args))

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}

		res = result.OK(persisted)
		return nil
	})

	if err != nil && !errors.Is(err, errHandled) {
		return r.classify(ctx, "update", err)
	}
	return res
}

// Delete locks the row, validates the caller's counters against it and
// removes it. No counters advance since the row ceases to exist.
func (r *ManualRepository[T]) Delete(ctx context.Context, e T) *result.Result[struct{}] {
	var res *result.Result[struct{}]

	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead}
	err := dbx.InTx(ctx, r.sqlDB, opts, func(ctx context.Context, tx dbx.DBTX) error {
		persisted, err := r.lockRow(ctx, tx, e.RecordID())
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				res = result.NotFound[struct{}]("record not found")
				return errHandled
			}
			return err
		}

		if !r.policy.ValidateStamps(e, persisted) {
			metrics.Conflict(r.m.Table(), metrics.KindCounter)
			res = result.Conflict[struct{}](conflictMessage(persisted.AuditFields()))
			return errHandled
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM "+r.m.Table()+" WHERE id = $1", e.RecordID()); err != nil {
			return err
		}

		res = result.OK(struct{}{})
		return nil
	})

	if err != nil && !errors.Is(err, errHandled) {
		if pgerr.IsLockTimeout(err) {
			metrics.Conflict(r.m.Table(), metrics.KindLockWait)
			return result.Conflict[struct{}]("the record is currently in use, try again later")
		}
		return fatalResult[struct{}](ctx, r.log, r.m.Table(), "delete", err)
	}
	return res
}

// lockRow applies the lock-wait bound and reads the target row under an
// exclusive lock. The read goes to the store, not to any cache, and
// blocks concurrent writers of the same row until commit or rollback.
func (r *ManualRepository[T]) lockRow(ctx context.Context, tx dbx.DBTX, id int64) (T, error) {
	var zero T
	if _, err := tx.ExecContext(ctx, lockTimeoutStmt(r.LockTimeout())); err != nil {
		return zero, err
	}
	query := "SELECT " + strings.Join(r.m.SelectColumns(), ", ") + " FROM " + r.m.Table() + " WHERE id = $1 FOR UPDATE"
	return r.m.ScanRow(tx.QueryRowContext(ctx, query, id))
}

func (r *ManualRepository[T]) classify(ctx context.Context, op string, err error) *result.Result[T] {
	if v, ok := pgerr.AsUniqueViolation(err); ok {
		metrics.Conflict(r.m.Table(), metrics.KindUnique)
		return uniqueConflict[T](v)
	}
	if pgerr.IsLockTimeout(err) {
		metrics.Conflict(r.m.Table(), metrics.KindLockWait)
		return result.Conflict[T]("the record is currently in use, try again later")
	}
	return fatalResult[T](ctx, r.log, r.m.Table(), op, err)
}
