// Package pgerr classifies PostgreSQL errors into the outcomes the
// repository contract cares about: uniqueness violations (with enough
// detail for a user-facing message) and lock-wait timeouts. The message
// format parsing is inherently driver/server specific, so it lives behind
// this single seam.
package pgerr

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation  = "23505"
	codeLockNotAvailable = "55P03"
)

// UniqueViolation describes a duplicate-key error in user-facing terms.
type UniqueViolation struct {
	Table      string
	Constraint string
	Field      string
	Value      string
}

// keyDetail matches the server detail line "Key (col)=(value) already exists."
var keyDetail = regexp.MustCompile(`Key \((.+?)\)=\((.*?)\)`)

// AsUniqueViolation reports whether err is a duplicate-key error and, if
// so, extracts table, constraint, field and offending value. The field
// comes from the server detail line when present, otherwise it is derived
// from the constraint name, which by convention ends with the column name
// (e.g. ix_customers_bank_account).
func AsUniqueViolation(err error) (*UniqueViolation, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != codeUniqueViolation {
		return nil, false
	}

	v := &UniqueViolation{
		Table:      pgErr.TableName,
		Constraint: pgErr.ConstraintName,
	}
	if m := keyDetail.FindStringSubmatch(pgErr.Detail); m != nil {
		v.Field = m[1]
		v.Value = m[2]
	} else {
		v.Field = fieldFromConstraint(pgErr.ConstraintName, pgErr.TableName)
	}
	return v, true
}

// IsLockTimeout reports whether err is the server giving up on acquiring a
// row lock within lock_timeout.
func IsLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeLockNotAvailable
}

func fieldFromConstraint(constraint, table string) string {
	for _, prefix := range []string{"ix_" + table + "_", "uq_" + table + "_", table + "_"} {
		if strings.HasPrefix(constraint, prefix) {
			return strings.TrimPrefix(constraint, prefix)
		}
	}
	return constraint
}
