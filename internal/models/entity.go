// Package models defines the persisted record types and the base contracts
// every record shares: a surrogate numeric key and creation/modification
// audit fields. Records under automatic optimistic control additionally
// carry a single store-maintained row version; manually versioned records
// declare one integer counter per independently editable field group.
package models

import (
	"database/sql"
	"time"
)

// Audit holds the creation and modification bookkeeping columns common to
// every table. Modified/ModifiedBy stay NULL until the first update.
type Audit struct {
	Created    time.Time
	CreatedBy  string
	Modified   sql.NullTime
	ModifiedBy sql.NullString
}

// Snapshot returns a copy of the current audit values so a caller can put
// them back after a failed write attempt.
func (a *Audit) Snapshot() Audit {
	return *a
}

// Restore overwrites the audit values with a previously taken snapshot.
func (a *Audit) Restore(prev Audit) {
	*a = prev
}

// TouchCreated stamps the record as created now by the given user.
func (a *Audit) TouchCreated(now time.Time, userID string) {
	a.Created = now
	a.CreatedBy = userID
}

// TouchModified stamps the record as modified now by the given user.
func (a *Audit) TouchModified(now time.Time, userID string) {
	a.Modified = sql.NullTime{Time: now, Valid: true}
	a.ModifiedBy = sql.NullString{String: userID, Valid: true}
}

// Base is embedded by every persisted record. The ID is assigned by the
// store on insert and never changes afterwards.
type Base struct {
	ID int64
	Audit
}

func (b *Base) RecordID() int64 {
	return b.ID
}

func (b *Base) SetRecordID(id int64) {
	b.ID = id
}

func (b *Base) AuditFields() *Audit {
	return &b.Audit
}

// Record is the minimal shape the generic repositories work against.
// Embedding Base satisfies it.
type Record interface {
	RecordID() int64
	SetRecordID(int64)
	AuditFields() *Audit
}

// Stamped is implemented by records under automatic optimistic control.
// The stamp is owned by the store: set on insert and advanced atomically on
// every successful update or delete precondition check. Application code
// only ever reads it back or carries it between requests.
type Stamped interface {
	Stamp() int64
	SetStamp(int64)
}
