package repo

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mkarpuk/rowguard/internal/logging"
	"github.com/mkarpuk/rowguard/internal/models"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// testItem is an automatic-optimistic entity used by the generic
// repository tests.
type testItem struct {
	models.Base
	Name       string
	Code       int64
	RowVersion int64
}

func (i *testItem) Stamp() int64     { return i.RowVersion }
func (i *testItem) SetStamp(v int64) { i.RowVersion = v }

type itemMapper struct{}

func (itemMapper) Table() string { return "items" }

func (itemMapper) SelectColumns() []string {
	return []string{"id", "name", "code", "row_version", "created", "created_by", "modified", "modified_by"}
}

func (itemMapper) ScanRow(s RowScanner) (*testItem, error) {
	i := &testItem{}
	err := s.Scan(&i.ID, &i.Name, &i.Code, &i.RowVersion,
		&i.Created, &i.CreatedBy, &i.Modified, &i.ModifiedBy)
	if err != nil {
		return nil, err
	}
	return i, nil
}

func (itemMapper) InsertColumns() []string {
	return []string{"name", "code", "created", "created_by"}
}

func (itemMapper) InsertValues(i *testItem) []any {
	return []any{i.Name, i.Code, i.Created, i.CreatedBy}
}

func (itemMapper) UpdateColumns() []string {
	return []string{"name", "code"}
}

func (itemMapper) UpdateValues(i *testItem) []any {
	return []any{i.Name, i.Code}
}

func itemColumns() []string {
	return itemMapper{}.SelectColumns()
}

func addItemRow(rows *sqlmock.Rows, id int64, name string, code, stamp int64, modifiedBy any, modified any) *sqlmock.Rows {
	return rows.AddRow(id, name, code, stamp, time.Unix(100, 0).UTC(), "creator", modified, modifiedBy)
}
