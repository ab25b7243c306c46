package customers

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mkarpuk/rowguard/internal/logging"
	"github.com/mkarpuk/rowguard/internal/models"
	"github.com/mkarpuk/rowguard/internal/result"
)

var (
	insertQ = regexp.QuoteMeta(`INSERT INTO customers (name, bank_account, created, created_by) VALUES ($1, $2, $3, $4) RETURNING id, row_version`)
	updateQ = regexp.QuoteMeta(`UPDATE customers SET name = $1, bank_account = $2, modified = $3, modified_by = $4, row_version = row_version + 1 WHERE id = $5 AND row_version = $6 RETURNING row_version`)
	selectQ = regexp.QuoteMeta(`SELECT id, name, bank_account, row_version, created, created_by, modified, modified_by FROM customers WHERE id = $1`)
	deleteQ = regexp.QuoteMeta(`DELETE FROM customers WHERE id = $1 AND row_version = $2`)
)

func testRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewRepository(db, log), mock
}

func customerCols() []string {
	return []string{"id", "name", "bank_account", "row_version", "created", "created_by", "modified", "modified_by"}
}

func TestAdd_AssignsIDAndInitialStamp(t *testing.T) {
	r, mock := testRepo(t)

	mock.ExpectQuery(insertQ).
		WithArgs("Acme", int64(1234), sqlmock.AnyArg(), "u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "row_version"}).AddRow(int64(7), int64(1)))

	c := &models.Customer{Name: "Acme", BankAccount: 1234}
	res := r.Add(context.Background(), c, "u1")

	if res.Code != result.CodeCreated {
		t.Fatalf("expected created, got %v: %s", res.Code, res.FirstMessage())
	}
	if c.ID != 7 || c.RowVersion != 1 {
		t.Fatalf("store-assigned id and stamp missing: id=%d stamp=%d", c.ID, c.RowVersion)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpdate_SuccessCarriesAdvancedStamp(t *testing.T) {
	r, mock := testRepo(t)

	rows := sqlmock.NewRows(customerCols()).
		AddRow(int64(7), "Acme", int64(1234), int64(3), time.Unix(100, 0).UTC(), "creator", nil, nil)
	mock.ExpectQuery(selectQ).WithArgs(int64(7)).WillReturnRows(rows)
	mock.ExpectQuery(updateQ).
		WithArgs("Acme Ltd", int64(1234), sqlmock.AnyArg(), "u2", int64(7), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"row_version"}).AddRow(int64(4)))

	c := &models.Customer{Name: "Acme Ltd", BankAccount: 1234, RowVersion: 3}
	c.ID = 7
	res := r.Update(context.Background(), c, "u2")

	if !res.Success() {
		t.Fatalf("expected success, got %v: %s", res.Code, res.FirstMessage())
	}
	if c.RowVersion != 4 {
		t.Fatalf("stamp must carry the store-advanced value, got %d", c.RowVersion)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpdate_StaleStampNamesLastModifier(t *testing.T) {
	r, mock := testRepo(t)

	modified := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(customerCols()).
		AddRow(int64(7), "Acme", int64(1234), int64(5), time.Unix(100, 0).UTC(), "creator", modified, "rival")
	mock.ExpectQuery(selectQ).WithArgs(int64(7)).WillReturnRows(rows)
	mock.ExpectQuery(updateQ).
		WillReturnRows(sqlmock.NewRows([]string{"row_version"}))

	c := &models.Customer{Name: "Acme Ltd", BankAccount: 1234, RowVersion: 3}
	c.ID = 7
	res := r.Update(context.Background(), c, "u2")

	if res.Code != result.CodeConflict {
		t.Fatalf("expected conflict, got %v", res.Code)
	}
	if !regexp.MustCompile(`rival`).MatchString(res.FirstMessage()) {
		t.Fatalf("conflict message should name the last modifier: %q", res.FirstMessage())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpdate_DuplicateBankAccountNamesField(t *testing.T) {
	r, mock := testRepo(t)

	rows := sqlmock.NewRows(customerCols()).
		AddRow(int64(7), "Acme", int64(1234), int64(3), time.Unix(100, 0).UTC(), "creator", nil, nil)
	mock.ExpectQuery(selectQ).WithArgs(int64(7)).WillReturnRows(rows)
	mock.ExpectQuery(updateQ).WillReturnError(&pgconn.PgError{
		Code:           "23505",
		TableName:      "customers",
		ConstraintName: "ix_customers_bank_account",
		Detail:         `Key (bank_account)=(9999) already exists.`,
	})

	c := &models.Customer{Name: "Acme", BankAccount: 9999, RowVersion: 3}
	c.ID = 7
	res := r.Update(context.Background(), c, "u2")

	if res.Code != result.CodeConflict {
		t.Fatalf("expected conflict, got %v", res.Code)
	}
	if res.Messages[0].Field != "bank_account" {
		t.Fatalf("conflict should name the bank account field, got %q", res.Messages[0].Field)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDelete_StaleStampIsConflict(t *testing.T) {
	r, mock := testRepo(t)

	mock.ExpectExec(deleteQ).WithArgs(int64(7), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	rows := sqlmock.NewRows(customerCols()).
		AddRow(int64(7), "Acme", int64(1234), int64(5), time.Unix(100, 0).UTC(), "creator", nil, nil)
	mock.ExpectQuery(selectQ).WithArgs(int64(7)).WillReturnRows(rows)

	c := &models.Customer{RowVersion: 2}
	c.ID = 7
	res := r.Delete(context.Background(), c)

	if res.Code != result.CodeConflict {
		t.Fatalf("expected conflict, got %v", res.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDelete_Success(t *testing.T) {
	r, mock := testRepo(t)

	mock.ExpectExec(deleteQ).WithArgs(int64(7), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c := &models.Customer{RowVersion: 2}
	c.ID = 7
	res := r.Delete(context.Background(), c)

	if !res.Success() {
		t.Fatalf("expected success, got %v", res.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
