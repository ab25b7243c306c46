// Package customers binds the automatic-optimistic repository to the
// customers table. The store owns the row version: it is assigned on
// insert and compare-and-advanced on every update or delete.
package customers

import (
	"github.com/mkarpuk/rowguard/internal/dbx"
	"github.com/mkarpuk/rowguard/internal/logging"
	"github.com/mkarpuk/rowguard/internal/models"
	"github.com/mkarpuk/rowguard/internal/repo"
)

type Repository struct {
	*repo.OptimisticRepository[*models.Customer]
}

func NewRepository(db dbx.DBTX, log logging.Logger) *Repository {
	return &Repository{
		OptimisticRepository: repo.NewOptimisticRepository[*models.Customer](db, mapper{}, log),
	}
}

type mapper struct{}

func (mapper) Table() string {
	return "customers"
}

func (mapper) SelectColumns() []string {
	return []string{"id", "name", "bank_account", "row_version", "created", "created_by", "modified", "modified_by"}
}

func (mapper) ScanRow(s repo.RowScanner) (*models.Customer, error) {
	c := &models.Customer{}
	err := s.Scan(&c.ID, &c.Name, &c.BankAccount, &c.RowVersion,
		&c.Created, &c.CreatedBy, &c.Modified, &c.ModifiedBy)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (mapper) InsertColumns() []string {
	return []string{"name", "bank_account", "created", "created_by"}
}

func (mapper) InsertValues(c *models.Customer) []any {
	return []any{c.Name, c.BankAccount, c.Created, c.CreatedBy}
}

func (mapper) UpdateColumns() []string {
	return []string{"name", "bank_account"}
}

func (mapper) UpdateValues(c *models.Customer) []any {
	return []any{c.Name, c.BankAccount}
}
