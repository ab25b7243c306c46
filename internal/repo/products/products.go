// Package products binds the manual-concurrency repository to the
// products table. The mutable columns form two groups with independent
// counters: info (name, description / version_info) and quantities
// (units_in_stock, units_on_order / version_quantities). Editing one
// group never moves the other group's counter.
package products

import (
	"context"
	"database/sql"
	"time"

	"github.com/mkarpuk/rowguard/internal/copier"
	"github.com/mkarpuk/rowguard/internal/logging"
	"github.com/mkarpuk/rowguard/internal/models"
	"github.com/mkarpuk/rowguard/internal/repo"
	"github.com/mkarpuk/rowguard/internal/result"
)

type Repository struct {
	*repo.ManualRepository[*models.Product]
}

func NewRepository(db *sql.DB, lockTimeout time.Duration, log logging.Logger) *Repository {
	return &Repository{
		ManualRepository: repo.NewManualRepository[*models.Product](db, mapper{}, stampPolicy{}, lockTimeout, log),
	}
}

// UpdateInfo writes the info group only: version_info must match and is
// advanced by 1, version_quantities stays untouched.
func (r *Repository) UpdateInfo(ctx context.Context, dto *models.ProductInfo, userID string) *result.Result[*models.ProductInfo] {
	res := r.UpdateRow(ctx, dto.ID,
		func(p *models.Product) error { return copier.Copy(dto, p, "ID", "VersionInfo") },
		func(p *models.Product) bool { return dto.VersionInfo == p.VersionInfo },
		func(p *models.Product) bool { p.VersionInfo++; return true },
		userID)
	return result.Map(res, models.ProductInfoFrom)
}

// UpdateQuantities writes the quantities group only: version_quantities
// must match and is advanced by 1, version_info stays untouched.
func (r *Repository) UpdateQuantities(ctx context.Context, dto *models.ProductQuantities, userID string) *result.Result[*models.ProductQuantities] {
	res := r.UpdateRow(ctx, dto.ID,
		func(p *models.Product) error { return copier.Copy(dto, p, "ID", "VersionQuantities") },
		func(p *models.Product) bool { return dto.VersionQuantities == p.VersionQuantities },
		func(p *models.Product) bool { p.VersionQuantities++; return true },
		userID)
	return result.Map(res, models.ProductQuantitiesFrom)
}

// stampPolicy maintains both counters for whole-record writes.
type stampPolicy struct{}

func (stampPolicy) InitStamps(p *models.Product) bool {
	p.VersionInfo = 1
	p.VersionQuantities = 1
	return true
}

func (stampPolicy) ValidateStamps(incoming, persisted *models.Product) bool {
	return incoming.VersionInfo == persisted.VersionInfo &&
		incoming.VersionQuantities == persisted.VersionQuantities
}

func (stampPolicy) AdvanceStamps(incoming, persisted *models.Product) bool {
	persisted.VersionInfo++
	persisted.VersionQuantities++
	return true
}

func (stampPolicy) StampFields() []string {
	return []string{"VersionInfo", "VersionQuantities"}
}

type mapper struct{}

func (mapper) Table() string {
	return "products"
}

func (mapper) SelectColumns() []string {
	return []string{"id", "name", "description", "units_in_stock", "units_on_order",
		"version_info", "version_quantities", "created", "created_by", "modified", "modified_by"}
}

func (mapper) ScanRow(s repo.RowScanner) (*models.Product, error) {
	p := &models.Product{}
	err := s.Scan(&p.ID, &p.Name, &p.Description, &p.UnitsInStock, &p.UnitsOnOrder,
		&p.VersionInfo, &p.VersionQuantities,
		&p.Created, &p.CreatedBy, &p.Modified, &p.ModifiedBy)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (mapper) InsertColumns() []string {
	return []string{"name", "description", "units_in_stock", "units_on_order",
		"version_info", "version_quantities", "created", "created_by"}
}

func (mapper) InsertValues(p *models.Product) []any {
	return []any{p.Name, p.Description, p.UnitsInStock, p.UnitsOnOrder,
		p.VersionInfo, p.VersionQuantities, p.Created, p.CreatedBy}
}

func (mapper) UpdateColumns() []string {
	return []string{"name", "description", "units_in_stock", "units_on_order",
		"version_info", "version_quantities"}
}

func (mapper) UpdateValues(p *models.Product) []any {
	return []any{p.Name, p.Description, p.UnitsInStock, p.UnitsOnOrder,
		p.VersionInfo, p.VersionQuantities}
}
