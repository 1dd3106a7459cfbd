package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/smallbiznis/facturador/internal/tax/domain"
	"github.com/smallbiznis/facturador/pkg/db"
	"github.com/smallbiznis/facturador/pkg/db/option"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) taxdomain.Repository {
	return &repository{db: db}
}

func (r *repository) GetActiveByCode(ctx context.Context, code string) (*taxdomain.TaxDefinition, error) {
	var def taxdomain.TaxDefinition
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, name, code, rate, description, is_enabled, created_at, updated_at
		 FROM tax_definitions
		 WHERE code = ? AND is_enabled = true
		 ORDER BY id DESC
		 LIMIT 1`,
		code,
	).Scan(&def).Error
	if err != nil {
		return nil, err
	}
	if def.ID == 0 {
		return nil, nil
	}
	return &def, nil
}

func (r *repository) Create(ctx context.Context, def *taxdomain.TaxDefinition) error {
	err := r.db.WithContext(ctx).Exec(
		`INSERT INTO tax_definitions (
			id, name, code, rate, description, is_enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		def.ID,
		def.Name,
		def.Code,
		def.Rate,
		def.Description,
		def.IsEnabled,
		def.CreatedAt,
		def.UpdatedAt,
	).Error
	if db.IsDuplicateKeyErr(err) {
		return taxdomain.ErrDuplicate
	}
	return err
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*taxdomain.TaxDefinition, error) {
	var def taxdomain.TaxDefinition
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, name, code, rate, description, is_enabled, created_at, updated_at
		 FROM tax_definitions
		 WHERE id = ?`,
		id,
	).Scan(&def).Error
	if err != nil {
		return nil, err
	}
	if def.ID == 0 {
		return nil, nil
	}
	return &def, nil
}

func (r *repository) List(ctx context.Context, filter taxdomain.ListRequest) ([]taxdomain.TaxDefinition, error) {
	var items []taxdomain.TaxDefinition
	stmt := r.db.WithContext(ctx).Model(&taxdomain.TaxDefinition{})

	if filter.Name != "" {
		stmt = stmt.Where("name = ?", filter.Name)
	}
	if filter.Code != "" {
		stmt = stmt.Where("code = ?", filter.Code)
	}
	if filter.IsEnabled != nil {
		stmt = stmt.Where("is_enabled = ?", *filter.IsEnabled)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
		"code":       true,
	})).Apply(stmt)

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, def *taxdomain.TaxDefinition) error {
	err := r.db.WithContext(ctx).Exec(
		`UPDATE tax_definitions
		 SET name = ?, rate = ?, description = ?, is_enabled = ?, updated_at = ?
		 WHERE id = ?`,
		def.Name,
		def.Rate,
		def.Description,
		def.IsEnabled,
		def.UpdatedAt,
		def.ID,
	).Error
	if db.IsDuplicateKeyErr(err) {
		return taxdomain.ErrDuplicate
	}
	return err
}
