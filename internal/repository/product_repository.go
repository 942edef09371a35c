package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/catalog-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository определяет интерфейс для работы с товарами
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, query domain.ProductQuery) ([]domain.Product, int64, error)
	CountByDepartmentID(ctx context.Context, departmentID int64) (int64, error)
	CountByDepartmentIDs(ctx context.Context, departmentIDs []int64) (map[int64]int64, error)
	BulkCreateIgnoreDuplicates(ctx context.Context, products []domain.Product, batchSize int) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создаёт новый экземпляр репозитория
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	err := r.db.WithContext(ctx).Omit("Department").Create(product).Error
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrDuplicateProduct
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.ErrDepartmentNotFound
	}
	return err
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).
		Preload("Department").
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// List возвращает страницу товаров и общее число совпадений.
// Фильтр по department_id важнее фильтра по имени отдела.
func (r *productRepository) List(ctx context.Context, query domain.ProductQuery) ([]domain.Product, int64, error) {
	var total int64
	if err := r.filtered(ctx, query).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	var products []domain.Product
	err := r.filtered(ctx, query).
		Preload("Department").
		Order("products.created_at DESC").
		Order("products.id DESC").
		Limit(query.Limit).
		Offset(query.Offset()).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	return products, total, nil
}

func (r *productRepository) filtered(ctx context.Context, query domain.ProductQuery) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&domain.Product{})

	switch {
	case query.DepartmentID != nil:
		db = db.Where("products.department_id = ?", *query.DepartmentID)
	case query.DepartmentName != nil:
		db = db.Joins("JOIN departments ON departments.id = products.department_id").
			Where("departments.name = ?", *query.DepartmentName)
	}

	return db
}

func (r *productRepository) CountByDepartmentID(ctx context.Context, departmentID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("department_id = ?", departmentID).
		Count(&count).Error
	return count, err
}

func (r *productRepository) CountByDepartmentIDs(ctx context.Context, departmentIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(departmentIDs))
	if len(departmentIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		DepartmentID int64
		Count        int64
	}
	err := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Select("department_id, COUNT(*) AS count").
		Where("department_id IN ?", departmentIDs).
		Group("department_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count products by department: %w", err)
	}

	for _, row := range rows {
		counts[row.DepartmentID] = row.Count
	}
	return counts, nil
}

// BulkCreateIgnoreDuplicates вставляет товары пачками в одной транзакции.
// Строки, нарушающие уникальность (name, department_id), пропускаются.
// Возвращает число реально вставленных строк.
func (r *productRepository) BulkCreateIgnoreDuplicates(ctx context.Context, products []domain.Product, batchSize int) (int64, error) {
	if len(products) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = len(products)
	}

	var inserted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for start := 0; start < len(products); start += batchSize {
			batch := products[start:min(start+batchSize, len(products))]

			result := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Omit("Department").
				Create(&batch)
			if result.Error != nil {
				return result.Error
			}
			inserted += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("bulk insert products: %w", err)
	}

	return inserted, nil
}
