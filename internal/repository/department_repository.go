package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/catalog-api/internal/domain"
	"gorm.io/gorm"
)

// DepartmentRepository определяет интерфейс для работы с отделами
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	GetByID(ctx context.Context, id int64) (*domain.Department, error)
	GetByName(ctx context.Context, name string) (*domain.Department, error)
	GetByIDWithProducts(ctx context.Context, id int64) (*domain.Department, error)
	List(ctx context.Context) ([]domain.Department, error)
	ListWithProducts(ctx context.Context) ([]domain.Department, error)
	Update(ctx context.Context, dept *domain.Department) error
	Delete(ctx context.Context, id int64) error
}

type departmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository создаёт новый экземпляр репозитория
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	err := r.db.WithContext(ctx).Create(dept).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateDepartmentName
	}
	return err
}

func (r *departmentRepository) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	var dept domain.Department
	err := r.db.WithContext(ctx).First(&dept, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDepartmentNotFound
		}
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) GetByName(ctx context.Context, name string) (*domain.Department, error) {
	var dept domain.Department
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&dept).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDepartmentNotFound
		}
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) GetByIDWithProducts(ctx context.Context, id int64) (*domain.Department, error) {
	var dept domain.Department
	err := r.db.WithContext(ctx).
		Preload("Products", newestFirst).
		First(&dept, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDepartmentNotFound
		}
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	var departments []domain.Department
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&departments).Error
	return departments, err
}

func (r *departmentRepository) ListWithProducts(ctx context.Context) ([]domain.Department, error) {
	var departments []domain.Department
	err := r.db.WithContext(ctx).
		Preload("Products", newestFirst).
		Order("name ASC").
		Find(&departments).Error
	return departments, err
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	err := r.db.WithContext(ctx).Save(dept).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateDepartmentName
	}
	return err
}

// Delete удаляет отдел. Нарушение внешнего ключа означает, что у отдела
// появились товары после проверки в сервисе.
func (r *departmentRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&domain.Department{}, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
			return domain.ErrDepartmentHasProducts
		}
		return fmt.Errorf("delete department %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrDepartmentNotFound
	}
	return nil
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}
