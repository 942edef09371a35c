package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/catalog-api/internal/domain"
	"github.com/catalog-api/internal/dto"
	"github.com/catalog-api/internal/repository"
)

const maxNameLength = 255

// DepartmentResolver находит отдел по имени или создаёт его
type DepartmentResolver interface {
	FindOrCreate(ctx context.Context, name string) (*domain.Department, bool, error)
}

// DepartmentService определяет интерфейс бизнес-логики для отделов
type DepartmentService interface {
	DepartmentResolver

	Create(ctx context.Context, req *dto.CreateDepartmentRequest) (*domain.Department, error)
	List(ctx context.Context) ([]domain.DepartmentSummary, error)
	ListWithProducts(ctx context.Context) ([]domain.DepartmentWithProducts, error)
	GetByID(ctx context.Context, id int64) (*domain.DepartmentSummary, error)
	GetByIDWithProducts(ctx context.Context, id int64) (*domain.DepartmentWithProducts, error)
	Update(ctx context.Context, id int64, req *dto.UpdateDepartmentRequest) (*domain.Department, error)
	Delete(ctx context.Context, id int64) (*domain.Department, error)
}

type departmentService struct {
	deptRepo    repository.DepartmentRepository
	productRepo repository.ProductRepository
}

// NewDepartmentService создаёт новый экземпляр сервиса
func NewDepartmentService(deptRepo repository.DepartmentRepository, productRepo repository.ProductRepository) DepartmentService {
	return &departmentService{
		deptRepo:    deptRepo,
		productRepo: productRepo,
	}
}

func (s *departmentService) Create(ctx context.Context, req *dto.CreateDepartmentRequest) (*domain.Department, error) {
	name, err := normalizeDepartmentName(req.Name)
	if err != nil {
		return nil, err
	}

	// Имя уникально среди всех отделов
	existing, err := s.deptRepo.GetByName(ctx, name)
	if err == nil {
		return nil, &domain.DepartmentConflictError{Existing: existing}
	}
	if !errors.Is(err, domain.ErrDepartmentNotFound) {
		return nil, err
	}

	dept := &domain.Department{Name: name}
	if err := s.deptRepo.Create(ctx, dept); err != nil {
		if errors.Is(err, domain.ErrDuplicateDepartmentName) {
			return nil, s.conflict(ctx, name)
		}
		return nil, err
	}

	return dept, nil
}

// FindOrCreate возвращает отдел с точным именем name, создавая его при отсутствии.
// Поиск и создание не атомарны: если параллельный запрос успел создать отдел,
// БД вернёт нарушение уникальности и поиск повторяется.
func (s *departmentService) FindOrCreate(ctx context.Context, name string) (*domain.Department, bool, error) {
	name, err := normalizeDepartmentName(name)
	if err != nil {
		return nil, false, err
	}

	dept, err := s.deptRepo.GetByName(ctx, name)
	if err == nil {
		return dept, false, nil
	}
	if !errors.Is(err, domain.ErrDepartmentNotFound) {
		return nil, false, err
	}

	dept = &domain.Department{Name: name}
	if err := s.deptRepo.Create(ctx, dept); err != nil {
		if !errors.Is(err, domain.ErrDuplicateDepartmentName) {
			return nil, false, err
		}
		dept, err = s.deptRepo.GetByName(ctx, name)
		if err != nil {
			return nil, false, err
		}
		return dept, false, nil
	}

	return dept, true, nil
}

func (s *departmentService) List(ctx context.Context) ([]domain.DepartmentSummary, error) {
	departments, err := s.deptRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(departments))
	for i, dept := range departments {
		ids[i] = dept.ID
	}

	counts, err := s.productRepo.CountByDepartmentIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]domain.DepartmentSummary, len(departments))
	for i, dept := range departments {
		result[i] = domain.DepartmentSummary{
			Department:   dept,
			ProductCount: counts[dept.ID],
		}
	}
	return result, nil
}

func (s *departmentService) ListWithProducts(ctx context.Context) ([]domain.DepartmentWithProducts, error) {
	departments, err := s.deptRepo.ListWithProducts(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.DepartmentWithProducts, len(departments))
	for i, dept := range departments {
		result[i] = withProducts(dept)
	}
	return result, nil
}

func (s *departmentService) GetByID(ctx context.Context, id int64) (*domain.DepartmentSummary, error) {
	dept, err := s.deptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.productRepo.CountByDepartmentID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.DepartmentSummary{Department: *dept, ProductCount: count}, nil
}

func (s *departmentService) GetByIDWithProducts(ctx context.Context, id int64) (*domain.DepartmentWithProducts, error) {
	dept, err := s.deptRepo.GetByIDWithProducts(ctx, id)
	if err != nil {
		return nil, err
	}

	result := withProducts(*dept)
	return &result, nil
}

func (s *departmentService) Update(ctx context.Context, id int64, req *dto.UpdateDepartmentRequest) (*domain.Department, error) {
	dept, err := s.deptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, err := normalizeDepartmentName(req.Name)
	if err != nil {
		return nil, err
	}

	// Проверяем, что имя не занято другим отделом
	existing, err := s.deptRepo.GetByName(ctx, name)
	switch {
	case err == nil && existing.ID != id:
		return nil, &domain.DepartmentConflictError{Existing: existing}
	case err != nil && !errors.Is(err, domain.ErrDepartmentNotFound):
		return nil, err
	}

	dept.Name = name
	if err := s.deptRepo.Update(ctx, dept); err != nil {
		if errors.Is(err, domain.ErrDuplicateDepartmentName) {
			return nil, s.conflict(ctx, name)
		}
		return nil, err
	}

	return dept, nil
}

// Delete удаляет только пустой отдел; каскадного удаления товаров нет
func (s *departmentService) Delete(ctx context.Context, id int64) (*domain.Department, error) {
	dept, err := s.deptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.productRepo.CountByDepartmentID(ctx, id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &domain.DepartmentNotEmptyError{DepartmentID: id, ProductCount: count}
	}

	if err := s.deptRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrDepartmentHasProducts) {
			count, countErr := s.productRepo.CountByDepartmentID(ctx, id)
			if countErr != nil {
				return nil, countErr
			}
			return nil, &domain.DepartmentNotEmptyError{DepartmentID: id, ProductCount: count}
		}
		return nil, err
	}

	return dept, nil
}

func (s *departmentService) conflict(ctx context.Context, name string) error {
	existing, err := s.deptRepo.GetByName(ctx, name)
	if err != nil {
		return &domain.DepartmentConflictError{}
	}
	return &domain.DepartmentConflictError{Existing: existing}
}

func withProducts(dept domain.Department) domain.DepartmentWithProducts {
	products := dept.Products
	if products == nil {
		products = []domain.Product{}
	}
	dept.Products = nil

	return domain.DepartmentWithProducts{
		Department:   dept,
		ProductCount: int64(len(products)),
		Products:     products,
	}
}

func normalizeDepartmentName(raw string) (string, error) {
	name := strings.TrimSpace(raw)

	verr := domain.NewValidationError()
	switch {
	case name == "":
		verr.Add("name", "department name cannot be empty")
	case utf8.RuneCountInString(name) > maxNameLength:
		verr.Add("name", "department name is too long")
	}
	if verr.HasErrors() {
		return "", verr
	}

	return name, nil
}
