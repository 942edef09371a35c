package service

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/catalog-api/internal/domain"
	"github.com/catalog-api/internal/dto"
	"github.com/catalog-api/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// NUMERIC(10,2)
var maxPrice = decimal.New(1, 8)

// ProductService определяет интерфейс бизнес-логики для товаров
type ProductService interface {
	Create(ctx context.Context, req *dto.CreateProductRequest) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, query domain.ProductQuery) (*domain.ProductPage, error)
}

type productService struct {
	productRepo repository.ProductRepository
	departments DepartmentResolver
	validate    *validator.Validate
}

// NewProductService создаёт новый экземпляр сервиса
func NewProductService(productRepo repository.ProductRepository, departments DepartmentResolver) ProductService {
	return &productService{
		productRepo: productRepo,
		departments: departments,
		validate:    validator.New(),
	}
}

func (s *productService) Create(ctx context.Context, req *dto.CreateProductRequest) (*domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	departmentName := strings.TrimSpace(req.Department)

	price, err := s.validateCreate(name, departmentName, req)
	if err != nil {
		return nil, err
	}

	dept, _, err := s.departments.FindOrCreate(ctx, departmentName)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:         name,
		Description:  nonEmpty(req.Description),
		Price:        price,
		DepartmentID: dept.ID,
		ImageURL:     nonEmpty(req.ImageURL),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	product.Department = dept
	return product, nil
}

// validateCreate собирает все ошибки сразу, чтобы клиент увидел полный список полей.
// Возвращает цену, округлённую до копеек.
func (s *productService) validateCreate(name, departmentName string, req *dto.CreateProductRequest) (decimal.Decimal, error) {
	verr := domain.NewValidationError()

	switch {
	case name == "":
		verr.Add("name", "name is required")
	case utf8.RuneCountInString(name) > maxNameLength:
		verr.Add("name", "name is too long")
	}

	switch {
	case departmentName == "":
		verr.Add("department", "department is required")
	case utf8.RuneCountInString(departmentName) > maxNameLength:
		verr.Add("department", "department name is too long")
	}

	price, ok, err := parsePrice(req.Price)
	switch {
	case err != nil:
		verr.Add("price", "price must be a number")
	case !ok:
		verr.Add("price", "price is required")
	case price.IsNegative():
		verr.Add("price", "price must be a non-negative number")
	case price.GreaterThanOrEqual(maxPrice):
		verr.Add("price", "price is too large")
	}

	if url := nonEmpty(req.ImageURL); url != nil {
		if err := s.validate.Var(*url, "url"); err != nil {
			verr.Add("image_url", "image_url must be a valid URL")
		}
	}

	if verr.HasErrors() {
		return decimal.Zero, verr
	}
	return price, nil
}

// parsePrice разбирает цену из JSON-числа или строки; ok=false, если цены нет
func parsePrice(raw json.RawMessage) (decimal.Decimal, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, false, nil
	}

	var price decimal.Decimal
	if err := price.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, true, err
	}
	return price.Round(2), true, nil
}

func (s *productService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

func (s *productService) List(ctx context.Context, query domain.ProductQuery) (*domain.ProductPage, error) {
	if query.Page < 1 {
		query.Page = DefaultPage
	}
	if query.Limit < 1 {
		query.Limit = DefaultLimit
	}
	// смещение (page-1)*limit должно помещаться в int
	if query.Page > math.MaxInt/query.Limit {
		verr := domain.NewValidationError()
		verr.Add("page", "page is out of range")
		return nil, verr
	}

	products, total, err := s.productRepo.List(ctx, query)
	if err != nil {
		return nil, err
	}

	return &domain.ProductPage{
		Products:   products,
		Total:      total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: domain.TotalPages(total, query.Limit),
	}, nil
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
