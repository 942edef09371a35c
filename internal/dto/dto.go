package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CreateDepartmentRequest - запрос на создание отдела
type CreateDepartmentRequest struct {
	Name string `json:"name" validate:"required"`
}

// UpdateDepartmentRequest - запрос на переименование отдела
type UpdateDepartmentRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateProductRequest - запрос на создание товара.
// Поля проверяются в сервисе, чтобы вернуть полный список ошибок.
// Цена принимается как число или строка и разбирается там же.
type CreateProductRequest struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       json.RawMessage `json:"price"`
	Department  string          `json:"department"`
	ImageURL    *string         `json:"image_url"`
}

// ListProductsQuery - параметры запроса списка товаров
type ListProductsQuery struct {
	Page         int     `validate:"min=1"`
	Limit        int     `validate:"min=1,max=100"`
	Department   *string `validate:"omitempty,min=1"`
	DepartmentID *int64  `validate:"omitempty,min=1"`
}

// DepartmentQuery - параметры запроса отдела
type DepartmentQuery struct {
	IncludeProducts bool
}

// DepartmentRef - краткая ссылка на отдел
type DepartmentRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DepartmentRecord - отдел без счётчиков
type DepartmentRecord struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DepartmentResponse - отдел с количеством товаров
type DepartmentResponse struct {
	DepartmentRecord
	ProductCount int64 `json:"product_count"`
}

// DepartmentWithProductsResponse - отдел вместе с товарами
type DepartmentWithProductsResponse struct {
	DepartmentRecord
	ProductCount int64             `json:"product_count"`
	Products     []ProductResponse `json:"products"`
}

// DepartmentListResponse - список отделов без товаров
type DepartmentListResponse struct {
	Departments []DepartmentResponse `json:"departments"`
	Total       int                  `json:"total"`
}

// DepartmentWithProductsListResponse - список отделов с товарами
type DepartmentWithProductsListResponse struct {
	Departments []DepartmentWithProductsResponse `json:"departments"`
	Total       int                              `json:"total"`
}

// DepartmentMutationResponse - ответ на создание и обновление отдела
type DepartmentMutationResponse struct {
	Message    string           `json:"message"`
	Department DepartmentRecord `json:"department"`
}

// DeleteDepartmentResponse - ответ на удаление отдела
type DeleteDepartmentResponse struct {
	Message    string        `json:"message"`
	Department DepartmentRef `json:"department"`
}

// Money - денежная сумма, в JSON всегда строка с двумя знаками после точки ("1.00")
type Money struct {
	decimal.Decimal
}

// NewMoney оборачивает decimal в Money
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}

// ProductResponse - ответ с данными товара
type ProductResponse struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Description  *string        `json:"description"`
	Price        Money          `json:"price"`
	DepartmentID int64          `json:"department_id"`
	ImageURL     *string        `json:"image_url"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Department   *DepartmentRef `json:"department,omitempty"`
}

// CreateProductResponse - ответ на создание товара
type CreateProductResponse struct {
	Message string          `json:"message"`
	Product ProductResponse `json:"product"`
}

// ProductFilters - фильтры, применённые к списку товаров
type ProductFilters struct {
	Department   *string `json:"department"`
	DepartmentID *int64  `json:"department_id"`
}

// ProductListResponse - страница товаров
type ProductListResponse struct {
	Products   []ProductResponse `json:"products"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"totalPages"`
	Filters    ProductFilters    `json:"filters"`
}

// HealthResponse - ответ проверки доступности хранилища
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ErrorResponse - стандартный ответ с ошибкой
type ErrorResponse struct {
	Error        string            `json:"error"`
	Message      string            `json:"message,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
	Department   *DepartmentRef    `json:"department,omitempty"`
	ProductCount *int64            `json:"product_count,omitempty"`
}
