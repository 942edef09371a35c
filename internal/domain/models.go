package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Department представляет отдел каталога
type Department struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Products []Product `json:"-" gorm:"foreignKey:DepartmentID;constraint:OnDelete:RESTRICT"`
}

// TableName задаёт имя таблицы для GORM
func (Department) TableName() string {
	return "departments"
}

// Product представляет товар, принадлежащий ровно одному отделу
type Product struct {
	ID           int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string          `json:"name" gorm:"type:varchar(255);not null"`
	Description  *string         `json:"description" gorm:"type:text"`
	Price        decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"`
	DepartmentID int64           `json:"department_id" gorm:"not null;index"`
	ImageURL     *string         `json:"image_url" gorm:"type:varchar(2048)"`
	CreatedAt    time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"autoUpdateTime"`

	Department *Department `json:"-" gorm:"foreignKey:DepartmentID"`
}

// TableName задаёт имя таблицы для GORM
func (Product) TableName() string {
	return "products"
}

// DepartmentSummary - отдел с количеством товаров, без самих товаров
type DepartmentSummary struct {
	Department
	ProductCount int64
}

// DepartmentWithProducts - отдел вместе с загруженными товарами (новые первыми)
type DepartmentWithProducts struct {
	Department
	ProductCount int64
	Products     []Product
}

// ProductQuery - параметры выборки товаров.
// DepartmentID имеет приоритет над DepartmentName.
type ProductQuery struct {
	Page           int
	Limit          int
	DepartmentID   *int64
	DepartmentName *string
}

// Offset возвращает смещение для текущей страницы
func (q ProductQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ProductPage - страница товаров с итоговыми счётчиками
type ProductPage struct {
	Products   []Product
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// TotalPages возвращает ceil(total/limit)
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
