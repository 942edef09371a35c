package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Определение бизнес-ошибок
var (
	ErrDepartmentNotFound      = errors.New("department not found")
	ErrProductNotFound         = errors.New("product not found")
	ErrDuplicateDepartmentName = errors.New("department with this name already exists")
	ErrDuplicateProduct        = errors.New("product with this name already exists in the department")
	ErrDepartmentHasProducts   = errors.New("cannot delete department with existing products")
	ErrInvalidInput            = errors.New("validation error")
)

// ValidationError перечисляет все некорректные поля запроса
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError создаёт пустую ошибку валидации
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add добавляет сообщение для поля (первое сообщение сохраняется)
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// HasErrors сообщает, есть ли хотя бы одно некорректное поле
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// FieldNames возвращает отсортированный список полей
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, name := range e.FieldNames() {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return fmt.Sprintf("validation error: %s", strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// DepartmentConflictError возвращается, когда имя уже занято другим отделом
type DepartmentConflictError struct {
	Existing *Department
}

func (e *DepartmentConflictError) Error() string {
	if e.Existing == nil {
		return ErrDuplicateDepartmentName.Error()
	}
	return fmt.Sprintf("%s: id=%d name=%q", ErrDuplicateDepartmentName, e.Existing.ID, e.Existing.Name)
}

func (e *DepartmentConflictError) Is(target error) bool {
	return target == ErrDuplicateDepartmentName
}

// DepartmentNotEmptyError возвращается при попытке удалить отдел с товарами
type DepartmentNotEmptyError struct {
	DepartmentID int64
	ProductCount int64
}

func (e *DepartmentNotEmptyError) Error() string {
	return fmt.Sprintf("%s: department %d has %d products", ErrDepartmentHasProducts, e.DepartmentID, e.ProductCount)
}

func (e *DepartmentNotEmptyError) Is(target error) bool {
	return target == ErrDepartmentHasProducts
}
