// Package importer загружает товары из CSV, сводя названия отделов
// к нормализованным записям departments без дубликатов.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/catalog-api/internal/domain"
	"github.com/catalog-api/internal/repository"
	"github.com/catalog-api/internal/service"
	"github.com/shopspring/decimal"
)

const maxNameLength = 255

// NUMERIC(10,2)
var maxPrice = decimal.New(1, 8)

// DefaultDepartments - отделы, создаваемые командой seed
var DefaultDepartments = []string{
	"Electronics",
	"Clothing",
	"Home & Garden",
	"Kitchen & Dining",
}

// Result - итог импорта. Счётчики могут различаться, сообщаются все.
type Result struct {
	Read               int
	Valid              int
	Inserted           int64
	DepartmentsCreated int
}

// Importer выполняет массовый импорт товаров
type Importer struct {
	departments service.DepartmentResolver
	products    repository.ProductRepository
	batchSize   int
	logger      *slog.Logger
}

// New создаёт импортёр
func New(departments service.DepartmentResolver, products repository.ProductRepository, batchSize int, logger *slog.Logger) *Importer {
	return &Importer{
		departments: departments,
		products:    products,
		batchSize:   batchSize,
		logger:      logger,
	}
}

// ImportFile открывает CSV-файл и импортирует его
func (i *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	rows, err := ReadRows(f)
	if err != nil {
		return nil, err
	}

	return i.Import(ctx, rows)
}

type validRow struct {
	name        string
	description *string
	price       decimal.Decimal
	department  string
}

// Import валидирует строки, один раз на каждое имя находит или создаёт отдел
// и вставляет все валидные товары одной массовой операцией.
// Некорректные строки пропускаются и логируются.
func (i *Importer) Import(ctx context.Context, rows []Row) (*Result, error) {
	result := &Result{Read: len(rows)}

	valid := make([]validRow, 0, len(rows))
	for _, row := range rows {
		vr, reason := validate(row)
		if reason != "" {
			i.logger.Warn("skipping invalid row",
				slog.Int("line", row.Line),
				slog.String("reason", reason),
				slog.String("name", row.Name),
				slog.String("department", row.Department),
			)
			continue
		}
		valid = append(valid, vr)
	}
	result.Valid = len(valid)

	if len(valid) == 0 {
		i.logger.Info("no valid products to import", slog.Int("read", result.Read))
		return result, nil
	}

	departmentIDs := make(map[string]int64)
	for _, vr := range valid {
		if _, ok := departmentIDs[vr.department]; ok {
			continue
		}

		dept, created, err := i.departments.FindOrCreate(ctx, vr.department)
		if err != nil {
			return nil, fmt.Errorf("resolve department %q: %w", vr.department, err)
		}
		if created {
			result.DepartmentsCreated++
		}
		departmentIDs[vr.department] = dept.ID
	}

	products := make([]domain.Product, len(valid))
	for idx, vr := range valid {
		products[idx] = domain.Product{
			Name:         vr.name,
			Description:  vr.description,
			Price:        vr.price,
			DepartmentID: departmentIDs[vr.department],
		}
	}

	inserted, err := i.products.BulkCreateIgnoreDuplicates(ctx, products, i.batchSize)
	if err != nil {
		return nil, err
	}
	result.Inserted = inserted

	i.logger.Info("import finished",
		slog.Int("read", result.Read),
		slog.Int("valid", result.Valid),
		slog.Int64("inserted", result.Inserted),
		slog.Int("departments_created", result.DepartmentsCreated),
	)

	return result, nil
}

// SeedDepartments создаёт отсутствующие отделы; возвращает число созданных
func (i *Importer) SeedDepartments(ctx context.Context, names []string) (int, error) {
	created := 0
	for _, name := range names {
		_, ok, err := i.departments.FindOrCreate(ctx, name)
		if err != nil {
			return created, fmt.Errorf("seed department %q: %w", name, err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func validate(row Row) (validRow, string) {
	if row.Malformed != "" {
		return validRow{}, "malformed line: " + row.Malformed
	}

	name := strings.TrimSpace(row.Name)
	if name == "" {
		return validRow{}, "missing name"
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return validRow{}, "name too long"
	}

	department := strings.TrimSpace(row.Department)
	if department == "" {
		return validRow{}, "missing department"
	}
	if utf8.RuneCountInString(department) > maxNameLength {
		return validRow{}, "department name too long"
	}

	price, err := decimal.NewFromString(strings.TrimSpace(row.Price))
	if err != nil {
		return validRow{}, "invalid price"
	}
	if price.IsNegative() {
		return validRow{}, "negative price"
	}
	if price.Round(2).GreaterThanOrEqual(maxPrice) {
		return validRow{}, "price out of range"
	}

	vr := validRow{
		name:       name,
		price:      price.Round(2),
		department: department,
	}
	if desc := strings.TrimSpace(row.Description); desc != "" {
		vr.description = &desc
	}

	return vr, ""
}
