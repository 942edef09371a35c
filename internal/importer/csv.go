package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Row - сырая строка импорта, до валидации
type Row struct {
	Line        int
	Name        string
	Description string
	Price       string
	Department  string

	// Malformed - причина, по которой строку не удалось разобрать
	Malformed string
}

var requiredColumns = []string{"name", "price", "department"}

// ReadRows читает CSV с заголовком name,description,price,department.
// Порядок колонок произвольный, лишние колонки игнорируются.
// Кавычки разбираются нестрого; неразборчивая строка возвращается
// с заполненным Malformed и отбрасывается при импорте.
func ReadRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv is empty: header row is required")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, ok := columns[name]; !ok {
			columns[name] = i
		}
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("csv header is missing columns: %s", strings.Join(missing, ", "))
	}

	field := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			// строка уже прочитана целиком, разбор продолжается со следующей
			rows = append(rows, Row{Line: perr.StartLine, Malformed: perr.Err.Error()})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)
		rows = append(rows, Row{
			Line:        line,
			Name:        field(record, "name"),
			Description: field(record, "description"),
			Price:       field(record, "price"),
			Department:  field(record, "department"),
		})
	}

	return rows, nil
}
