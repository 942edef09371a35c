package database

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/catalog-api/internal/config"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var embedMigrations embed.FS

// Store - единственный разделяемый ресурс сервиса: соединение с БД.
// Создаётся в main и передаётся в репозитории явно.
type Store struct {
	DB     *gorm.DB
	driver string
}

// Open подключается к БД, повторяя попытки до cfg.ConnectAttempts раз
func Open(cfg config.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	dialector, err := newDialector(cfg)
	if err != nil {
		return nil, err
	}

	attempts := cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var db *gorm.DB
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger:         newGormLogger(logger),
			TranslateError: true,
			NowFunc: func() time.Time {
				return time.Now().UTC()
			},
		})
		if err == nil {
			sqlDB, dbErr := db.DB()
			if dbErr == nil {
				if err = sqlDB.Ping(); err == nil {
					return &Store{DB: db, driver: cfg.Driver}, nil
				}
			} else {
				err = dbErr
			}
		}

		if attempt < attempts {
			logger.Warn("database is not ready, retrying",
				slog.Int("attempt", attempt),
				slog.Any("error", err),
			)
			time.Sleep(time.Second)
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, err)
}

// newGormLogger пишет SQL-ошибки и медленные запросы в общий JSON-лог.
// Промах поиска (record not found) для сервиса штатная ситуация и не логируется.
func newGormLogger(logger *slog.Logger) gormlogger.Interface {
	return gormlogger.NewSlogLogger(logger, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
	})
}

func newDialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Migrate применяет все миграции goose для текущего драйвера
func (s *Store) Migrate() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	dialect, dir := "postgres", "migrations/postgres"
	if s.driver == config.DriverSQLite {
		dialect, dir = "sqlite3", "migrations/sqlite"
	}

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.Up(sqlDB, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Ping проверяет доступность БД
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close закрывает пул соединений
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
