// Команда catalogctl обслуживает базу каталога: миграции, начальные отделы
// и массовый импорт товаров из CSV.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/catalog-api/internal/config"
	"github.com/catalog-api/internal/database"
	"github.com/catalog-api/internal/importer"
	"github.com/catalog-api/internal/repository"
	"github.com/catalog-api/internal/service"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "catalogctl",
		Short:        "Maintenance commands for the catalog database",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.cfg = config.Load()
			a.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: a.cfg.LogLevel,
			}))
			slog.SetDefault(a.logger)
		},
	}

	root.AddCommand(a.migrateCmd(), a.seedCmd(), a.importCmd())
	return root
}

// open подключается к базе и приводит схему к актуальной версии
func (a *app) open() (*database.Store, error) {
	store, err := database.Open(a.cfg.Database, a.logger)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func (a *app) newImporter(store *database.Store, batchSize int) *importer.Importer {
	deptRepo := repository.NewDepartmentRepository(store.DB)
	productRepo := repository.NewProductRepository(store.DB)
	deptService := service.NewDepartmentService(deptRepo, productRepo)
	return importer.New(deptService, productRepo, batchSize, a.logger)
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open()
			if err != nil {
				return err
			}
			defer store.Close()

			a.logger.Info("migrations applied", slog.String("driver", a.cfg.Database.Driver))
			return nil
		},
	}
}

func (a *app) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default departments if they are missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open()
			if err != nil {
				return err
			}
			defer store.Close()

			created, err := a.newImporter(store, a.cfg.Import.BatchSize).
				SeedDepartments(cmd.Context(), importer.DefaultDepartments)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "departments created: %d of %d\n", created, len(importer.DefaultDepartments))
			return nil
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	var (
		file      string
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import products from a CSV file (name,description,price,department)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = a.cfg.Import.File
			}
			if batchSize <= 0 {
				batchSize = a.cfg.Import.BatchSize
			}

			store, err := a.open()
			if err != nil {
				return err
			}
			defer store.Close()

			result, err := a.newImporter(store, batchSize).ImportFile(cmd.Context(), file)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rows read:           %d\n", result.Read)
			fmt.Fprintf(out, "rows valid:          %d\n", result.Valid)
			fmt.Fprintf(out, "products inserted:   %d\n", result.Inserted)
			fmt.Fprintf(out, "departments created: %d\n", result.DepartmentsCreated)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the CSV file (default IMPORT_FILE)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "rows per insert statement (default IMPORT_BATCH_SIZE)")
	return cmd
}
