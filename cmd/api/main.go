package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/catalog-api/internal/config"
	"github.com/catalog-api/internal/database"
	"github.com/catalog-api/internal/handler"
	"github.com/catalog-api/internal/repository"
	"github.com/catalog-api/internal/service"
)

func main() {
	// Загрузка конфигурации
	cfg := config.Load()

	// Инициализация логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// Подключение к БД: без проверенной и мигрированной базы сервер не стартует
	store, err := database.Open(cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// Инициализация репозиториев
	deptRepo := repository.NewDepartmentRepository(store.DB)
	productRepo := repository.NewProductRepository(store.DB)

	// Инициализация сервисов
	deptService := service.NewDepartmentService(deptRepo, productRepo)
	productService := service.NewProductService(productRepo, deptService)

	// Инициализация хендлеров
	deptHandler := handler.NewDepartmentHandler(deptService, logger)
	productHandler := handler.NewProductHandler(productService, logger)
	healthHandler := handler.NewHealthHandler(store, logger)

	// Настройка роутера
	router := handler.NewRouter(deptHandler, productHandler, healthHandler, logger)
	httpHandler := router.Setup()

	// Настройка HTTP сервера
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("could not gracefully shutdown the server", slog.Any("error", err))
		}
		close(done)
	}()

	logger.Info("server is starting",
		slog.String("port", cfg.Server.Port),
		slog.String("driver", cfg.Database.Driver),
	)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("could not listen on port", slog.String("port", cfg.Server.Port), slog.Any("error", err))
		os.Exit(1)
	}

	<-done
	logger.Info("server stopped")
}
