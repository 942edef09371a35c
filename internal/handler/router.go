package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/catalog-api/internal/middleware"
)

// Router настраивает маршруты API
type Router struct {
	responder
	mux            *http.ServeMux
	deptHandler    *DepartmentHandler
	productHandler *ProductHandler
	healthHandler  *HealthHandler
}

// NewRouter создаёт новый роутер
func NewRouter(deptHandler *DepartmentHandler, productHandler *ProductHandler, healthHandler *HealthHandler, logger *slog.Logger) *Router {
	return &Router{
		responder:      responder{logger: logger},
		mux:            http.NewServeMux(),
		deptHandler:    deptHandler,
		productHandler: productHandler,
		healthHandler:  healthHandler,
	}
}

// Setup настраивает все маршруты
func (r *Router) Setup() http.Handler {
	r.mux.HandleFunc("/products", r.productsRouter)
	r.mux.HandleFunc("/products/", r.productsRouter)
	r.mux.HandleFunc("/departments", r.departmentsRouter)
	r.mux.HandleFunc("/departments/", r.departmentsRouter)
	r.mux.HandleFunc("/health", r.healthHandler.Check)
	r.mux.HandleFunc("/", r.index)

	// Применяем middleware
	handler := middleware.ContentType(r.mux)
	handler = middleware.Logger(r.logger)(handler)
	handler = middleware.Recoverer(r.logger)(handler)
	handler = middleware.RequestID(handler)

	return handler
}

func (r *Router) index(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	r.respondJSON(w, http.StatusOK, map[string]any{
		"message": "Catalog API",
		"endpoints": map[string]string{
			"products":    "/products",
			"product":     "/products/{id}",
			"departments": "/departments",
			"department":  "/departments/{id}",
			"health":      "/health",
		},
	})
}

// productsRouter обрабатывает все запросы к /products
func (r *Router) productsRouter(w http.ResponseWriter, req *http.Request) {
	path := strings.Trim(strings.TrimPrefix(req.URL.Path, "/products"), "/")

	if path == "" {
		switch req.Method {
		case http.MethodGet:
			r.productHandler.List(w, req)
		case http.MethodPost:
			r.productHandler.Create(w, req)
		default:
			http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		}
		return
	}

	if !strings.Contains(path, "/") {
		// /products/{id}
		if req.Method == http.MethodGet {
			r.productHandler.GetByID(w, req)
			return
		}
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
}

// departmentsRouter обрабатывает все запросы к /departments
func (r *Router) departmentsRouter(w http.ResponseWriter, req *http.Request) {
	path := strings.Trim(strings.TrimPrefix(req.URL.Path, "/departments"), "/")

	if path == "" {
		switch req.Method {
		case http.MethodGet:
			r.deptHandler.List(w, req)
		case http.MethodPost:
			r.deptHandler.Create(w, req)
		default:
			http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		}
		return
	}

	if !strings.Contains(path, "/") {
		// /departments/{id}
		switch req.Method {
		case http.MethodGet:
			r.deptHandler.GetByID(w, req)
		case http.MethodPut, http.MethodPatch:
			r.deptHandler.Update(w, req)
		case http.MethodDelete:
			r.deptHandler.Delete(w, req)
		default:
			http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		}
		return
	}

	http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
}
