package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/catalog-api/internal/domain"
	"github.com/catalog-api/internal/dto"
	"github.com/catalog-api/internal/service"
	"github.com/go-playground/validator/v10"
)

type ProductHandler struct {
	responder
	productService service.ProductService
	validator      *validator.Validate
}

func NewProductHandler(productService service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		responder:      responder{logger: logger},
		productService: productService,
		validator:      validator.New(),
	}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := h.parseListQuery(r)
	if err := h.validator.Struct(&query); err != nil {
		h.respondValidation(w, err)
		return
	}

	page, err := h.productService.List(r.Context(), domain.ProductQuery{
		Page:           query.Page,
		Limit:          query.Limit,
		DepartmentID:   query.DepartmentID,
		DepartmentName: query.Department,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.ProductListResponse{
		Products:   toProductResponses(page.Products),
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
		Filters: dto.ProductFilters{
			Department:   query.Department,
			DepartmentID: query.DepartmentID,
		},
	})
}

func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := extractID(r, "/products/")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid product id", err.Error())
		return
	}

	product, err := h.productService.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	product, err := h.productService.Create(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, dto.CreateProductResponse{
		Message: "Product created successfully",
		Product: toProductResponse(product),
	})
}

func (h *ProductHandler) parseListQuery(r *http.Request) dto.ListProductsQuery {
	query := dto.ListProductsQuery{
		Page:  service.DefaultPage,
		Limit: service.DefaultLimit,
	}

	values := r.URL.Query()

	if pageStr := values.Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil {
			query.Page = page
		}
	}

	if limitStr := values.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			query.Limit = limit
		}
	}

	if department := strings.TrimSpace(values.Get("department")); department != "" {
		query.Department = &department
	}

	if idStr := values.Get("department_id"); idStr != "" {
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			query.DepartmentID = &id
		}
	}

	return query
}
