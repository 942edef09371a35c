package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/catalog-api/internal/domain"
	"github.com/catalog-api/internal/dto"
	"github.com/catalog-api/internal/service"
	"github.com/go-playground/validator/v10"
)

type DepartmentHandler struct {
	responder
	deptService service.DepartmentService
	validator   *validator.Validate
}

func NewDepartmentHandler(deptService service.DepartmentService, logger *slog.Logger) *DepartmentHandler {
	return &DepartmentHandler{
		responder:   responder{logger: logger},
		deptService: deptService,
		validator:   validator.New(),
	}
}

func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	query := h.parseQuery(r)

	if query.IncludeProducts {
		departments, err := h.deptService.ListWithProducts(r.Context())
		if err != nil {
			h.handleServiceError(w, err)
			return
		}

		resp := dto.DepartmentWithProductsListResponse{
			Departments: make([]dto.DepartmentWithProductsResponse, len(departments)),
			Total:       len(departments),
		}
		for i := range departments {
			resp.Departments[i] = toDepartmentWithProductsResponse(&departments[i])
		}
		h.respondJSON(w, http.StatusOK, resp)
		return
	}

	departments, err := h.deptService.List(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	resp := dto.DepartmentListResponse{
		Departments: make([]dto.DepartmentResponse, len(departments)),
		Total:       len(departments),
	}
	for i := range departments {
		resp.Departments[i] = toDepartmentResponse(&departments[i])
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		h.respondValidation(w, err)
		return
	}

	dept, err := h.deptService.Create(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, dto.DepartmentMutationResponse{
		Message:    "Department created successfully",
		Department: toDepartmentRecord(dept),
	})
}

func (h *DepartmentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := extractID(r, "/departments/")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid department id", err.Error())
		return
	}

	query := h.parseQuery(r)

	if query.IncludeProducts {
		dept, err := h.deptService.GetByIDWithProducts(r.Context(), id)
		if err != nil {
			h.handleServiceError(w, err)
			return
		}
		h.respondJSON(w, http.StatusOK, toDepartmentWithProductsResponse(dept))
		return
	}

	dept, err := h.deptService.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toDepartmentResponse(dept))
}

func (h *DepartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := extractID(r, "/departments/")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid department id", err.Error())
		return
	}

	var req dto.UpdateDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		h.respondValidation(w, err)
		return
	}

	dept, err := h.deptService.Update(r.Context(), id, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.DepartmentMutationResponse{
		Message:    "Department updated successfully",
		Department: toDepartmentRecord(dept),
	})
}

func (h *DepartmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := extractID(r, "/departments/")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid department id", err.Error())
		return
	}

	dept, err := h.deptService.Delete(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.DeleteDepartmentResponse{
		Message:    "Department deleted successfully",
		Department: dto.DepartmentRef{ID: dept.ID, Name: dept.Name},
	})
}

func (h *DepartmentHandler) parseQuery(r *http.Request) dto.DepartmentQuery {
	return dto.DepartmentQuery{
		IncludeProducts: r.URL.Query().Get("include_products") == "true",
	}
}

func toDepartmentResponse(dept *domain.DepartmentSummary) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		DepartmentRecord: toDepartmentRecord(&dept.Department),
		ProductCount:     dept.ProductCount,
	}
}

func toDepartmentWithProductsResponse(dept *domain.DepartmentWithProducts) dto.DepartmentWithProductsResponse {
	return dto.DepartmentWithProductsResponse{
		DepartmentRecord: toDepartmentRecord(&dept.Department),
		ProductCount:     dept.ProductCount,
		Products:         toProductResponses(dept.Products),
	}
}
