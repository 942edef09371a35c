package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/catalog-api/internal/domain"
	"github.com/catalog-api/internal/dto"
	"github.com/go-playground/validator/v10"
)

// responder содержит общие для всех хендлеров методы ответа
type responder struct {
	logger *slog.Logger
}

func (h *responder) handleServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr *domain.ValidationError
		conflictErr   *domain.DepartmentConflictError
		notEmptyErr   *domain.DepartmentNotEmptyError
	)

	switch {
	case errors.As(err, &validationErr):
		h.respond(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:  "validation error",
			Fields: validationErr.Fields,
		})
	case errors.Is(err, domain.ErrDepartmentNotFound):
		h.respondError(w, http.StatusNotFound, "department not found", "")
	case errors.Is(err, domain.ErrProductNotFound):
		h.respondError(w, http.StatusNotFound, "product not found", "")
	case errors.As(err, &conflictErr):
		resp := dto.ErrorResponse{Error: "department already exists"}
		if conflictErr.Existing != nil {
			resp.Department = &dto.DepartmentRef{ID: conflictErr.Existing.ID, Name: conflictErr.Existing.Name}
		}
		h.respond(w, http.StatusConflict, resp)
	case errors.As(err, &notEmptyErr):
		count := notEmptyErr.ProductCount
		h.respond(w, http.StatusConflict, dto.ErrorResponse{
			Error:        "cannot delete department with existing products",
			Message:      "reassign or delete all products in this department first",
			ProductCount: &count,
		})
	case errors.Is(err, domain.ErrDuplicateProduct):
		h.respondError(w, http.StatusConflict, "product already exists in this department", "")
	default:
		h.logger.Error("internal error", slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "internal server error", "")
	}
}

func (h *responder) respondValidation(w http.ResponseWriter, err error) {
	resp := dto.ErrorResponse{Error: "validation error"}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		resp.Fields = make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			resp.Fields[strings.ToLower(fe.Field())] = "failed on '" + fe.Tag() + "'"
		}
	} else {
		resp.Message = err.Error()
	}

	h.respond(w, http.StatusBadRequest, resp)
}

func (h *responder) respondJSON(w http.ResponseWriter, status int, data any) {
	h.respond(w, status, data)
}

func (h *responder) respondError(w http.ResponseWriter, status int, errMsg, details string) {
	resp := dto.ErrorResponse{Error: errMsg}
	if details != "" {
		resp.Message = details
	}
	h.respond(w, status, resp)
}

func (h *responder) respond(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// extractID достаёт числовой идентификатор из пути вида prefix/{id}
func extractID(r *http.Request, prefix string) (int64, error) {
	path := strings.TrimPrefix(r.URL.Path, prefix)
	path = strings.Trim(path, "/")

	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		return 0, errors.New("id is required")
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, err
	}
	if id < 1 {
		return 0, errors.New("id must be positive")
	}
	return id, nil
}

func toDepartmentRecord(dept *domain.Department) dto.DepartmentRecord {
	return dto.DepartmentRecord{
		ID:        dept.ID,
		Name:      dept.Name,
		CreatedAt: dept.CreatedAt,
		UpdatedAt: dept.UpdatedAt,
	}
}

func toProductResponse(p *domain.Product) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        dto.NewMoney(p.Price),
		DepartmentID: p.DepartmentID,
		ImageURL:     p.ImageURL,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}

	if p.Department != nil {
		resp.Department = &dto.DepartmentRef{ID: p.Department.ID, Name: p.Department.Name}
	}

	return resp
}

func toProductResponses(products []domain.Product) []dto.ProductResponse {
	resp := make([]dto.ProductResponse, len(products))
	for i := range products {
		resp[i] = toProductResponse(&products[i])
	}
	return resp
}
