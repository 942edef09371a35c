package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/catalog-api/internal/database/databasetest"
	"github.com/catalog-api/internal/dto"
	"github.com/catalog-api/internal/handler"
	"github.com/catalog-api/internal/middleware"
	"github.com/catalog-api/internal/repository"
	"github.com/catalog-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	err error
}

func (c *stubChecker) Ping(ctx context.Context) error {
	return c.err
}

type testServer struct {
	server  *httptest.Server
	checker *stubChecker
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	store := databasetest.New(t)

	deptRepo := repository.NewDepartmentRepository(store.DB)
	productRepo := repository.NewProductRepository(store.DB)
	deptService := service.NewDepartmentService(deptRepo, productRepo)
	productService := service.NewProductService(productRepo, deptService)

	checker := &stubChecker{}
	router := handler.NewRouter(
		handler.NewDepartmentHandler(deptService, logger),
		handler.NewProductHandler(productService, logger),
		handler.NewHealthHandler(checker, logger),
		logger,
	)

	ts := &testServer{
		server:  httptest.NewServer(router.Setup()),
		checker: checker,
	}
	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) url(path string) string {
	return ts.server.URL + path
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	return send(t, http.MethodPost, url, body)
}

func send(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	return send(t, http.MethodGet, url, nil)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (ts *testServer) createProduct(t *testing.T, name, department string, price float64) dto.ProductResponse {
	t.Helper()
	resp := postJSON(t, ts.url("/products"), map[string]any{
		"name":       name,
		"price":      price,
		"department": department,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.CreateProductResponse](t, resp).Product
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := get(t, ts.url("/health"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", decode[dto.HealthResponse](t, resp).Status)
}

func TestHealthCheck_Unhealthy(t *testing.T) {
	ts := setupTestServer(t)
	ts.checker.err = errors.New("connection refused")

	resp := get(t, ts.url("/health"))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	body := decode[dto.HealthResponse](t, resp)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "connection refused", body.Error)
}

func TestIndex(t *testing.T) {
	ts := setupTestServer(t)

	resp := get(t, ts.url("/"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))

	body := decode[map[string]any](t, resp)
	assert.Equal(t, "Catalog API", body["message"])
	assert.Contains(t, body, "endpoints")

	assert.Equal(t, http.StatusNotFound, get(t, ts.url("/unknown")).StatusCode)
}

func TestRequestID_Propagated(t *testing.T) {
	ts := setupTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.url("/health"), nil)
	require.NoError(t, err)
	req.Header.Set(middleware.HeaderRequestID, "req-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "req-123", resp.Header.Get(middleware.HeaderRequestID))
}

func TestCreateProduct_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := postJSON(t, ts.url("/products"), map[string]any{
		"name":        "Phone",
		"description": "Smartphone",
		"price":       999.99,
		"department":  "Electronics",
		"image_url":   "https://example.com/phone.png",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decode[dto.CreateProductResponse](t, resp)
	assert.Equal(t, "Product created successfully", body.Message)
	assert.Equal(t, "Phone", body.Product.Name)
	assert.Equal(t, "999.99", body.Product.Price.StringFixed(2))
	require.NotNil(t, body.Product.Department)
	assert.Equal(t, "Electronics", body.Product.Department.Name)

	got := get(t, ts.url("/products/"+strconv.FormatInt(body.Product.ID, 10)))
	require.Equal(t, http.StatusOK, got.StatusCode)
	product := decode[dto.ProductResponse](t, got)
	assert.Equal(t, body.Product.ID, product.ID)
	assert.Equal(t, body.Product.DepartmentID, product.DepartmentID)
}

func TestCreateProduct_Validation(t *testing.T) {
	ts := setupTestServer(t)

	resp := postJSON(t, ts.url("/products"), map[string]any{
		"name":       "",
		"price":      -5,
		"department": "Electronics",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[dto.ErrorResponse](t, resp)
	assert.Contains(t, body.Fields, "name")
	assert.Contains(t, body.Fields, "price")

	list := decode[dto.ProductListResponse](t, get(t, ts.url("/products")))
	assert.Zero(t, list.Total)
}

func TestCreateProduct_PriceNotANumber(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{
			name:   "letters",
			body:   `{"name":"","price":"abc","department":""}`,
			fields: []string{"name", "department", "price"},
		},
		{
			name:   "empty string",
			body:   `{"name":"Phone","price":"","department":"Electronics"}`,
			fields: []string{"price"},
		},
		{
			name:   "boolean",
			body:   `{"name":"Phone","price":true,"department":"Electronics"}`,
			fields: []string{"price"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.url("/products"), tt.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			body := decode[dto.ErrorResponse](t, resp)
			assert.Equal(t, "validation error", body.Error)
			assert.Len(t, body.Fields, len(tt.fields))
			for _, field := range tt.fields {
				assert.Contains(t, body.Fields, field)
			}
		})
	}

	list := decode[dto.ProductListResponse](t, get(t, ts.url("/products")))
	assert.Zero(t, list.Total)
}

func TestCreateProduct_PriceAsString(t *testing.T) {
	ts := setupTestServer(t)

	resp := postJSON(t, ts.url("/products"), `{"name":"Cable","price":"12.5","department":"Electronics"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "12.50", decode[dto.CreateProductResponse](t, resp).Product.Price.StringFixed(2))
}

func TestProductPrice_TwoFractionDigits(t *testing.T) {
	ts := setupTestServer(t)
	product := ts.createProduct(t, "Cable", "Electronics", 1)

	resp := get(t, ts.url("/products/"+strconv.FormatInt(product.ID, 10)))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"price":"1.00"`)
}

func TestCreateProduct_InvalidBody(t *testing.T) {
	ts := setupTestServer(t)

	resp := postJSON(t, ts.url("/products"), "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateProduct_Duplicate(t *testing.T) {
	ts := setupTestServer(t)
	ts.createProduct(t, "Phone", "Electronics", 10)

	resp := postJSON(t, ts.url("/products"), map[string]any{
		"name": "Phone", "price": 11, "department": "Electronics",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestGetProduct_Errors(t *testing.T) {
	ts := setupTestServer(t)

	assert.Equal(t, http.StatusNotFound, get(t, ts.url("/products/999")).StatusCode)
	assert.Equal(t, http.StatusBadRequest, get(t, ts.url("/products/abc")).StatusCode)
	assert.Equal(t, http.StatusBadRequest, get(t, ts.url("/products/0")).StatusCode)
	assert.Equal(t, http.StatusNotFound, get(t, ts.url("/products/1/extra")).StatusCode)
	assert.Equal(t, http.StatusMethodNotAllowed, send(t, http.MethodDelete, ts.url("/products/1"), nil).StatusCode)
	assert.Equal(t, http.StatusMethodNotAllowed, send(t, http.MethodPut, ts.url("/products"), nil).StatusCode)
}

func TestListProducts(t *testing.T) {
	ts := setupTestServer(t)

	for i := 0; i < 25; i++ {
		ts.createProduct(t, "Product "+strconv.Itoa(i), "Electronics", 1)
	}
	shirt := ts.createProduct(t, "Shirt", "Clothing", 20)

	t.Run("pagination", func(t *testing.T) {
		body := decode[dto.ProductListResponse](t, get(t, ts.url("/products?page=2&limit=10")))
		assert.Len(t, body.Products, 10)
		assert.Equal(t, int64(26), body.Total)
		assert.Equal(t, 2, body.Page)
		assert.Equal(t, 10, body.Limit)
		assert.Equal(t, 3, body.TotalPages)
	})

	t.Run("defaults", func(t *testing.T) {
		body := decode[dto.ProductListResponse](t, get(t, ts.url("/products")))
		assert.Equal(t, 1, body.Page)
		assert.Equal(t, 10, body.Limit)
		assert.Len(t, body.Products, 10)
	})

	t.Run("filter by department name", func(t *testing.T) {
		body := decode[dto.ProductListResponse](t, get(t, ts.url("/products?department=Clothing")))
		require.Len(t, body.Products, 1)
		assert.Equal(t, "Shirt", body.Products[0].Name)
		require.NotNil(t, body.Filters.Department)
		assert.Equal(t, "Clothing", *body.Filters.Department)
	})

	t.Run("department id wins over name", func(t *testing.T) {
		url := ts.url("/products?department=Electronics&department_id=" + strconv.FormatInt(shirt.DepartmentID, 10))
		body := decode[dto.ProductListResponse](t, get(t, url))
		assert.Equal(t, int64(1), body.Total)
		require.NotNil(t, body.Filters.DepartmentID)
		assert.Equal(t, shirt.DepartmentID, *body.Filters.DepartmentID)
	})

	t.Run("limit out of range", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, get(t, ts.url("/products?limit=101")).StatusCode)
		assert.Equal(t, http.StatusBadRequest, get(t, ts.url("/products?page=0")).StatusCode)
	})

	t.Run("page offset overflows", func(t *testing.T) {
		page := strconv.Itoa(math.MaxInt/100 + 1)
		resp := get(t, ts.url("/products?limit=100&page="+page))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decode[dto.ErrorResponse](t, resp).Fields, "page")
	})
}

func TestCreateDepartment(t *testing.T) {
	ts := setupTestServer(t)

	resp := postJSON(t, ts.url("/departments"), map[string]any{"name": "Electronics"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.DepartmentMutationResponse](t, resp)
	assert.Equal(t, "Electronics", created.Department.Name)

	t.Run("duplicate", func(t *testing.T) {
		resp := postJSON(t, ts.url("/departments/"), map[string]any{"name": "Electronics"})
		require.Equal(t, http.StatusConflict, resp.StatusCode)

		body := decode[dto.ErrorResponse](t, resp)
		require.NotNil(t, body.Department)
		assert.Equal(t, created.Department.ID, body.Department.ID)
	})

	t.Run("empty name", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, postJSON(t, ts.url("/departments"), map[string]any{"name": ""}).StatusCode)
		assert.Equal(t, http.StatusBadRequest, postJSON(t, ts.url("/departments"), map[string]any{"name": "   "}).StatusCode)
	})
}

func TestGetDepartment(t *testing.T) {
	ts := setupTestServer(t)
	phone := ts.createProduct(t, "Phone", "Electronics", 100)
	ts.createProduct(t, "Laptop", "Electronics", 900)
	deptURL := ts.url("/departments/" + strconv.FormatInt(phone.DepartmentID, 10))

	summary := decode[dto.DepartmentResponse](t, get(t, deptURL))
	assert.Equal(t, "Electronics", summary.Name)
	assert.Equal(t, int64(2), summary.ProductCount)

	full := decode[dto.DepartmentWithProductsResponse](t, get(t, deptURL+"?include_products=true"))
	assert.Equal(t, int64(2), full.ProductCount)
	assert.Len(t, full.Products, 2)

	assert.Equal(t, http.StatusNotFound, get(t, ts.url("/departments/999")).StatusCode)
	assert.Equal(t, http.StatusBadRequest, get(t, ts.url("/departments/abc")).StatusCode)
}

func TestListDepartments(t *testing.T) {
	ts := setupTestServer(t)
	ts.createProduct(t, "Phone", "Electronics", 100)
	postJSON(t, ts.url("/departments"), map[string]any{"name": "Books"})

	list := decode[dto.DepartmentListResponse](t, get(t, ts.url("/departments")))
	require.Equal(t, 2, list.Total)
	assert.Equal(t, "Books", list.Departments[0].Name)
	assert.Zero(t, list.Departments[0].ProductCount)
	assert.Equal(t, int64(1), list.Departments[1].ProductCount)

	full := decode[dto.DepartmentWithProductsListResponse](t, get(t, ts.url("/departments?include_products=true")))
	require.Len(t, full.Departments, 2)
	assert.NotNil(t, full.Departments[0].Products)
	assert.Empty(t, full.Departments[0].Products)
	assert.Len(t, full.Departments[1].Products, 1)
}

func TestUpdateDepartment(t *testing.T) {
	ts := setupTestServer(t)
	a := decode[dto.DepartmentMutationResponse](t, postJSON(t, ts.url("/departments"), map[string]any{"name": "Garden"}))
	postJSON(t, ts.url("/departments"), map[string]any{"name": "Kitchen"})
	aURL := ts.url("/departments/" + strconv.FormatInt(a.Department.ID, 10))

	resp := send(t, http.MethodPut, aURL, map[string]any{"name": "Home & Garden"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Home & Garden", decode[dto.DepartmentMutationResponse](t, resp).Department.Name)

	assert.Equal(t, http.StatusConflict, send(t, http.MethodPatch, aURL, map[string]any{"name": "Kitchen"}).StatusCode)
	assert.Equal(t, http.StatusBadRequest, send(t, http.MethodPatch, aURL, map[string]any{"name": ""}).StatusCode)
	assert.Equal(t, http.StatusNotFound, send(t, http.MethodPut, ts.url("/departments/999"), map[string]any{"name": "X"}).StatusCode)
}

func TestDeleteDepartment(t *testing.T) {
	ts := setupTestServer(t)
	phone := ts.createProduct(t, "Phone", "Electronics", 100)
	deptURL := ts.url("/departments/" + strconv.FormatInt(phone.DepartmentID, 10))

	resp := send(t, http.MethodDelete, deptURL, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	require.NotNil(t, body.ProductCount)
	assert.Equal(t, int64(1), *body.ProductCount)

	empty := decode[dto.DepartmentMutationResponse](t, postJSON(t, ts.url("/departments"), map[string]any{"name": "Empty"}))
	emptyURL := ts.url("/departments/" + strconv.FormatInt(empty.Department.ID, 10))

	resp = send(t, http.MethodDelete, emptyURL, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Empty", decode[dto.DeleteDepartmentResponse](t, resp).Department.Name)

	assert.Equal(t, http.StatusNotFound, get(t, emptyURL).StatusCode)
	assert.Equal(t, http.StatusNotFound, send(t, http.MethodDelete, emptyURL, nil).StatusCode)
	assert.Equal(t, http.StatusMethodNotAllowed, send(t, http.MethodPost, emptyURL, nil).StatusCode)
}
