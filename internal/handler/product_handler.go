package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"nexus-store/internal/middleware"
	"nexus-store/internal/model"
	"nexus-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(svc service.ProductService, validate *validator.Validate, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service:  svc,
		validate: validate,
		logger:   logger.With().Str("handler", "product").Logger(),
	}
}

// RegisterRoutes mounts the product routes on r.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/search", h.Search)
	r.Get("/featured", h.Featured)
	r.Get("/category/{categoryID}", h.ListByCategory)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireStaff)
		r.Post("/create", h.Create)
		r.Put("/{id}/update", h.Update)
		r.Patch("/{id}/update", h.Update)
		r.Delete("/{id}/delete", h.Delete)
	})
}

// parseProductFilter reads listing parameters from the query string.
// Values that do not parse are ignored rather than rejected.
func parseProductFilter(q url.Values) model.ProductFilter {
	f := model.ProductFilter{
		Query: strings.TrimSpace(q.Get("q")),
		Sort:  model.ProductSort(q.Get("sort")),
	}
	if d, err := decimal.NewFromString(q.Get("min_price")); err == nil && !d.IsNegative() {
		f.MinPrice = &d
	}
	if d, err := decimal.NewFromString(q.Get("max_price")); err == nil && !d.IsNegative() {
		f.MaxPrice = &d
	}
	if id, err := strconv.ParseInt(q.Get("category"), 10, 64); err == nil && id > 0 {
		f.CategoryID = &id
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		f.Page = page
	}
	if size, err := strconv.Atoi(q.Get("page_size")); err == nil {
		f.PageSize = size
	}
	return f
}

// List handles GET /api/products with filtering, sorting and pagination.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), parseProductFilter(r.URL.Query()))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Search(r.Context(), parseProductFilter(r.URL.Query()))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Featured(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// ListByCategory handles GET /api/products/category/{categoryID}. The
// category filter of the query string is superseded by the path.
func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := int64Param(w, r, "categoryID", model.ErrCategoryNotFound)
	if !ok {
		return
	}

	f := parseProductFilter(r.URL.Query())
	f.CategoryID = nil
	page, err := h.service.ListByCategory(r.Context(), categoryID, f)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Get handles GET /api/products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id", model.ErrProductNotFound)
	if !ok {
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProductRequest
	if !decodeJSON(w, r, h.validate, &req, false) {
		return
	}

	product, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id", model.ErrProductNotFound)
	if !ok {
		return
	}
	var req model.UpdateProductRequest
	if !decodeJSON(w, r, h.validate, &req, false) {
		return
	}

	product, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id", model.ErrProductNotFound)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Product deactivated"})
}
