package handler

import (
	"net/http"

	"nexus-store/internal/middleware"
	"nexus-store/internal/model"
	"nexus-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// CategoryHandler handles HTTP requests for the category tree.
type CategoryHandler struct {
	service  service.CategoryService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(svc service.CategoryService, validate *validator.Validate, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service:  svc,
		validate: validate,
		logger:   logger.With().Str("handler", "category").Logger(),
	}
}

// RegisterRoutes mounts the category routes on r.
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireStaff)
		r.Post("/create", h.Create)
		r.Put("/{id}/update", h.Update)
		r.Patch("/{id}/update", h.Update)
		r.Delete("/{id}/delete", h.Delete)
		r.Get("/admin/all", h.ListAll)
	})
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id", model.ErrCategoryNotFound)
	if !ok {
		return
	}

	category, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCategoryRequest
	if !decodeJSON(w, r, h.validate, &req, false) {
		return
	}

	category, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id", model.ErrCategoryNotFound)
	if !ok {
		return
	}
	var req model.UpdateCategoryRequest
	if !decodeJSON(w, r, h.validate, &req, false) {
		return
	}

	category, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// Delete deactivates the category; rows are never removed.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(w, r, "id", model.ErrCategoryNotFound)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Category deactivated"})
}
