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

// ReviewHandler handles product review requests.
type ReviewHandler struct {
	service  service.ReviewService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(svc service.ReviewService, validate *validator.Validate, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service:  svc,
		validate: validate,
		logger:   logger.With().Str("handler", "review").Logger(),
	}
}

// RegisterRoutes mounts the review routes on r. Reads by product or id are public.
func (h *ReviewHandler) RegisterRoutes(r chi.Router) {
	r.Get("/product/{productID}", h.ListByProduct)
	r.Get("/product/{productID}/stats", h.Stats)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/my", h.ListMine)
		r.Post("/create", h.Create)
		r.Put("/{id}/update", h.Update)
		r.Patch("/{id}/update", h.Update)
		r.Delete("/{id}/delete", h.Delete)
		r.Post("/{id}/helpful", h.Vote)
	})

	r.With(middleware.RequireStaff).Get("/admin/all", h.ListAll)
	r.Get("/{id}", h.Get)
}

func (h *ReviewHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := int64Param(w, r, "productID", model.ErrProductNotFound)
	if !ok {
		return
	}

	reviews, err := h.service.ListByProduct(r.Context(), productID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	productID, ok := int64Param(w, r, "productID", model.ErrProductNotFound)
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), productID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", model.ErrReviewNotFound)
	if !ok {
		return
	}

	review, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (h *ReviewHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}

	reviews, err := h.service.ListByUser(r.Context(), c.UserID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *ReviewHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// Create records a review under the caller's token username.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	var req model.CreateReviewRequest
	if !decodeJSON(w, r, h.validate, &req, false) {
		return
	}

	review, err := h.service.Create(r.Context(), c.UserID, c.Username, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", model.ErrReviewNotFound)
	if !ok {
		return
	}
	var req model.UpdateReviewRequest
	if !decodeJSON(w, r, h.validate, &req, false) {
		return
	}

	review, err := h.service.Update(r.Context(), c.UserID, id, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", model.ErrReviewNotFound)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), c.UserID, id); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Review deleted"})
}

// Vote handles POST /api/reviews/{id}/helpful; helpful=false withdraws the vote.
func (h *ReviewHandler) Vote(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", model.ErrReviewNotFound)
	if !ok {
		return
	}
	var req model.HelpfulVoteRequest
	if !decodeJSON(w, r, h.validate, &req, false) {
		return
	}

	resp, err := h.service.Vote(r.Context(), c.UserID, id, *req.Helpful)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
