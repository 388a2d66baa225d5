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

// ClearCartResponse reports how many lines a clear removed.
type ClearCartResponse struct {
	Message      string `json:"message"`
	ItemsRemoved int64  `json:"items_removed"`
}

// CartHandler handles requests against the caller's cart.
type CartHandler struct {
	service  service.CartService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(svc service.CartService, validate *validator.Validate, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service:  svc,
		validate: validate,
		logger:   logger.With().Str("handler", "cart").Logger(),
	}
}

// RegisterRoutes mounts the cart routes on r. Every route requires a caller.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.RequireAuth)

	r.Get("/", h.Get)
	r.Post("/add", h.Add)
	r.Delete("/clear", h.Clear)
	r.Post("/items/{id}/increase", h.Increase)
	r.Post("/items/{id}/decrease", h.Decrease)
	r.Put("/items/{id}/update", h.Update)
	r.Patch("/items/{id}/update", h.Update)
	r.Delete("/items/{id}/remove", h.Remove)
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}

	cart, err := h.service.Get(r.Context(), c.UserID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	var req model.AddToCartRequest
	if !decodeJSON(w, r, h.validate, &req, false) {
		return
	}

	item, err := h.service.AddItem(r.Context(), c.UserID, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, model.CartItemResponse{Message: "Item added to cart", Item: item})
}

func (h *CartHandler) Increase(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	itemID, ok := uuidParam(w, r, "id", model.ErrCartItemNotFound)
	if !ok {
		return
	}

	resp, err := h.service.IncreaseItem(r.Context(), c.UserID, itemID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CartHandler) Decrease(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	itemID, ok := uuidParam(w, r, "id", model.ErrCartItemNotFound)
	if !ok {
		return
	}

	resp, err := h.service.DecreaseItem(r.Context(), c.UserID, itemID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	itemID, ok := uuidParam(w, r, "id", model.ErrCartItemNotFound)
	if !ok {
		return
	}
	var req model.UpdateCartItemRequest
	if !decodeJSON(w, r, h.validate, &req, false) {
		return
	}

	resp, err := h.service.UpdateItem(r.Context(), c.UserID, itemID, req.Quantity)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	itemID, ok := uuidParam(w, r, "id", model.ErrCartItemNotFound)
	if !ok {
		return
	}

	if err := h.service.RemoveItem(r.Context(), c.UserID, itemID); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Item removed from cart"})
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}

	removed, err := h.service.Clear(r.Context(), c.UserID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, ClearCartResponse{Message: "Cart cleared", ItemsRemoved: removed})
}
