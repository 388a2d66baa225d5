package handler

import (
	"net/http"
	"strings"

	"nexus-store/internal/middleware"
	"nexus-store/internal/model"
	"nexus-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// IdempotencyKeyHeader names the optional header that deduplicates checkouts.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service  service.OrderService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(svc service.OrderService, validate *validator.Validate, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service:  svc,
		validate: validate,
		logger:   logger.With().Str("handler", "order").Logger(),
	}
}

// RegisterRoutes mounts the order routes on r.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.List)
		r.Post("/create", h.Create)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/cancel", h.Cancel)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireStaff)
		r.Get("/all", h.AdminList)
		r.Get("/{id}", h.AdminGet)
		r.Put("/{id}/status", h.UpdateStatus)
		r.Patch("/{id}/status", h.UpdateStatus)
	})
}

// Create handles POST /api/orders/create, converting the caller's cart.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	var req model.CreateOrderRequest
	if !decodeJSON(w, r, h.validate, &req, false) {
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	order, err := h.service.CreateOrder(r.Context(), c.UserID, key, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}

	orders, err := h.service.ListByUser(r.Context(), c.UserID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// Get handles GET /api/orders/{id}. Orders of other users are reported as missing.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", model.ErrOrderNotFound)
	if !ok {
		return
	}

	order, err := h.service.GetByID(r.Context(), c.UserID, id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Cancel handles POST /api/orders/{id}/cancel. The body is optional.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", model.ErrOrderNotFound)
	if !ok {
		return
	}
	var req model.CancelOrderRequest
	if !decodeJSON(w, r, h.validate, &req, true) {
		return
	}

	order, err := h.service.Cancel(r.Context(), c.UserID, id, strings.TrimSpace(req.Reason))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// AdminList handles GET /api/orders/admin/all with an optional status filter.
func (h *OrderHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	var status *model.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s, err := model.ParseOrderStatus(raw)
		if err != nil {
			writeServiceError(w, r, err, h.logger)
			return
		}
		status = &s
	}

	orders, err := h.service.AdminList(r.Context(), status)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) AdminGet(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", model.ErrOrderNotFound)
	if !ok {
		return
	}

	order, err := h.service.AdminGet(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", model.ErrOrderNotFound)
	if !ok {
		return
	}
	var req model.UpdateOrderStatusRequest
	if !decodeJSON(w, r, h.validate, &req, false) {
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
