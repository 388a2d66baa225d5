package handler

import (
	"errors"
	"io"
	"net/http"

	"nexus-store/internal/middleware"
	"nexus-store/internal/model"
	"nexus-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// maxWebhookBytes bounds provider callback payloads.
const maxWebhookBytes = 1 << 20

// PaymentHandler handles payment-related HTTP requests.
type PaymentHandler struct {
	service  service.PaymentService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(svc service.PaymentService, validate *validator.Validate, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:  svc,
		validate: validate,
		logger:   logger.With().Str("handler", "payment").Logger(),
	}
}

// RegisterRoutes mounts the payment routes on r. Webhooks are public.
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/webhook/{provider}", h.Webhook)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/my", h.List)
		r.Post("/create", h.Create)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/process-mock", h.ProcessMock)
		r.Post("/{id}/request-refund", h.RequestRefund)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireStaff)
		r.Get("/all", h.AdminList)
		r.Get("/{id}", h.AdminGet)
		r.Put("/{id}/status", h.UpdateStatus)
		r.Patch("/{id}/status", h.UpdateStatus)
	})
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	var req model.CreatePaymentRequest
	if !decodeJSON(w, r, h.validate, &req, false) {
		return
	}

	payment, err := h.service.Create(r.Context(), c.UserID, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}

	payments, err := h.service.ListByUser(r.Context(), c.UserID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", model.ErrPaymentNotFound)
	if !ok {
		return
	}

	payment, err := h.service.GetByID(r.Context(), c.UserID, id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

// ProcessMock simulates a gateway charge. An empty body means success.
func (h *PaymentHandler) ProcessMock(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", model.ErrPaymentNotFound)
	if !ok {
		return
	}
	var req model.ProcessMockPaymentRequest
	if !decodeJSON(w, r, h.validate, &req, true) {
		return
	}

	resp, err := h.service.ProcessMock(r.Context(), c.UserID, id, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PaymentHandler) RequestRefund(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id", model.ErrPaymentNotFound)
	if !ok {
		return
	}
	var req model.RefundRequest
	if !decodeJSON(w, r, h.validate, &req, false) {
		return
	}

	resp, err := h.service.RequestRefund(r.Context(), c.UserID, id, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PaymentHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.AdminList(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (h *PaymentHandler) AdminGet(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", model.ErrPaymentNotFound)
	if !ok {
		return
	}

	payment, err := h.service.AdminGet(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (h *PaymentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", model.ErrPaymentNotFound)
	if !ok {
		return
	}
	var req model.UpdatePaymentStatusRequest
	if !decodeJSON(w, r, h.validate, &req, false) {
		return
	}

	payment, err := h.service.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

// Webhook accepts a provider callback. The payload is passed on unparsed.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, model.ErrCodeValidationFailed, "Webhook payload is too large")
			return
		}
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Could not read webhook payload")
		return
	}

	resp, err := h.service.Webhook(r.Context(), chi.URLParam(r, "provider"), payload)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
