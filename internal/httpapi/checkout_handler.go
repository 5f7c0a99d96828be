package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_storefront/internal/checkout"
)

type CheckoutHandler struct {
	orchestrator *checkout.Orchestrator
}

func NewCheckoutHandler(orchestrator *checkout.Orchestrator) *CheckoutHandler {
	return &CheckoutHandler{orchestrator: orchestrator}
}

type ShippingRequestDTO struct {
	Address        checkout.Address `json:"address"`
	ShippingMethod string           `json:"shipping_method"`
}

type PaymentRequestDTO struct {
	Method string `json:"method"`
}

type ConfirmRequestDTO struct {
	AgreeTerms bool `json:"agree_terms"`
}

type CheckoutStatusDTO struct {
	Active bool            `json:"active"`
	Step   string          `json:"step,omitempty"`
	Order  *checkout.Order `json:"order,omitempty"`
}

func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	if err := h.orchestrator.Begin(); err != nil {
		handleCheckoutError(w, err)
		return
	}
	step, _ := h.orchestrator.Current()
	respondJSON(w, http.StatusCreated, CheckoutStatusDTO{Active: true, Step: step.String()})
}

func (h *CheckoutHandler) Status(w http.ResponseWriter, r *http.Request) {
	step, active := h.orchestrator.Current()
	dto := CheckoutStatusDTO{Active: active, Order: h.orchestrator.Order()}
	if active {
		dto.Step = step.String()
	}
	respondJSON(w, http.StatusOK, dto)
}

func (h *CheckoutHandler) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	var req ShippingRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.orchestrator.SubmitShipping(req.Address, req.ShippingMethod); err != nil {
		handleCheckoutError(w, err)
		return
	}
	step, _ := h.orchestrator.Current()
	respondJSON(w, http.StatusOK, CheckoutStatusDTO{Active: true, Step: step.String()})
}

func (h *CheckoutHandler) SelectPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.orchestrator.SelectPayment(req.Method); err != nil {
		handleCheckoutError(w, err)
		return
	}
	step, _ := h.orchestrator.Current()
	respondJSON(w, http.StatusOK, CheckoutStatusDTO{Active: true, Step: step.String()})
}

func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.orchestrator.Confirm(r.Context(), req.AgreeTerms)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	step := h.orchestrator.Back()
	_, active := h.orchestrator.Current()
	dto := CheckoutStatusDTO{Active: active}
	if active {
		dto.Step = step.String()
	}
	respondJSON(w, http.StatusOK, dto)
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", "cart is empty")
	case errors.Is(err, checkout.ErrNoActiveCheckout):
		respondError(w, http.StatusConflict, "no_active_checkout", "no checkout in progress")
	case errors.Is(err, checkout.ErrWrongStep):
		respondError(w, http.StatusConflict, "wrong_step", "operation not valid for current step")
	case errors.Is(err, checkout.ErrInvalidAddress):
		respondError(w, http.StatusBadRequest, "invalid_address", err.Error())
	case errors.Is(err, checkout.ErrUnknownShippingMethod):
		respondError(w, http.StatusBadRequest, "unknown_shipping_method", "unknown shipping method")
	case errors.Is(err, checkout.ErrNoPaymentMethod):
		respondError(w, http.StatusBadRequest, "payment_method_required", "payment method is required")
	case errors.Is(err, checkout.ErrTermsNotAccepted):
		respondError(w, http.StatusUnprocessableEntity, "terms_not_accepted", "terms must be accepted")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
