package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/fjod/go_storefront/internal/domain"
)

type CartHandler struct {
	ledger *cart.Ledger
	store  *catalog.Store
}

func NewCartHandler(ledger *cart.Ledger, store *catalog.Store) *CartHandler {
	return &CartHandler{ledger: ledger, store: store}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.ledger.Snapshot())
}

// AddItem adds one unit of a product from the current catalog snapshot. The
// cart line captures the product as it is now; later catalog refreshes do
// not touch it.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	product, ok := h.findProduct(req.ProductID)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown_product", "product is not in the loaded catalog")
		return
	}

	h.ledger.AddItem(product)
	respondJSON(w, http.StatusCreated, h.ledger.Snapshot())
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 0 and 99")
		return
	}

	h.ledger.SetQuantity(productID, req.Quantity)
	respondJSON(w, http.StatusOK, h.ledger.Snapshot())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	h.ledger.RemoveItem(productID)
	respondJSON(w, http.StatusOK, h.ledger.Snapshot())
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.ledger.Clear()
	respondJSON(w, http.StatusOK, h.ledger.Snapshot())
}

// findProduct looks the product up in the list snapshot first, then the
// detail slot.
func (h *CartHandler) findProduct(id int64) (domain.Product, bool) {
	for _, p := range h.store.Products().Data {
		if p.ID == id {
			return p, true
		}
	}
	if detail := h.store.ProductDetail().Data; detail != nil && detail.ID == id {
		return *detail, true
	}
	return domain.Product{}, false
}

func parseProductID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "product_id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return id, true
}
