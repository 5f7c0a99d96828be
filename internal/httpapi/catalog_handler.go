package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/filter"
)

// CatalogHandler exposes the catalog store the way the engine works: POSTs
// trigger asynchronous fetches, GETs return the current FetchState snapshot.
type CatalogHandler struct {
	store    *catalog.Store
	resolver *filter.Resolver
}

func NewCatalogHandler(store *catalog.Store, resolver *filter.Resolver) *CatalogHandler {
	return &CatalogHandler{store: store, resolver: resolver}
}

type FilterRequestDTO struct {
	Title      string `json:"title"`
	Price      string `json:"price"`
	PriceMin   string `json:"price_min"`
	PriceMax   string `json:"price_max"`
	CategoryID string `json:"category_id"`
}

// ApplyFilter replaces the current filter and kicks off the matching fetch.
// The fetch is asynchronous; poll the products snapshot for the result.
func (h *CatalogHandler) ApplyFilter(w http.ResponseWriter, r *http.Request) {
	var req FilterRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	q := h.resolver.Apply(r.Context(), domain.CatalogQuery{
		Title:      req.Title,
		Price:      req.Price,
		PriceMin:   req.PriceMin,
		PriceMax:   req.PriceMax,
		CategoryID: req.CategoryID,
	})

	respondJSON(w, http.StatusAccepted, map[string]interface{}{"query": q})
}

func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Products())
}

func (h *CatalogHandler) FetchProductDetail(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "product_id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	h.store.RequestProductDetail(r.Context(), id)
	respondJSON(w, http.StatusAccepted, nil)
}

func (h *CatalogHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.ProductDetail())
}

func (h *CatalogHandler) ClearProductDetail(w http.ResponseWriter, r *http.Request) {
	h.store.ClearProductDetail()
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) FetchCategories(w http.ResponseWriter, r *http.Request) {
	h.store.RequestCategories(r.Context())
	respondJSON(w, http.StatusAccepted, nil)
}

func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Categories())
}
