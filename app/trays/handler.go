package trays

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/good2go/storefront/app/session"
	"github.com/good2go/storefront/models"
	"github.com/good2go/storefront/tray"
)

type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

type Response struct {
	Items       []Item  `json:"items"`
	TotalItems  int     `json:"totalItems"`
	TotalAmount float64 `json:"totalAmount"`
}

type ProductLookup interface {
	GetByID(id string) (*models.Product, error)
}

type TrayHandler struct {
	log      *slog.Logger
	products ProductLookup
	store    tray.Store
}

func NewTrayHandler(log *slog.Logger, products ProductLookup, store tray.Store) *TrayHandler {
	return &TrayHandler{
		log:      log,
		products: products,
		store:    store,
	}
}

func (h *TrayHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.HandleGet)
	r.Delete("/", h.HandleClear)
	r.Post("/toggle", h.HandleToggle)
	r.Put("/items/{productId}", h.HandleSetQuantity)
	r.Get("/unit", h.HandleGetUnit)
	r.Put("/unit", h.HandleSetUnit)
	return r
}

func (h *TrayHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	t, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toResponse(t))
}

// HandleToggle adds the product with quantity 1, or removes it when it is
// already in the tray. Sold-out products cannot be added but can always be
// removed.
func (h *TrayHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if input.ProductID == "" {
		writeError(w, http.StatusBadRequest, "Missing productId")
		return
	}

	t, ok := h.load(w, r)
	if !ok {
		return
	}

	product, err := h.productFor(t, input.ProductID)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.log.Error("get product failed", "id", input.ProductID, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}
	if !t.Contains(product.ID) && product.Availability() == models.OutOfStock {
		writeError(w, http.StatusConflict, "product is out of stock")
		return
	}

	if err := t.Toggle(r.Context(), product); err != nil {
		h.log.Error("save tray failed", "err", err)
		writeError(w, http.StatusServiceUnavailable, "failed to save tray")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(t))
}

// productFor skips the catalog lookup when the toggle is a removal, so a
// product deleted from the catalog can still be taken out of the tray.
func (h *TrayHandler) productFor(t *tray.Tray, id string) (*models.Product, error) {
	if t.Contains(id) {
		return &models.Product{ID: id}, nil
	}
	return h.products.GetByID(id)
}

func (h *TrayHandler) HandleSetQuantity(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Quantity *int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if input.Quantity == nil {
		writeError(w, http.StatusBadRequest, "Missing quantity")
		return
	}

	t, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := t.SetQuantity(r.Context(), chi.URLParam(r, "productId"), *input.Quantity); err != nil {
		h.log.Error("save tray failed", "err", err)
		writeError(w, http.StatusServiceUnavailable, "failed to save tray")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(t))
}

func (h *TrayHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	t, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := t.Clear(r.Context()); err != nil {
		h.log.Error("clear tray failed", "err", err)
		writeError(w, http.StatusServiceUnavailable, "failed to save tray")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type unitBody struct {
	UnitNo string `json:"unitNo"`
}

func (h *TrayHandler) HandleGetUnit(w http.ResponseWriter, r *http.Request) {
	unit, err := tray.UnitNumber(r.Context(), h.store, session.FromContext(r.Context()))
	if err != nil {
		h.log.Error("load unit number failed", "err", err)
		writeError(w, http.StatusServiceUnavailable, "failed to load unit number")
		return
	}
	writeJSON(w, http.StatusOK, unitBody{UnitNo: unit})
}

func (h *TrayHandler) HandleSetUnit(w http.ResponseWriter, r *http.Request) {
	var input unitBody
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := tray.SetUnitNumber(r.Context(), h.store, session.FromContext(r.Context()), input.UnitNo); err != nil {
		h.log.Error("save unit number failed", "err", err)
		writeError(w, http.StatusServiceUnavailable, "failed to save unit number")
		return
	}
	writeJSON(w, http.StatusOK, input)
}

func (h *TrayHandler) load(w http.ResponseWriter, r *http.Request) (*tray.Tray, bool) {
	t, err := tray.Load(r.Context(), h.store, session.FromContext(r.Context()))
	if err != nil {
		h.log.Error("load tray failed", "err", err)
		writeError(w, http.StatusServiceUnavailable, "failed to load tray")
		return nil, false
	}
	return t, true
}

func toResponse(t *tray.Tray) Response {
	entries := t.Entries()
	items := make([]Item, len(entries))
	for i, e := range entries {
		items[i] = Item{
			ProductID: e.ProductID,
			Name:      e.Name,
			Price:     e.Price.InexactFloat64(),
			Quantity:  e.Quantity,
			Subtotal:  e.Subtotal().InexactFloat64(),
		}
	}
	return Response{
		Items:       items,
		TotalItems:  t.TotalItems(),
		TotalAmount: t.TotalAmount().InexactFloat64(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
