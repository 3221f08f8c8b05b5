package catalog

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/good2go/storefront/app/session"
	"github.com/good2go/storefront/models"
	"github.com/good2go/storefront/tray"
)

type Response struct {
	Total    int       `json:"total"`
	Products []Product `json:"products"`
}

type Badge struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Product struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	Category     string   `json:"category"`
	Summary      string   `json:"summary"`
	ImageURLs    []string `json:"imageUrls"`
	DataAIHint   string   `json:"dataAiHint"`
	Badge        *Badge   `json:"badge,omitempty"`
	Qty          int      `json:"qty"`
	Availability string   `json:"status"`
	InTray       bool     `json:"inTray"`
}

type ProductDetail struct {
	Product
	Description string `json:"description"`
}

type ProductProvider interface {
	GetFilteredProducts(offset, limit int, filters models.ProductFilters) ([]models.Product, int64, error)
	GetByID(id string) (*models.Product, error)
}

type CatalogHandler struct {
	log   *slog.Logger
	repo  ProductProvider
	trays tray.Store
}

func NewCatalogHandler(log *slog.Logger, r ProductProvider, trays tray.Store) *CatalogHandler {
	return &CatalogHandler{
		log:   log,
		repo:  r,
		trays: trays,
	}
}

func (h *CatalogHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.HandleGet)
	r.Get("/{id}", h.HandleGetProduct)
	return r
}

func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	// Parse pagination query params
	offset := 0
	limit := 10

	if oStr := r.URL.Query().Get("offset"); oStr != "" {
		if o, err := strconv.Atoi(oStr); err == nil && o >= 0 {
			offset = o
		}
	}

	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			if l < 1 {
				limit = 1
			} else if l > 100 {
				limit = 100
			} else {
				limit = l
			}
		}
	}

	// Parse filters
	category := models.CategorySlug(r.URL.Query().Get("category"))
	if category != "" && category != models.CategoryAll && !category.Valid() {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	var priceFilter *float64
	if priceStr := r.URL.Query().Get("price_lt"); priceStr != "" {
		if val, err := strconv.ParseFloat(priceStr, 64); err == nil {
			priceFilter = &val
		}
	}

	inStock, _ := strconv.ParseBool(r.URL.Query().Get("in_stock"))

	filters := models.ProductFilters{
		Category:      category,
		PriceLessThan: priceFilter,
		InStockOnly:   inStock,
	}

	res, total, err := h.repo.GetFilteredProducts(offset, limit, filters)
	if err != nil {
		h.log.Error("list products failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to get products")
		return
	}

	t := h.sessionTray(r)
	products := make([]Product, len(res))
	for i := range res {
		products[i] = toProduct(&res[i], t)
	}

	w.Header().Set("Content-Type", "application/json")
	response := Response{
		Total:    int(total),
		Products: products,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.log.Error("get product failed", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}

	response := ProductDetail{
		Product:     toProduct(product, h.sessionTray(r)),
		Description: product.Description,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// sessionTray loads the caller's tray for the inTray flags. Catalog reads
// still succeed without it.
func (h *CatalogHandler) sessionTray(r *http.Request) *tray.Tray {
	id := session.FromContext(r.Context())
	if h.trays == nil || id == "" {
		return nil
	}
	t, err := tray.Load(r.Context(), h.trays, id)
	if err != nil {
		h.log.Warn("load tray for catalog failed", "err", err)
		return nil
	}
	return t
}

func toProduct(p *models.Product, t *tray.Tray) Product {
	images := []string(p.ImageURLs)
	if len(images) == 0 {
		images = []string{}
	}
	out := Product{
		ID:           p.ID,
		Name:         p.Name,
		Price:        p.Price.InexactFloat64(),
		Category:     string(p.Category),
		Summary:      p.Summary,
		ImageURLs:    images,
		DataAIHint:   p.DataAIHint,
		Qty:          p.Qty,
		Availability: string(p.Availability()),
		InTray:       t != nil && t.Contains(p.ID),
	}
	if b := p.Badge(); b != nil {
		out.Badge = &Badge{Type: string(b.Type), Text: b.Text}
	}
	return out
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
