package categories

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/good2go/storefront/models"
)

type CategoryResponse struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Products int64  `json:"products"`
}

type CategoryProvider interface {
	GetAllCategories() ([]models.Category, error)
}

type CategoryHandler struct {
	log  *slog.Logger
	repo CategoryProvider
}

func NewCategoryHandler(log *slog.Logger, r CategoryProvider) *CategoryHandler {
	return &CategoryHandler{log: log, repo: r}
}

func (h *CategoryHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.HandleGetAll)
	return r
}

// HandleGetAll lists the categories in display order, led by the "all"
// filter whose count covers the whole catalog.
func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.GetAllCategories()
	if err != nil {
		h.log.Error("list categories failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch categories")
		return
	}

	response := make([]CategoryResponse, 0, len(categories)+1)
	response = append(response, CategoryResponse{Slug: string(models.CategoryAll), Name: "All"})
	for _, c := range categories {
		response[0].Products += c.Products
		response = append(response, CategoryResponse{
			Slug:     string(c.Slug),
			Name:     c.Name,
			Products: c.Products,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
