package orders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/good2go/storefront/app/session"
	"github.com/good2go/storefront/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type OrderProvider interface {
	GetByID(ctx context.Context, id string) (*models.Order, error)
}

// Linker builds the messaging deep link for an order. *handoff.Composer
// implements it.
type Linker interface {
	Link(o *models.Order) string
}

type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

type OrderResponse struct {
	ID             string      `json:"id"`
	CreatedAt      time.Time   `json:"createdAt"`
	Status         string      `json:"status"`
	PickupDate     string      `json:"pickupDate"`
	PickupTimeSlot string      `json:"pickupTimeSlot"`
	UnitNo         string      `json:"unitNo,omitempty"`
	Items          []OrderItem `json:"items"`
	TotalAmount    float64     `json:"totalAmount"`
	TotalItems     int         `json:"totalItems"`
	WhatsAppURL    string      `json:"whatsappUrl"`
}

type OrderHandler struct {
	log    *slog.Logger
	repo   OrderProvider
	linker Linker
	tracer trace.Tracer
}

func NewOrderHandler(log *slog.Logger, repo OrderProvider, linker Linker) *OrderHandler {
	return &OrderHandler{
		log:    log,
		repo:   repo,
		linker: linker,
		tracer: otel.Tracer("orders-http"),
	}
}

func (h *OrderHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/{id}", h.HandleGet)
	return r
}

// HandleGet returns an order to the session that placed it. Orders of other
// sessions are reported as missing.
func (h *OrderHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("order.id", id))

	order, err := h.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, "Order not found")
			return
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.log.Error("get order failed", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve order")
		return
	}
	if order.SessionID != session.FromContext(ctx) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.toResponse(order)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *OrderHandler) toResponse(o *models.Order) OrderResponse {
	items := make([]OrderItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price.InexactFloat64(),
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal.InexactFloat64(),
		}
	}
	return OrderResponse{
		ID:             o.ID,
		CreatedAt:      o.CreatedAt,
		Status:         string(o.Status),
		PickupDate:     o.PickupDate,
		PickupTimeSlot: o.PickupTimeSlot,
		UnitNo:         o.UnitNo,
		Items:          items,
		TotalAmount:    o.TotalAmount.InexactFloat64(),
		TotalItems:     o.TotalItems,
		WhatsAppURL:    h.linker.Link(o),
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
