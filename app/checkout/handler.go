package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/good2go/storefront/app/session"
	"github.com/good2go/storefront/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const idempotencyHeader = "Idempotency-Key"

// Deduplicator claims idempotency keys. *idempotency.Store implements it.
type Deduplicator interface {
	Key(scope, sessionID, token string) string
	Seen(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type Handler struct {
	log     *slog.Logger
	service *Service
	dedup   Deduplicator
	tracer  trace.Tracer
}

// NewHandler builds the checkout handler. dedup may be nil, in which case
// Idempotency-Key headers are ignored.
func NewHandler(log *slog.Logger, service *Service, dedup Deduplicator) *Handler {
	return &Handler{
		log:     log,
		service: service,
		dedup:   dedup,
		tracer:  otel.Tracer("checkout-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/slots", h.HandleSlots)
	r.Get("/dates", h.HandleDates)
	r.Post("/", h.HandleSubmit)
	return r
}

type submitReq struct {
	PickupDate     string `json:"pickupDate"`
	PickupTimeSlot string `json:"pickupTimeSlot"`
	UnitNo         string `json:"unitNo"`
}

type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

type ConfirmationResponse struct {
	OrderID        string      `json:"orderId"`
	Items          []OrderItem `json:"items"`
	TotalAmount    float64     `json:"totalAmount"`
	TotalItems     int         `json:"totalItems"`
	PickupDate     string      `json:"pickupDate"`
	PickupTimeSlot string      `json:"pickupTimeSlot"`
	UnitNo         string      `json:"unitNo,omitempty"`
	WhatsAppURL    string      `json:"whatsappUrl"`
}

type ErrorResponse struct {
	Error     string              `json:"error"`
	ProductID string              `json:"productId,omitempty"`
	Reason    models.StockFailure `json:"reason,omitempty"`
	Requested int                 `json:"requested,omitempty"`
	Available *int                `json:"available,omitempty"`
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SubmitOrder")
	defer span.End()

	var req submitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	sessionID := session.FromContext(ctx)
	span.SetAttributes(attribute.String("session.id", sessionID))

	key := ""
	if token := r.Header.Get(idempotencyHeader); token != "" && h.dedup != nil {
		key = h.dedup.Key("checkout", sessionID, token)
		seen, err := h.dedup.Seen(ctx, key)
		if err != nil {
			h.log.Error("idempotency check failed", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: ErrSubmissionFailed.Error()})
			return
		}
		if seen {
			writeJSON(w, http.StatusConflict, ErrorResponse{Error: "this order is already being submitted"})
			return
		}
	}

	conf, err := h.service.Submit(ctx, Request{
		SessionID:      sessionID,
		PickupDate:     req.PickupDate,
		PickupTimeSlot: req.PickupTimeSlot,
		UnitNo:         req.UnitNo,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if key != "" {
			if relErr := h.dedup.Release(context.WithoutCancel(ctx), key); relErr != nil {
				h.log.Warn("release idempotency key failed", "err", relErr)
			}
		}
		h.writeSubmitError(w, err)
		return
	}

	span.SetAttributes(attribute.String("order.id", conf.OrderID))
	writeJSON(w, http.StatusCreated, toResponse(conf))
}

func (h *Handler) writeSubmitError(w http.ResponseWriter, err error) {
	var stockErr *models.StockError
	switch {
	case errors.As(err, &stockErr):
		resp := ErrorResponse{
			Error:     stockErr.Error(),
			ProductID: stockErr.ProductID,
			Reason:    stockErr.Reason,
			Requested: stockErr.Requested,
		}
		if stockErr.Reason == models.StockInsufficient {
			available := stockErr.Available
			resp.Available = &available
		}
		writeJSON(w, http.StatusConflict, resp)
	case errors.Is(err, ErrEmptyTray):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case IsValidation(err):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: ErrSubmissionFailed.Error()})
	}
}

type slotsResponse struct {
	Date            string   `json:"date"`
	Slots           []string `json:"slots"`
	AllSlots        []string `json:"allSlots"`
	Selected        string   `json:"selected"`
	Available       bool     `json:"available"`
	LeadTimeMinutes int      `json:"leadTimeMinutes"`
}

func (h *Handler) HandleSlots(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Slots(r.URL.Query().Get("date"), r.URL.Query().Get("selected"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, slotsResponse{
		Date:            view.Date,
		Slots:           view.Slots,
		AllSlots:        view.Configured,
		Selected:        view.Selected,
		Available:       view.Available,
		LeadTimeMinutes: int(view.LeadTime.Minutes()),
	})
}

func (h *Handler) HandleDates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"dates": h.service.Dates(7)})
}

func toResponse(c *Confirmation) ConfirmationResponse {
	items := make([]OrderItem, len(c.Items))
	for i, item := range c.Items {
		items[i] = OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price.InexactFloat64(),
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal.InexactFloat64(),
		}
	}
	return ConfirmationResponse{
		OrderID:        c.OrderID,
		Items:          items,
		TotalAmount:    c.TotalAmount.InexactFloat64(),
		TotalItems:     c.TotalItems,
		PickupDate:     c.PickupDate,
		PickupTimeSlot: c.PickupTimeSlot,
		UnitNo:         c.UnitNo,
		WhatsAppURL:    c.HandoffURL,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
