package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/good2go/storefront/handoff"
	"github.com/good2go/storefront/models"
	"github.com/good2go/storefront/pickup"
	"github.com/good2go/storefront/tray"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyTray        = errors.New("your pack is empty")
	ErrMissingSlot      = errors.New("please select a pickup time slot")
	ErrMissingDate      = errors.New("please select a pickup date")
	ErrSubmissionFailed = errors.New("submission failed, please try again")
)

// IsValidation reports whether err was raised before the order reached
// the database.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrEmptyTray, ErrMissingSlot, ErrMissingDate,
		pickup.ErrInvalidDate, pickup.ErrNoSlots, pickup.ErrSlotUnavailable, pickup.ErrUnknownSlot,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, o *models.Order) error
}

type Request struct {
	SessionID      string
	PickupDate     string
	PickupTimeSlot string
	UnitNo         string
}

type Confirmation struct {
	OrderID        string
	Items          []models.OrderItem
	TotalAmount    decimal.Decimal
	TotalItems     int
	PickupDate     string
	PickupTimeSlot string
	UnitNo         string
	HandoffURL     string
}

type Service struct {
	log      *slog.Logger
	orders   OrderPlacer
	store    tray.Store
	schedule *pickup.Schedule
	handoff  *handoff.Composer
	timeout  time.Duration
}

func NewService(log *slog.Logger, orders OrderPlacer, store tray.Store, schedule *pickup.Schedule, composer *handoff.Composer, timeout time.Duration) *Service {
	return &Service{
		log:      log,
		orders:   orders,
		store:    store,
		schedule: schedule,
		handoff:  composer,
		timeout:  timeout,
	}
}

// Submit turns the session's tray into an order. Stock errors come back as
// *models.StockError; other store failures are wrapped in
// ErrSubmissionFailed. The tray is only cleared once the order committed.
func (s *Service) Submit(ctx context.Context, req Request) (*Confirmation, error) {
	t, err := tray.Load(ctx, s.store, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	if t.Len() == 0 {
		return nil, ErrEmptyTray
	}
	if req.PickupDate == "" {
		return nil, ErrMissingDate
	}
	if req.PickupTimeSlot == "" {
		return nil, ErrMissingSlot
	}
	date, err := s.schedule.ParseDate(req.PickupDate)
	if err != nil {
		return nil, err
	}
	if err := s.schedule.Validate(date, req.PickupTimeSlot); err != nil {
		return nil, err
	}

	order := models.NewOrder(req.SessionID, date.Format(pickup.DateLayout), req.PickupTimeSlot, req.UnitNo, t.Lines())

	// Once started, the transaction runs to commit or rollback even if the
	// caller goes away.
	txCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if err := s.orders.PlaceOrder(txCtx, order); err != nil {
		var stockErr *models.StockError
		if errors.As(err, &stockErr) {
			s.log.Info("order rejected", "session", req.SessionID, "product", stockErr.ProductID, "reason", stockErr.Reason)
			return nil, stockErr
		}
		s.log.Error("place order failed", "session", req.SessionID, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	if err := t.Clear(txCtx); err != nil {
		s.log.Warn("clear tray after order failed", "session", req.SessionID, "order", order.ID, "err", err)
	}
	if req.UnitNo != "" {
		if err := tray.SetUnitNumber(txCtx, s.store, req.SessionID, req.UnitNo); err != nil {
			s.log.Warn("remember unit number failed", "session", req.SessionID, "err", err)
		}
	}

	s.log.Info("order placed", "order", order.ID, "session", req.SessionID, "items", order.TotalItems, "total", order.TotalAmount.StringFixed(2))
	return s.confirmation(order), nil
}

func (s *Service) confirmation(o *models.Order) *Confirmation {
	return &Confirmation{
		OrderID:        o.ID,
		Items:          o.Items,
		TotalAmount:    o.TotalAmount,
		TotalItems:     o.TotalItems,
		PickupDate:     o.PickupDate,
		PickupTimeSlot: o.PickupTimeSlot,
		UnitNo:         o.UnitNo,
		HandoffURL:     s.handoff.Link(o),
	}
}

// SlotView is what the checkout surface shows for one candidate date.
// Configured lists every slot so unavailable ones can be shown disabled.
type SlotView struct {
	Date       string
	Slots      []string
	Configured []string
	Selected   string
	Available  bool
	LeadTime   time.Duration
}

// Slots lists the bookable slots for date and reconciles the current
// selection against them.
func (s *Service) Slots(date, selected string) (*SlotView, error) {
	d, err := s.schedule.ParseDate(date)
	if err != nil {
		return nil, err
	}
	view := &SlotView{
		Date:     d.Format(pickup.DateLayout),
		Slots:    []string{},
		LeadTime: s.schedule.LeadTime(),
	}
	for _, slot := range s.schedule.Slots() {
		view.Configured = append(view.Configured, slot.Label)
	}
	for _, slot := range s.schedule.Available(d) {
		view.Slots = append(view.Slots, slot.Label)
	}

	view.Selected, err = s.schedule.Reconcile(d, selected)
	if errors.Is(err, pickup.ErrNoSlots) {
		return view, nil
	}
	if err != nil {
		return nil, err
	}
	view.Available = true
	return view, nil
}

// Dates lists the next n candidate pickup dates.
func (s *Service) Dates(n int) []string {
	out := make([]string, 0, n)
	for _, d := range s.schedule.Dates(n) {
		out = append(out, d.Format(pickup.DateLayout))
	}
	return out
}
