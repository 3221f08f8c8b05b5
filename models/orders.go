package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPacked    OrderStatus = "packed"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// Order is a pickup order recorded at checkout.
type Order struct {
	ID             string          `gorm:"primaryKey"`
	SessionID      string          `gorm:"column:uuid;index;not null"`
	CreatedAt      time.Time       `gorm:"not null"`
	PickupDate     string          `gorm:"not null"`
	PickupTimeSlot string          `gorm:"not null"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalItems     int             `gorm:"not null"`
	UnitNo         string
	Status         OrderStatus `gorm:"not null"`
}

func (o *Order) TableName() string {
	return "orders"
}

// BeforeCreate assigns the order id. Callers never choose it.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	o.ID = uuid.NewString()
	return nil
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   string          `gorm:"index;not null"`
	ProductID string          `gorm:"not null"`
	Name      string          `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Quantity  int             `gorm:"not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

func (i *OrderItem) TableName() string {
	return "order_items"
}

// OrderLine is the input for one order item.
type OrderLine struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// NewOrder builds a pending order whose totals are derived from lines.
func NewOrder(sessionID, pickupDate, slot, unitNo string, lines []OrderLine) *Order {
	o := &Order{
		SessionID:      sessionID,
		PickupDate:     pickupDate,
		PickupTimeSlot: slot,
		UnitNo:         unitNo,
		Status:         OrderPending,
		Items:          make([]OrderItem, 0, len(lines)),
		TotalAmount:    decimal.Zero,
	}
	for _, l := range lines {
		subtotal := l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		o.Items = append(o.Items, OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
			Subtotal:  subtotal,
		})
		o.TotalAmount = o.TotalAmount.Add(subtotal)
		o.TotalItems += l.Quantity
	}
	return o
}
