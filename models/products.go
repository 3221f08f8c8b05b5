package models

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Availability is the stock state shown to customers.
type Availability string

const (
	InStock    Availability = "has-stock"
	OutOfStock Availability = "out-of-stock"
)

// AvailabilityOf derives the stock state from a quantity.
func AvailabilityOf(qty int) Availability {
	if qty > 0 {
		return InStock
	}
	return OutOfStock
}

// BadgeType is the kind of promotional badge attached to a product.
type BadgeType string

const (
	BadgeHot       BadgeType = "hot"
	BadgeLimited   BadgeType = "limited"
	BadgeSignature BadgeType = "signature"
	BadgeNew       BadgeType = "new"
	BadgeCustom    BadgeType = "custom"
)

// Badge is a promotional label such as "Hot" or "Limited".
type Badge struct {
	Type BadgeType
	Text string
}

// Product represents a product in the catalog.
// Qty is the only source of truth for availability; Status mirrors it for
// readers of the raw table and is rewritten on every save.
type Product struct {
	ID          string          `gorm:"primaryKey"`
	Name        string          `gorm:"not null"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Category    CategorySlug    `gorm:"index;not null"`
	Summary     string
	Description string
	ImageURLs   pq.StringArray `gorm:"type:text[]"`
	DataAIHint  string
	BadgeType   BadgeType
	BadgeText   string
	Qty         int          `gorm:"not null;default:0;check:qty >= 0"`
	Status      Availability `gorm:"not null"`
}

func (p *Product) TableName() string {
	return "products"
}

// Availability recomputes the stock state from Qty.
func (p *Product) Availability() Availability {
	return AvailabilityOf(p.Qty)
}

// Badge returns the product badge, or nil when it has none.
func (p *Product) Badge() *Badge {
	if p.BadgeType == "" || p.BadgeText == "" {
		return nil
	}
	return &Badge{Type: p.BadgeType, Text: p.BadgeText}
}

func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.Status = p.Availability()
	return nil
}
