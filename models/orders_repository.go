package models

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gorm.io/gorm"
)

// ErrOrderNotFound is returned when an order is not found.
var ErrOrderNotFound = errors.New("order not found")

// StockFailure says why a line item could not be reserved.
type StockFailure string

const (
	StockNotFound     StockFailure = "not-found"
	StockInsufficient StockFailure = "insufficient-stock"
)

// StockError rejects an order because one of its line items cannot be
// fulfilled. Its message is written for customers.
type StockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
	Reason    StockFailure
}

func (e *StockError) Error() string {
	name := e.Name
	if name == "" {
		name = e.ProductID
	}
	if e.Reason == StockNotFound {
		return fmt.Sprintf("%s (%s) is no longer available", name, e.ProductID)
	}
	return fmt.Sprintf("only %d of %s (%s) left, you requested %d", e.Available, name, e.ProductID, e.Requested)
}

type OrdersRepository struct {
	db *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{
		db: db,
	}
}

// PlaceOrder decrements stock for every item and inserts the order in one
// transaction. Either all of it commits or none of it does; a *StockError
// names the first item that could not be reserved.
//
// Rows are locked in product id order so concurrent orders sharing
// products cannot deadlock. The stored item order is not changed.
func (r *OrdersRepository) PlaceOrder(ctx context.Context, o *Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range reservationOrder(o.Items) {
			if err := reserve(tx, item); err != nil {
				return err
			}
		}
		return tx.Create(o).Error
	})
}

func reservationOrder(items []OrderItem) []OrderItem {
	return slices.SortedStableFunc(slices.Values(items), func(a, b OrderItem) int {
		return strings.Compare(a.ProductID, b.ProductID)
	})
}

func reserve(tx *gorm.DB, item OrderItem) error {
	var p Product
	if err := tx.Select("id", "name", "qty").Where("id = ?", item.ProductID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &StockError{
				ProductID: item.ProductID,
				Name:      item.Name,
				Requested: item.Quantity,
				Reason:    StockNotFound,
			}
		}
		return err
	}

	insufficient := func(available int) error {
		return &StockError{
			ProductID: p.ID,
			Name:      p.Name,
			Requested: item.Quantity,
			Available: available,
			Reason:    StockInsufficient,
		}
	}
	if p.Qty < item.Quantity {
		return insufficient(p.Qty)
	}

	// The guard re-checks qty under the row lock taken by UPDATE, so a
	// concurrent checkout that committed first leaves zero rows affected.
	res := tx.Session(&gorm.Session{SkipHooks: true}).
		Model(&Product{}).
		Where("id = ? AND qty >= ?", p.ID, item.Quantity).
		Updates(map[string]any{
			"qty": gorm.Expr("qty - ?", item.Quantity),
			"status": gorm.Expr("CASE WHEN qty - ? > 0 THEN ? ELSE ? END",
				item.Quantity, string(InStock), string(OutOfStock)),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var current Product
		if err := tx.Select("qty").Where("id = ?", p.ID).First(&current).Error; err != nil {
			return err
		}
		return insufficient(current.Qty)
	}
	return nil
}

func (r *OrdersRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	var order Order
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id = ?", id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}
