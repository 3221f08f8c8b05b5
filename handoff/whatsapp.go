// Package handoff composes the pre-filled WhatsApp message a customer can
// send after placing an order.
package handoff

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/good2go/storefront/models"
)

const baseURL = "https://wa.me/"

type Composer struct {
	Phone string
	Brand string
}

func NewComposer(phone, brand string) *Composer {
	return &Composer{Phone: phone, Brand: brand}
}

// Message renders a plain-text summary of o.
func (c *Composer) Message(o *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi! I've placed order %s with %s.\n", o.ID, c.Brand)
	for _, item := range o.Items {
		fmt.Fprintf(&b, "- %d x %s (RM %s)\n", item.Quantity, item.Name, item.Subtotal.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: RM %s for %d item(s)\n", o.TotalAmount.StringFixed(2), o.TotalItems)
	fmt.Fprintf(&b, "Pickup: %s, %s", o.PickupDate, o.PickupTimeSlot)
	if o.UnitNo != "" {
		fmt.Fprintf(&b, "\nUnit: %s", o.UnitNo)
	}
	return b.String()
}

// Link returns the wa.me deep link carrying Message(o).
func (c *Composer) Link(o *models.Order) string {
	text := strings.ReplaceAll(url.QueryEscape(c.Message(o)), "+", "%20")
	return baseURL + digits(c.Phone) + "?text=" + text
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
