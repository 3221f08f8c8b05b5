package handoff

import (
	"net/url"
	"strings"
	"testing"

	"github.com/good2go/storefront/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(unitNo string) *models.Order {
	o := models.NewOrder("session-1", "2024-06-01", "12:00–13:00", unitNo, []models.OrderLine{
		{ProductID: "sa1", Name: "Spicy Chili Chips", Price: decimal.RequireFromString("3.99"), Quantity: 2},
	})
	o.ID = "order-42"
	return o
}

func TestMessage(t *testing.T) {
	c := NewComposer("+65 9610 0333", "Good2Go Express")

	msg := c.Message(newTestOrder("#03-12"))
	assert.Equal(t, "Hi! I've placed order order-42 with Good2Go Express.\n"+
		"- 2 x Spicy Chili Chips (RM 7.98)\n"+
		"Total: RM 7.98 for 2 item(s)\n"+
		"Pickup: 2024-06-01, 12:00–13:00\n"+
		"Unit: #03-12", msg)

	assert.NotContains(t, c.Message(newTestOrder("")), "Unit:")
}

func TestLink(t *testing.T) {
	c := NewComposer("+65 9610 0333", "Good2Go Express")
	o := newTestOrder("#03-12")

	link := c.Link(o)
	require.True(t, strings.HasPrefix(link, "https://wa.me/6596100333?text="))
	assert.NotContains(t, link, "+", "spaces are percent-encoded")

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, c.Message(o), u.Query().Get("text"))
}
