package orders

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/good2go/storefront/app/session"
	"github.com/good2go/storefront/handoff"
	"github.com/good2go/storefront/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock Repo ---

type MockOrderRepo struct {
	Orders map[string]*models.Order
	Err    error

	lastCalledID string
}

func (m *MockOrderRepo) GetByID(_ context.Context, id string) (*models.Order, error) {
	m.lastCalledID = id
	if m.Err != nil {
		return nil, m.Err
	}
	o, ok := m.Orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return o, nil
}

func newTestOrder() *models.Order {
	o := models.NewOrder("s1", "2024-06-01", "12:00–13:00", "#03-12", []models.OrderLine{
		{ProductID: "sa1", Name: "Spicy Chili Chips", Price: decimal.RequireFromString("3.99"), Quantity: 2},
	})
	o.ID = "order-1"
	o.CreatedAt = time.Date(2024, 5, 31, 9, 0, 0, 0, time.UTC)
	return o
}

// --- Tests ---

func TestHandleGet(t *testing.T) {
	testCases := []struct {
		name               string
		orderID            string
		sessionID          string
		repoErr            error
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:               "Success",
			orderID:            "order-1",
			sessionID:          "s1",
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp OrderResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "order-1", resp.ID)
				assert.Equal(t, "pending", resp.Status)
				assert.Equal(t, 7.98, resp.TotalAmount)
				assert.Equal(t, 2, resp.TotalItems)
				require.Len(t, resp.Items, 1)
				assert.Equal(t, 7.98, resp.Items[0].Subtotal)
				assert.Equal(t, "#03-12", resp.UnitNo)
				assert.True(t, strings.HasPrefix(resp.WhatsAppURL, "https://wa.me/6596100333?text="))
				assert.Contains(t, resp.WhatsAppURL, "order-1")
			},
		},
		{
			name:               "Order of another session",
			orderID:            "order-1",
			sessionID:          "s2",
			expectedStatusCode: http.StatusNotFound,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Contains(t, rec.Body.String(), "Order not found")
			},
		},
		{
			name:               "Unknown order",
			orderID:            "order-9",
			sessionID:          "s1",
			expectedStatusCode: http.StatusNotFound,
		},
		{
			name:               "Repository error",
			orderID:            "order-1",
			sessionID:          "s1",
			repoErr:            errors.New("db down"),
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
				assert.Equal(t, "Failed to retrieve order", errResp["error"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			repo := &MockOrderRepo{Orders: map[string]*models.Order{"order-1": newTestOrder()}, Err: tc.repoErr}
			handler := NewOrderHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, handoff.NewComposer("+65 9610 0333", "Good2Go Express"))
			req := httptest.NewRequest(http.MethodGet, "/"+tc.orderID, nil)
			req = req.WithContext(session.WithID(req.Context(), tc.sessionID))
			rec := httptest.NewRecorder()

			// Act
			handler.Routes().ServeHTTP(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			assert.Equal(t, tc.orderID, repo.lastCalledID)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}
