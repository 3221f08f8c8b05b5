package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	var seen string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	testCases := []struct {
		name          string
		cookie        string
		expectNewID   bool
		expectedValue string
	}{
		{name: "Issues a session when missing", expectNewID: true},
		{name: "Keeps a valid session", cookie: "0b6f8f2e-3f62-4c2a-9a57-5d0c7f4d2a11", expectedValue: "0b6f8f2e-3f62-4c2a-9a57-5d0c7f4d2a11"},
		{name: "Replaces a malformed session", cookie: "not-a-uuid", expectNewID: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/tray", nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tc.cookie})
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			cookies := rec.Result().Cookies()
			if tc.expectNewID {
				require.Len(t, cookies, 1)
				assert.Equal(t, CookieName, cookies[0].Name)
				assert.Equal(t, cookies[0].Value, seen)
				_, err := uuid.Parse(seen)
				assert.NoError(t, err)
				return
			}
			assert.Empty(t, cookies)
			assert.Equal(t, tc.expectedValue, seen)
		})
	}
}

func TestFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, FromContext(req.Context()))
}
