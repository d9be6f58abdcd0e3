package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/giovaniif/motorent/domain/rental"
	"github.com/giovaniif/motorent/infra"
	"github.com/giovaniif/motorent/infra/config"
	"github.com/giovaniif/motorent/infra/repositories"
	"github.com/giovaniif/motorent/protocols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		JWTSecret:        "test-secret",
		TokenTTL:         time.Hour,
		CheckoutTimeout:  5 * time.Second,
		AssistantTimeout: time.Second,
		PaymentLimit:     10000,
	}
	b := MemoryBackends(logger)
	require.NoError(t, repositories.NewSeed(time.Now()).Load(context.Background(), b.Bikes, b.Rentals, b.Users, b.Messages))
	return NewRouter(NewApp(cfg, b, logger))
}

type call struct {
	method  string
	path    string
	body    any
	headers map[string]string
}

func do(t *testing.T, r *gin.Engine, c call) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func loginAs(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w := do(t, r, call{method: http.MethodPost, path: "/auth/login", body: gin.H{"email": email}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return "Bearer " + decode[struct {
		Token string `json:"token"`
	}](t, w).Token
}

func TestHealth(t *testing.T) {
	w := do(t, newTestServer(t), call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAvailability(t *testing.T) {
	r := newTestServer(t)

	w := do(t, r, call{method: http.MethodGet, path: "/bikes/bike1/availability?from=2030-01-10&to=2030-01-12&quantity=50"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[availabilityResponse](t, w)
	assert.Equal(t, int32(10), got.AvailableQuantity)
	assert.Equal(t, int32(10), got.Quantity, "quantity is clamped to what is free")
	assert.Equal(t, int32(3), got.NumDays)

	w = do(t, r, call{method: http.MethodGet, path: "/bikes/bike3/availability?from=2030-01-10&to=2030-01-12"})
	got = decode[availabilityResponse](t, w)
	assert.False(t, got.IsAvailable)
	assert.Equal(t, int32(0), got.AvailableQuantity)

	w = do(t, r, call{method: http.MethodGet, path: "/bikes/bike1/availability?from=2030-01-12&to=2030-01-10"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, call{method: http.MethodGet, path: "/bikes/nope/availability"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRentalFlow(t *testing.T) {
	r := newTestServer(t)
	token := loginAs(t, r, "renter@motorent.com")
	session := map[string]string{sessionHeader: "session-1"}

	w := do(t, r, call{method: http.MethodPut, path: "/session/selection", headers: session,
		body: gin.H{"from": "2030-01-10", "to": "2030-01-12", "location": "Downtown Central"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, call{method: http.MethodPost, path: "/bikes/bike1/quote", headers: session,
		body: gin.H{"quantity": 2, "options": []string{"helmet"}}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	quoted := decode[struct {
		TotalPrice float64 `json:"totalPrice"`
		NumDays    int32   `json:"numDays"`
	}](t, w)
	assert.Equal(t, 285.0, quoted.TotalPrice)
	assert.Equal(t, int32(3), quoted.NumDays)

	checkoutCall := call{method: http.MethodPost, path: "/checkout",
		headers: map[string]string{sessionHeader: "session-1", idempotencyHeader: "key-1", "Authorization": token}}
	w = do(t, r, checkoutCall)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	placed := decode[struct {
		OrderId   string   `json:"orderId"`
		RentalIds []string `json:"rentalIds"`
	}](t, w)
	assert.Len(t, placed.RentalIds, 2)

	w = do(t, r, checkoutCall)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, placed.OrderId, decode[struct {
		OrderId string `json:"orderId"`
	}](t, w).OrderId)

	w = do(t, r, call{method: http.MethodGet, path: "/bikes/bike1/availability?from=2030-01-12&to=2030-01-20"})
	assert.Equal(t, int32(8), decode[availabilityResponse](t, w).AvailableQuantity)

	w = do(t, r, call{method: http.MethodGet, path: "/rentals/mine", headers: map[string]string{"Authorization": token}})
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[[]rental.Rental](t, w)
	assert.Equal(t, placed.OrderId, mine[0].OrderId)

	w = do(t, r, call{method: http.MethodPost, path: "/rentals/" + mine[0].Id + "/cancel", headers: map[string]string{"Authorization": token}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = do(t, r, call{method: http.MethodGet, path: "/bikes/bike1/availability?from=2030-01-12&to=2030-01-20"})
	assert.Equal(t, int32(9), decode[availabilityResponse](t, w).AvailableQuantity)
}

func TestCheckout_RequiresHeadersAndToken(t *testing.T) {
	r := newTestServer(t)
	token := loginAs(t, r, "renter@motorent.com")

	w := do(t, r, call{method: http.MethodPost, path: "/checkout", headers: map[string]string{sessionHeader: "s"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, call{method: http.MethodPost, path: "/checkout", headers: map[string]string{sessionHeader: "s", "Authorization": token}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, call{method: http.MethodPost, path: "/checkout", headers: map[string]string{sessionHeader: "s", idempotencyHeader: "k", "Authorization": token}})
	assert.Equal(t, http.StatusConflict, w.Code, "no pending order")
}

func TestStaffBoard(t *testing.T) {
	r := newTestServer(t)

	w := do(t, r, call{method: http.MethodGet, path: "/staff/rentals"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	renter := loginAs(t, r, "renter@motorent.com")
	w = do(t, r, call{method: http.MethodGet, path: "/staff/rentals", headers: map[string]string{"Authorization": renter}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	staff := loginAs(t, r, "staff@motorent.com")
	w = do(t, r, call{method: http.MethodGet, path: "/staff/rentals", headers: map[string]string{"Authorization": staff}})
	require.Equal(t, http.StatusOK, w.Code)
	out := decode[struct {
		Upcoming []struct {
			Rental   rental.Rental `json:"rental"`
			UserName string        `json:"userName"`
		} `json:"upcoming"`
	}](t, w)
	require.Len(t, out.Upcoming, 1)
	assert.Equal(t, "rental2", out.Upcoming[0].Rental.Id)
	assert.Equal(t, "Alice Wonderland", out.Upcoming[0].UserName)

	w = do(t, r, call{method: http.MethodPost, path: "/staff/rentals/rental2/pickup", headers: map[string]string{"Authorization": staff}})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, call{method: http.MethodPost, path: "/staff/rentals/rental2/pickup", headers: map[string]string{"Authorization": staff}})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = do(t, r, call{method: http.MethodPost, path: "/staff/rentals/rental2/return", headers: map[string]string{"Authorization": staff}})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminFleetAndSupport(t *testing.T) {
	r := newTestServer(t)
	admin := map[string]string{"Authorization": loginAs(t, r, "admin@motorent.com")}

	w := do(t, r, call{method: http.MethodPost, path: "/admin/bikes", headers: admin, body: gin.H{
		"name": "Trail Blazer 300", "type": "Adventure", "pricePerDay": 60, "description": "Light dual-sport for gravel roads.",
		"features": []string{"ABS"}, "location": "Mountain Pass Rentals", "isAvailable": true, "amount": 4, "cylinderVolume": 292,
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "trail-blazer-300", decode[struct {
		Id string `json:"id"`
	}](t, w).Id)

	w = do(t, r, call{method: http.MethodDelete, path: "/admin/bikes/bike2", headers: admin})
	assert.Equal(t, http.StatusConflict, w.Code, "bike2 has an upcoming rental")

	w = do(t, r, call{method: http.MethodPut, path: "/admin/users/user1/role", headers: admin, body: gin.H{"role": "staff"}})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, call{method: http.MethodPost, path: "/support/messages", body: gin.H{
		"name": "Frank", "email": "frank@example.com", "subject": "Group booking", "message": "Can we rent six bikes for a tour?",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[struct {
		Id string `json:"id"`
	}](t, w).Id

	w = do(t, r, call{method: http.MethodPost, path: fmt.Sprintf("/admin/support/messages/%s/reply", id), headers: admin, body: gin.H{"reply": "Yes, see you soon."}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Replied", decode[struct {
		Status string `json:"status"`
	}](t, w).Status)

	w = do(t, r, call{method: http.MethodPost, path: "/support/chat", body: gin.H{"query": "Can I add a helmet?"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "answer")
}

func TestStaffBackOfficeScreens(t *testing.T) {
	r := newTestServer(t)
	staff := map[string]string{"Authorization": loginAs(t, r, "staff@motorent.com")}
	renter := map[string]string{"Authorization": loginAs(t, r, "renter@motorent.com")}

	w := do(t, r, call{method: http.MethodGet, path: "/staff/summary", headers: staff})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := decode[struct {
		Active    int `json:"activeRentals"`
		Upcoming  int `json:"upcomingRentals"`
		Locations int `json:"managedLocations"`
		Pending   int `json:"pendingSupportMessages"`
	}](t, w)
	assert.Equal(t, 0, summary.Active)
	assert.Equal(t, 1, summary.Upcoming)
	assert.Equal(t, 5, summary.Locations)
	assert.Equal(t, 1, summary.Pending)

	w = do(t, r, call{method: http.MethodGet, path: "/staff/users", headers: staff})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]struct {
		Id string `json:"id"`
	}](t, w), 3)

	w = do(t, r, call{method: http.MethodGet, path: "/staff/support/messages", headers: staff})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]struct {
		Id string `json:"id"`
	}](t, w), 4)

	w = do(t, r, call{method: http.MethodPut, path: "/staff/support/messages/msg1/status", headers: staff, body: gin.H{"status": "In Progress"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "In Progress", decode[struct {
		Status string `json:"status"`
	}](t, w).Status)

	w = do(t, r, call{method: http.MethodPost, path: "/staff/support/messages/msg1/reply", headers: staff, body: gin.H{"reply": "XL helmets are in stock."}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, call{method: http.MethodPut, path: "/admin/users/user1/role", headers: staff, body: gin.H{"role": "admin"}})
	assert.Equal(t, http.StatusForbidden, w.Code, "role changes stay with admins")

	for _, path := range []string{"/staff/summary", "/staff/users", "/staff/support/messages"} {
		w = do(t, r, call{method: http.MethodGet, path: path, headers: renter})
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
}

func TestProfile(t *testing.T) {
	r := newTestServer(t)
	renter := map[string]string{"Authorization": loginAs(t, r, "renter@motorent.com")}

	w := do(t, r, call{method: http.MethodGet, path: "/users/me"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, call{method: http.MethodPut, path: "/users/me", headers: renter, body: gin.H{
		"name": "Alice Liddell", "dateOfBirth": "1990-04-12", "address": "12 Rabbit Hole Lane", "credentialIdNumber": "DL12345678",
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, call{method: http.MethodGet, path: "/users/me", headers: renter})
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[struct {
		Name               string `json:"name"`
		Email              string `json:"email"`
		DateOfBirth        string `json:"dateOfBirth"`
		CredentialIdNumber string `json:"credentialIdNumber"`
	}](t, w)
	assert.Equal(t, "Alice Liddell", got.Name)
	assert.Equal(t, "renter@motorent.com", got.Email)
	assert.Equal(t, "1990-04-12", got.DateOfBirth)
	assert.Equal(t, "DL12345678", got.CredentialIdNumber)

	w = do(t, r, call{method: http.MethodPut, path: "/users/me", headers: renter, body: gin.H{"name": "Alice", "dateOfBirth": "tomorrow"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckout_SameKeyDifferentUsers(t *testing.T) {
	r := newTestServer(t)
	place := func(email, sessionId string) (int, string) {
		token := loginAs(t, r, email)
		headers := map[string]string{sessionHeader: sessionId, idempotencyHeader: "shared-key", "Authorization": token}
		w := do(t, r, call{method: http.MethodPost, path: "/bikes/bike1/quote", headers: headers,
			body: gin.H{"from": "2030-02-01", "to": "2030-02-02", "quantity": 1}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		w = do(t, r, call{method: http.MethodPost, path: "/checkout", headers: headers})
		return w.Code, decode[struct {
			OrderId string `json:"orderId"`
		}](t, w).OrderId
	}

	code, first := place("renter@motorent.com", "session-a")
	require.Equal(t, http.StatusCreated, code)
	code, second := place("staff@motorent.com", "session-b")
	require.Equal(t, http.StatusCreated, code, "another user's key must not replay")
	assert.NotEqual(t, first, second)
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("%w: 3 requested", rental.ErrInsufficientStock): http.StatusConflict,
		protocols.ErrCheckoutInProgress:                            http.StatusConflict,
		infra.NewTimeoutError("aiChatSupportFlow"):                 http.StatusGatewayTimeout,
		infra.NewNetworkError("connection refused"):                http.StatusBadGateway,
		errors.New("boom"):                                         http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(err), err.Error())
	}
}
