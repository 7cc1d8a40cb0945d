package http

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/shopper"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   string
}

type testEnv struct {
	router http.Handler
	kv     *storage.MemoryStore
	reqs   chan recordedRequest
}

// newTestEnv wires the router against backend, which is served under /api.
func newTestEnv(t *testing.T, backend *http.ServeMux) *testEnv {
	t.Helper()

	reqs := make(chan recordedRequest, 100)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		reqs <- recordedRequest{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), Body: string(body)}
		backend.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	env := newRouterWithBaseURL(srv.URL + "/api")
	env.reqs = reqs
	return env
}

func newRouterWithBaseURL(baseURL string) *testEnv {
	logger := log.New(io.Discard, "", 0)
	httpClient := &http.Client{Timeout: 5 * time.Second}
	base := clients.NewClient("backend", baseURL, httpClient)

	kv := storage.NewMemoryStore()
	orders := clients.NewOrderClient(base)
	addresses := clients.NewAddressClient(base)
	registry := shopper.NewRegistry(shopper.Options{
		Store: kv,
		Backend: shopper.Backend{
			Auth:      clients.NewAuthClient(base),
			Orders:    orders,
			Payments:  clients.NewPaymentClient(base),
			Addresses: addresses,
		},
		Events: events.NewLoggingPublisher(logger),
		Fees:   cart.DefaultFees(),
		Logger: logger,
	})

	router := NewRouter(Deps{
		Logger:       logger,
		Cfg:          config.Config{CORSAllowOrigins: []string{"*"}},
		Shoppers:     registry,
		Fees:         cart.DefaultFees(),
		Restaurants:  clients.NewRestaurantClient(base),
		Menu:         clients.NewMenuClient(base),
		Categories:   clients.NewCategoryClient(base),
		Orders:       orders,
		Addresses:    addresses,
		HealthProbes: []clients.HealthProbe{{Name: "backend", Client: base, Path: "/actuator/health"}},
	})
	return &testEnv{router: router, kv: kv}
}

func (e *testEnv) do(t *testing.T, method, path, sid, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if sid != "" {
		req.Header.Set("X-Session-Id", sid)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// drain returns the backend requests recorded so far.
func (e *testEnv) drain() []recordedRequest {
	var out []recordedRequest
	for {
		select {
		case r := <-e.reqs:
			out = append(out, r)
		default:
			return out
		}
	}
}

func ok(data string) string {
	return `{"success":true,"message":"ok","data":` + data + `}`
}

func reply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

const loginBody = `{"accessToken":"tok-1","refreshToken":"ref-1","user":{"id":7,"name":"Asha","email":"asha@example.com","phone":"9999999999"}}`

func withLogin(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/login", reply(http.StatusOK, ok(loginBody)))
}

func login(t *testing.T, env *testEnv, sid string) {
	t.Helper()
	rr := env.do(t, http.MethodPost, "/auth/login", sid, `{"email":"asha@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func withCatalog(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/restaurants/1", reply(http.StatusOK, ok(`{"id":1,"name":"Pizza Hub","city":"Pune","isOpen":true,"deliveryFee":null}`)))
	mux.HandleFunc("GET /api/restaurants/2", reply(http.StatusOK, ok(`{"id":2,"name":"Dosa Corner","city":"Pune","isOpen":true,"deliveryFee":40}`)))
	mux.HandleFunc("GET /api/menu/restaurant/1", reply(http.StatusOK, ok(`[
		{"id":10,"name":"Margherita","price":200,"restaurantId":1,"isAvailable":true,"isVeg":true,"isBestseller":true,"categoryName":"Pizza"},
		{"id":11,"name":"Garlic Bread","price":50,"restaurantId":1,"isAvailable":true,"isVeg":true,"categoryName":"Sides"},
		{"id":12,"name":"Chicken Wings","price":180,"restaurantId":1,"isAvailable":true,"isVeg":false}
	]`)))
	mux.HandleFunc("GET /api/menu/restaurant/2", reply(http.StatusOK, ok(`[
		{"id":20,"name":"Masala Dosa","price":120,"restaurantId":2,"isAvailable":true,"isVeg":true},
		{"id":21,"name":"Rava Dosa","price":140,"restaurantId":2,"isAvailable":false,"isVeg":true}
	]`)))
}

type cartBody struct {
	Lines      []cart.Line      `json:"lines"`
	Restaurant *cart.Restaurant `json:"restaurant"`
	ItemCount  int              `json:"itemCount"`
	Bill       cart.Bill        `json:"bill"`
}

type errorBody struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlationId"`
	Redirect      string `json:"redirect"`
	Conflict      bool   `json:"conflict"`
}

func TestHealthRoute(t *testing.T) {
	env := newRouterWithBaseURL("http://example.com")

	rr := env.do(t, http.MethodGet, "/health", "", "")

	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[map[string]string](t, rr)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "storefront", body["service"])
}

func TestUpstreamHealthReportsDegradedBackend(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/actuator/health", reply(http.StatusServiceUnavailable, `{"status":"DOWN"}`))
	env := newTestEnv(t, mux)

	rr := env.do(t, http.MethodGet, "/health/upstreams", "", "")

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Status   string                 `json:"status"`
		Upstream []clients.HealthResult `json:"upstream"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	require.Len(t, body.Upstream, 1)
	assert.Equal(t, http.StatusServiceUnavailable, body.Upstream[0].StatusCode)
}

func TestCorrelationAndSessionHeaders(t *testing.T) {
	env := newRouterWithBaseURL("http://example.com")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Correlation-Id", "abc")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, "abc", rr.Header().Get("X-Correlation-Id"))
	_, err := uuid.Parse(rr.Header().Get("X-Session-Id"))
	assert.NoError(t, err, "a fresh session id is issued")

	sid := uuid.NewString()
	rr = env.do(t, http.MethodGet, "/health", sid, "")
	assert.NotEmpty(t, rr.Header().Get("X-Correlation-Id"))
	assert.Equal(t, sid, rr.Header().Get("X-Session-Id"))

	rr = env.do(t, http.MethodGet, "/health", "not-a-uuid", "")
	assert.NotEqual(t, "not-a-uuid", rr.Header().Get("X-Session-Id"))
}

func TestCORSPreflight(t *testing.T) {
	env := newRouterWithBaseURL("http://example.com")

	req := httptest.NewRequest(http.MethodOptions, "/me/cart/items", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type, X-Session-Id")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "X-Session-Id")
}

func TestGatedRoutesRedirectToLogin(t *testing.T) {
	env := newRouterWithBaseURL("http://example.com")
	sid := uuid.NewString()

	cases := []struct {
		method, path, redirect string
	}{
		{http.MethodGet, "/me/checkout", "/login?next=%2Fcheckout"},
		{http.MethodPost, "/me/checkout/place", "/login?next=%2Fcheckout"},
		{http.MethodGet, "/me/orders", "/login?next=%2Forders"},
		{http.MethodGet, "/me/orders/5", "/login?next=%2Forders%2F5"},
		{http.MethodGet, "/me/addresses", "/login?next=%2Faddresses"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rr := env.do(t, tc.method, tc.path, sid, "")
			require.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, tc.redirect, decode[errorBody](t, rr).Redirect)
		})
	}
}

func TestLoginKeepsTokensServerSideAndReturnsNext(t *testing.T) {
	mux := http.NewServeMux()
	withLogin(mux)
	env := newTestEnv(t, mux)
	sid := uuid.NewString()

	rr := env.do(t, http.MethodPost, "/auth/login", sid, `{"email":"asha@example.com","password":"secret1","next":"/checkout"}`)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.NotContains(t, rr.Body.String(), "tok-1")
	body := decode[map[string]any](t, rr)
	assert.Equal(t, "/checkout", body["redirectTo"])

	raw, err := env.kv.Get(context.Background(), sid, storage.KeyAccessToken)
	require.NoError(t, err)
	assert.JSONEq(t, `"tok-1"`, string(raw))

	rr = env.do(t, http.MethodPost, "/auth/login?next=https://evil.example", sid, `{"email":"asha@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "/", decode[map[string]any](t, rr)["redirectTo"])
}

func TestLoginFailureSurfacesBackendMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", reply(http.StatusUnauthorized, `{"success":false,"message":"Bad credentials"}`))
	env := newTestEnv(t, mux)
	sid := uuid.NewString()

	rr := env.do(t, http.MethodPost, "/auth/login", sid, `{"email":"asha@example.com","password":"nope"}`)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Bad credentials", decode[errorBody](t, rr).Error)

	toasts := env.do(t, http.MethodGet, "/me/toasts", sid, "")
	assert.Contains(t, toasts.Body.String(), "Bad credentials")
}

func TestRegisterValidatesPasswords(t *testing.T) {
	env := newRouterWithBaseURL("http://example.com")
	sid := uuid.NewString()

	rr := env.do(t, http.MethodPost, "/auth/register", sid, `{"name":"Asha","email":"a@example.com","password":"secret1","confirmPassword":"secret2"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "Passwords do not match", decode[errorBody](t, rr).Error)

	rr = env.do(t, http.MethodPost, "/auth/register", sid, `{"name":"Asha","email":"a@example.com","password":"abc"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "Password must be at least 6 characters", decode[errorBody](t, rr).Error)
}

func TestMeReportsSessionAndLogoutEndsIt(t *testing.T) {
	mux := http.NewServeMux()
	withLogin(mux)
	mux.HandleFunc("GET /api/auth/me", reply(http.StatusOK, ok(`{"id":7,"name":"Asha","email":"asha@example.com"}`)))
	env := newTestEnv(t, mux)
	sid := uuid.NewString()

	rr := env.do(t, http.MethodGet, "/auth/me", sid, "")
	assert.Equal(t, false, decode[map[string]any](t, rr)["authenticated"])

	login(t, env, sid)
	rr = env.do(t, http.MethodGet, "/auth/me", sid, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var me struct {
		Authenticated bool             `json:"authenticated"`
		User          clients.UserInfo `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.True(t, me.Authenticated)
	assert.Equal(t, "Asha", me.User.Name)

	rr = env.do(t, http.MethodPost, "/auth/logout", sid, "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = env.do(t, http.MethodGet, "/me/orders", sid, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestOrdersListForwardsBearerAndDecoratesStatus(t *testing.T) {
	mux := http.NewServeMux()
	withLogin(mux)
	mux.HandleFunc("GET /api/orders", reply(http.StatusOK, ok(`{"content":[{"id":5,"orderNumber":"ORD-5","restaurantId":1,"status":"OUT_FOR_DELIVERY","totalAmount":508,"items":[]}],"totalElements":1,"totalPages":1,"number":0,"size":10}`)))
	env := newTestEnv(t, mux)
	sid := uuid.NewString()
	login(t, env, sid)
	env.drain()

	rr := env.do(t, http.MethodGet, "/me/orders?page=0&size=10", sid, "")

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var page struct {
		Content []struct {
			ID          int64  `json:"id"`
			StatusLabel string `json:"statusLabel"`
			Cancellable bool   `json:"cancellable"`
		} `json:"content"`
		TotalElements int64 `json:"totalElements"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	require.Len(t, page.Content, 1)
	assert.Equal(t, "OUT FOR DELIVERY", page.Content[0].StatusLabel)
	assert.False(t, page.Content[0].Cancellable)
	assert.EqualValues(t, 1, page.TotalElements)

	reqs := env.drain()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer tok-1", reqs[0].Header.Get("Authorization"))
	assert.NotEmpty(t, reqs[0].Header.Get("X-Correlation-Id"))
}

func TestBackendRejectionClearsSession(t *testing.T) {
	mux := http.NewServeMux()
	withLogin(mux)
	mux.HandleFunc("GET /api/users/addresses", reply(http.StatusUnauthorized, `{"success":false,"message":"Token expired"}`))
	env := newTestEnv(t, mux)
	sid := uuid.NewString()
	login(t, env, sid)

	rr := env.do(t, http.MethodGet, "/me/addresses", sid, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "/login?next=%2Faddresses", decode[errorBody](t, rr).Redirect)

	_, err := env.kv.Get(context.Background(), sid, storage.KeyAccessToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	env.drain()
	rr = env.do(t, http.MethodGet, "/me/addresses", sid, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, env.drain(), "gate answers without calling the backend")
}

func TestCancelRefusesNonCancellableOrder(t *testing.T) {
	var cancelled atomic.Bool
	mux := http.NewServeMux()
	withLogin(mux)
	mux.HandleFunc("GET /api/orders/5", reply(http.StatusOK, ok(`{"id":5,"orderNumber":"ORD-5","status":"PREPARING","items":[]}`)))
	mux.HandleFunc("GET /api/orders/6", reply(http.StatusOK, ok(`{"id":6,"orderNumber":"ORD-6","status":"PLACED","items":[]}`)))
	mux.HandleFunc("POST /api/orders/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
		cancelled.Store(true)
		reply(http.StatusOK, ok(`{"id":6,"orderNumber":"ORD-6","status":"CANCELLED","items":[]}`))(w, r)
	})
	env := newTestEnv(t, mux)
	sid := uuid.NewString()
	login(t, env, sid)

	rr := env.do(t, http.MethodPost, "/me/orders/5/cancel", sid, "")
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.False(t, cancelled.Load())

	rr = env.do(t, http.MethodPost, "/me/orders/6/cancel", sid, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, cancelled.Load())
	assert.Equal(t, "CANCELLED", decode[map[string]any](t, rr)["statusLabel"])

	toasts := env.do(t, http.MethodGet, "/me/toasts", sid, "")
	assert.Contains(t, toasts.Body.String(), "Order cancelled")
}

func TestCartUsesBackendPricesAndGuardsRestaurant(t *testing.T) {
	mux := http.NewServeMux()
	withCatalog(mux)
	env := newTestEnv(t, mux)
	sid := uuid.NewString()

	for _, id := range []string{"10", "10", "11"} {
		rr := env.do(t, http.MethodPost, "/me/cart/items", sid, `{"itemId":`+id+`,"restaurantId":1,"price":1}`)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}
	rr := env.do(t, http.MethodGet, "/me/cart", sid, "")
	body := decode[cartBody](t, rr)
	assert.Equal(t, 3, body.ItemCount)
	assert.True(t, decimal.NewFromInt(450).Equal(body.Bill.Subtotal))
	assert.True(t, decimal.NewFromInt(508).Equal(body.Bill.Total), body.Bill.Total.String())

	rr = env.do(t, http.MethodPost, "/me/cart/items", sid, `{"itemId":20,"restaurantId":2}`)
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.True(t, decode[errorBody](t, rr).Conflict)
	assert.Equal(t, 3, decode[cartBody](t, env.do(t, http.MethodGet, "/me/cart", sid, "")).ItemCount)

	rr = env.do(t, http.MethodPost, "/me/cart/items", sid, `{"itemId":20,"restaurantId":2,"confirmReplace":true}`)
	require.Equal(t, http.StatusOK, rr.Code)
	body = decode[cartBody](t, rr)
	assert.Equal(t, 1, body.ItemCount)
	require.NotNil(t, body.Restaurant)
	assert.EqualValues(t, 2, body.Restaurant.ID)
	assert.True(t, decimal.NewFromInt(40).Equal(body.Bill.DeliveryFee))

	rr = env.do(t, http.MethodPost, "/me/cart/items", sid, `{"itemId":21,"restaurantId":2}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = env.do(t, http.MethodPatch, "/me/cart/items/20", sid, `{"quantity":0}`)
	require.Equal(t, http.StatusOK, rr.Code)
	body = decode[cartBody](t, rr)
	assert.Equal(t, 0, body.ItemCount)
	assert.Nil(t, body.Restaurant)
	assert.NotNil(t, body.Lines)

	toasts := env.do(t, http.MethodGet, "/me/toasts", sid, "")
	assert.Contains(t, toasts.Body.String(), "Added to cart")
}

func TestCartIsPersistedAndCleared(t *testing.T) {
	mux := http.NewServeMux()
	withCatalog(mux)
	env := newTestEnv(t, mux)
	sid := uuid.NewString()

	rr := env.do(t, http.MethodPost, "/me/cart/items", sid, `{"itemId":10,"restaurantId":1}`)
	require.Equal(t, http.StatusOK, rr.Code)

	raw, err := env.kv.Get(context.Background(), sid, storage.KeyCart)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Margherita")

	rr = env.do(t, http.MethodDelete, "/me/cart", sid, "")
	require.Equal(t, http.StatusOK, rr.Code)
	_, err = env.kv.Get(context.Background(), sid, storage.KeyCart)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMenuFiltersAndGroups(t *testing.T) {
	mux := http.NewServeMux()
	withCatalog(mux)
	env := newTestEnv(t, mux)

	rr := env.do(t, http.MethodGet, "/restaurants/1/menu?veg=true", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]clients.MenuItem](t, rr), 2)

	rr = env.do(t, http.MethodGet, "/restaurants/1/menu?grouped=true", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var groups []struct {
		Category string             `json:"category"`
		Items    []clients.MenuItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &groups))
	require.Len(t, groups, 3)
	assert.Equal(t, []string{"Pizza", "Sides", "Other"}, []string{groups[0].Category, groups[1].Category, groups[2].Category})

	rr = env.do(t, http.MethodGet, "/restaurants/1/menu?q=garlic", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	items := decode[[]clients.MenuItem](t, rr)
	require.Len(t, items, 1)
	assert.Equal(t, "Garlic Bread", items[0].Name)

	rr = env.do(t, http.MethodGet, "/restaurants/abc/menu", "", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRestaurantListAppliesDefaultPaging(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/restaurants", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("size") != "10" || q.Get("sortBy") != "rating" || q.Get("sortDir") != "desc" {
			reply(http.StatusBadRequest, `{"success":false,"message":"bad paging `+r.URL.RawQuery+`"}`)(w, r)
			return
		}
		reply(http.StatusOK, ok(`{"content":[{"id":1,"name":"Pizza Hub"}],"totalElements":1,"totalPages":1,"number":0,"size":10}`))(w, r)
	})
	env := newTestEnv(t, mux)

	rr := env.do(t, http.MethodGet, "/restaurants", "", "")

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	page := decode[clients.Page[clients.Restaurant]](t, rr)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Pizza Hub", page.Content[0].Name)
}

func TestCuisineReachesBackendUnchanged(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/restaurants/cuisine/{cuisine}", reply(http.StatusOK, ok(`{"content":[],"totalElements":0,"totalPages":0,"number":0,"size":10}`)))
	env := newTestEnv(t, mux)

	rr := env.do(t, http.MethodGet, "/restaurants/cuisine/North%20Indian", "", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	reqs := env.drain()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/api/restaurants/cuisine/North Indian", reqs[0].Path)
}

func TestUpstreamFailuresMapToStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/categories", reply(http.StatusInternalServerError, `{"success":false,"message":"boom"}`))
	mux.HandleFunc("GET /api/restaurants/9", reply(http.StatusNotFound, `{"success":false,"message":"Restaurant not found"}`))
	env := newTestEnv(t, mux)

	rr := env.do(t, http.MethodGet, "/categories", "", "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	rr = env.do(t, http.MethodGet, "/restaurants/9", "", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	body := decode[errorBody](t, rr)
	assert.Equal(t, "Restaurant not found", body.Error)
	assert.NotEmpty(t, body.CorrelationID)

	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	offline := newRouterWithBaseURL(down.URL + "/api")
	rr = offline.do(t, http.MethodGet, "/restaurants", "", "")
	require.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, "Failed to load restaurants", decode[errorBody](t, rr).Error)
}

func withCheckoutBackend(mux *http.ServeMux, verify http.HandlerFunc) {
	withLogin(mux)
	withCatalog(mux)
	mux.HandleFunc("GET /api/users/addresses", reply(http.StatusOK, ok(`[
		{"id":3,"street":"1 MG Road","city":"Pune","state":"MH","pincode":"411001","type":"HOME","isDefault":true},
		{"id":4,"street":"2 FC Road","city":"Pune","state":"MH","pincode":"411004","type":"WORK","isDefault":false}
	]`)))
	mux.HandleFunc("POST /api/orders", reply(http.StatusCreated, ok(`{"id":100,"orderNumber":"ORD-100","restaurantId":1,"status":"PLACED","totalAmount":508,"items":[]}`)))
	mux.HandleFunc("POST /api/payments/create/100", reply(http.StatusOK, ok(`{"id":1,"orderId":100,"razorpayOrderId":"order_rzp_1","amount":508,"currency":"INR","status":"CREATED","razorpayKeyId":"rzp_test_key"}`)))
	mux.HandleFunc("POST /api/payments/verify", verify)
}

func startCheckout(t *testing.T, env *testEnv, sid string) {
	t.Helper()
	login(t, env, sid)
	for _, id := range []string{"10", "10", "11"} {
		rr := env.do(t, http.MethodPost, "/me/cart/items", sid, `{"itemId":`+id+`,"restaurantId":1}`)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}

	rr := env.do(t, http.MethodPost, "/me/checkout", sid, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	view := decode[map[string]any](t, rr)
	assert.Equal(t, "address_selection", view["state"])
	assert.EqualValues(t, 3, view["selectedAddressId"])

	rr = env.do(t, http.MethodPut, "/me/checkout/instructions", sid, `{"instructions":"Ring the bell"}`)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestCheckoutHappyPath(t *testing.T) {
	mux := http.NewServeMux()
	withCheckoutBackend(mux, reply(http.StatusOK, ok(`{"id":1,"orderId":100,"razorpayOrderId":"order_rzp_1","razorpayPaymentId":"pay_1","amount":508,"currency":"INR","status":"SUCCESS"}`)))
	env := newTestEnv(t, mux)
	sid := uuid.NewString()
	startCheckout(t, env, sid)
	env.drain()

	rr := env.do(t, http.MethodPost, "/me/checkout/place", sid, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var placed struct {
		State  string `json:"state"`
		Intent struct {
			Key         string `json:"key"`
			Amount      int64  `json:"amount"`
			OrderID     string `json:"order_id"`
			Description string `json:"description"`
			Prefill     struct {
				Email string `json:"email"`
			} `json:"prefill"`
		} `json:"paymentIntent"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &placed))
	assert.Equal(t, "payment_pending", placed.State)
	assert.Equal(t, "rzp_test_key", placed.Intent.Key)
	assert.EqualValues(t, 50800, placed.Intent.Amount)
	assert.Equal(t, "order_rzp_1", placed.Intent.OrderID)
	assert.Equal(t, "Order #ORD-100", placed.Intent.Description)
	assert.Equal(t, "asha@example.com", placed.Intent.Prefill.Email)

	var created recordedRequest
	for _, r := range env.drain() {
		if r.Method == http.MethodPost && r.Path == "/api/orders" {
			created = r
		}
	}
	assert.JSONEq(t, `{"restaurantId":1,"deliveryAddressId":3,"deliveryInstructions":"Ring the bell","items":[{"menuItemId":10,"quantity":2},{"menuItemId":11,"quantity":1}]}`, created.Body)

	rr = env.do(t, http.MethodPost, "/me/checkout/payment/callback", sid, `{"razorpay_order_id":"order_rzp_1","razorpay_payment_id":"pay_1","razorpay_signature":"sig"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "completed", decode[map[string]any](t, rr)["state"])

	assert.Equal(t, 0, decode[cartBody](t, env.do(t, http.MethodGet, "/me/cart", sid, "")).ItemCount)
	assert.Contains(t, env.do(t, http.MethodGet, "/me/toasts", sid, "").Body.String(), "Order placed successfully!")
}

func TestCheckoutVerificationFailureOffersRetry(t *testing.T) {
	var attempts atomic.Int32
	mux := http.NewServeMux()
	withCheckoutBackend(mux, func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			reply(http.StatusBadRequest, `{"success":false,"message":"Invalid signature"}`)(w, r)
			return
		}
		reply(http.StatusOK, ok(`{"id":1,"orderId":100,"razorpayOrderId":"order_rzp_1","status":"SUCCESS","amount":508}`))(w, r)
	})
	env := newTestEnv(t, mux)
	sid := uuid.NewString()
	startCheckout(t, env, sid)

	rr := env.do(t, http.MethodPost, "/me/checkout/place", sid, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/me/checkout/payment/callback", sid, `{"razorpay_order_id":"order_rzp_1","razorpay_payment_id":"pay_1","razorpay_signature":"bad"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
	var failed struct {
		Error    string `json:"error"`
		Checkout struct {
			State        string   `json:"state"`
			RetryOptions []string `json:"retryOptions"`
		} `json:"checkout"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &failed))
	assert.Equal(t, "Payment verification failed", failed.Error)
	assert.Equal(t, "failed", failed.Checkout.State)
	assert.Equal(t, []string{"retry-verification", "restart-payment"}, failed.Checkout.RetryOptions)
	assert.Equal(t, 3, decode[cartBody](t, env.do(t, http.MethodGet, "/me/cart", sid, "")).ItemCount, "cart kept until paid")

	rr = env.do(t, http.MethodPost, "/me/checkout/place", sid, "")
	assert.Equal(t, http.StatusConflict, rr.Code, "no second order while one awaits payment")

	rr = env.do(t, http.MethodPost, "/me/checkout/payment/retry", sid, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "completed", decode[map[string]any](t, rr)["state"])
}

func TestCheckoutRequiresAddressAndCart(t *testing.T) {
	mux := http.NewServeMux()
	withCheckoutBackend(mux, reply(http.StatusOK, ok(`{}`)))
	env := newTestEnv(t, mux)
	sid := uuid.NewString()
	login(t, env, sid)

	rr := env.do(t, http.MethodPost, "/me/checkout", sid, "")
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = env.do(t, http.MethodPost, "/me/cart/items", sid, `{"itemId":10,"restaurantId":1}`)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = env.do(t, http.MethodPost, "/me/checkout", sid, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodPut, "/me/checkout/address", sid, `{"addressId":99}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	rr = env.do(t, http.MethodPut, "/me/checkout/address", sid, `{"addressId":4}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 4, decode[map[string]any](t, rr)["selectedAddressId"])

	rr = env.do(t, http.MethodDelete, "/me/checkout", sid, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "idle", decode[map[string]any](t, rr)["state"])
}

func TestToastDismiss(t *testing.T) {
	mux := http.NewServeMux()
	withCatalog(mux)
	env := newTestEnv(t, mux)
	sid := uuid.NewString()

	rr := env.do(t, http.MethodPost, "/me/cart/items", sid, `{"itemId":10,"restaurantId":1}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var toasts []struct {
		ID      int64  `json:"id"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(env.do(t, http.MethodGet, "/me/toasts", sid, "").Body.Bytes(), &toasts))
	require.Len(t, toasts, 1)

	path := "/me/toasts/" + strconv.FormatInt(toasts[0].ID, 10)
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, path, sid, "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, path, sid, "").Code)
	assert.JSONEq(t, `[]`, env.do(t, http.MethodGet, "/me/toasts", sid, "").Body.String())
}

func TestAddressLifecycle(t *testing.T) {
	mux := http.NewServeMux()
	withLogin(mux)
	mux.HandleFunc("POST /api/users/addresses", reply(http.StatusOK, ok(`{"id":7,"street":"1 Main St","city":"Pune","state":"MH","pincode":"411001","type":"WORK","isDefault":false}`)))
	mux.HandleFunc("PUT /api/users/addresses/7", reply(http.StatusOK, ok(`{"id":7,"street":"2 Main St","city":"Pune","state":"MH","pincode":"411001","type":"HOME","isDefault":true}`)))
	mux.HandleFunc("DELETE /api/users/addresses/7", reply(http.StatusOK, ok(`null`)))
	env := newTestEnv(t, mux)
	sid := uuid.NewString()
	login(t, env, sid)
	env.drain()

	rr := env.do(t, http.MethodPost, "/me/addresses", sid, `{"street":"  ","city":"Pune","state":"MH","pincode":"411001"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	rr = env.do(t, http.MethodPost, "/me/addresses", sid, `{"street":"1 Main St","city":"Pune","state":"MH","pincode":"411001","type":"garage"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Empty(t, env.drain(), "invalid addresses never reach the backend")

	rr = env.do(t, http.MethodPost, "/me/addresses", sid, `{"street":" 1 Main St ","city":"Pune","state":"MH","pincode":"411001","type":"work"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	reqs := env.drain()
	require.Len(t, reqs, 1)
	var sent clients.AddressRequest
	require.NoError(t, json.Unmarshal([]byte(reqs[0].Body), &sent))
	assert.Equal(t, "1 Main St", sent.Street)
	assert.Equal(t, "WORK", sent.Type)

	rr = env.do(t, http.MethodPut, "/me/addresses/7", sid, `{"street":"2 Main St","city":"Pune","state":"MH","pincode":"411001","isDefault":true}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "HOME", decode[clients.Address](t, rr).Type)
	reqs = env.drain()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].Body, `"type":"HOME"`)

	rr = env.do(t, http.MethodDelete, "/me/addresses/7", sid, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = env.do(t, http.MethodDelete, "/me/addresses/abc", sid, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var toasts []struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(env.do(t, http.MethodGet, "/me/toasts", sid, "").Body.Bytes(), &toasts))
	var messages []string
	for _, tt := range toasts {
		messages = append(messages, tt.Message)
	}
	assert.Subset(t, messages, []string{"Address added successfully", "Address updated", "Address deleted"})
}
