package httpserver

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

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/hortifood/internal/cart"
	"github.com/Skotchmaster/hortifood/internal/catalog"
	"github.com/Skotchmaster/hortifood/internal/checkout"
	"github.com/Skotchmaster/hortifood/internal/metrics"
	"github.com/Skotchmaster/hortifood/internal/models"
	"github.com/Skotchmaster/hortifood/internal/persist"
	"github.com/Skotchmaster/hortifood/internal/session"
)

type stubAuth struct{}

func (stubAuth) Login(_ context.Context, email, password string) (*models.UserIdentity, error) {
	if email == "joao@email.com" && password == "123456" {
		return &models.UserIdentity{ID: "1", Name: "João Silva", Email: email}, nil
	}
	return nil, errors.New("unauthorized")
}

func (stubAuth) Register(_ context.Context, name, email, _ string) (*models.UserIdentity, error) {
	if email == "joao@email.com" {
		return nil, errors.New("conflict")
	}
	return &models.UserIdentity{ID: "3", Name: name, Email: email}, nil
}

type fixture struct {
	e    *echo.Echo
	cart *cart.Store
	sess *session.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	c := cart.New()
	cat := catalog.Default()
	sess := session.New(stubAuth{}, persist.NewMemoryStore())
	history := checkout.NewHistory()
	m := metrics.New()

	e := New(slog.New(slog.NewJSONHandler(io.Discard, nil)), &Deps{
		Session: &SessionHTTP{Store: sess},
		Catalog: &CatalogHTTP{Catalog: cat},
		Cart:    &CartHTTP{Cart: c, Catalog: cat},
		Checkout: &CheckoutHTTP{Svc: &checkout.Service{
			Cart:          c,
			Session:       sess,
			History:       history,
			Metrics:       m,
			PaymentDelay:  time.Millisecond,
			RedirectDelay: time.Millisecond,
		}},
		Profile: &ProfileHTTP{Session: sess, History: history},
		Metrics: m,
	})
	return &fixture{e: e, cart: c, sess: sess}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health/ready", "").Code)
}

func TestSession_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{name: "register without name", path: "/session/register", body: `{"name":"  ","email":"ana@email.com","password":"x"}`, wantStatus: 400, wantMsg: msgNameRequired},
		{name: "register without password", path: "/session/register", body: `{"name":"Ana","email":"ana@email.com"}`, wantStatus: 400, wantMsg: msgCredentialsRequired},
		{name: "login without email", path: "/session/login", body: `{"password":"123456"}`, wantStatus: 400, wantMsg: msgCredentialsRequired},
		{name: "login wrong password", path: "/session/login", body: `{"email":"joao@email.com","password":"x"}`, wantStatus: 401, wantMsg: msgInvalidCredentials},
		{name: "register rejected by backend", path: "/session/register", body: `{"name":"João","email":"joao@email.com","password":"x"}`, wantStatus: 400, wantMsg: msgRegisterFailed},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMsg)
		})
	}
	assert.Nil(t, f.sess.CurrentUser())
}

func TestSession_LoginProfileLogout(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/profile", "").Code)

	rec := f.do(http.MethodPost, "/session/login", `{"email":"joao@email.com","password":"123456"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[session.State](t, rec)
	require.NotNil(t, st.CurrentUser)
	assert.Equal(t, "João Silva", st.CurrentUser.Name)
	assert.False(t, st.IsPending)

	rec = f.do(http.MethodGet, "/profile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[profileResponse](t, rec)
	assert.Equal(t, "joao@email.com", profile.User.Email)
	assert.Empty(t, profile.Orders)

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/session", "").Code)
	st = decode[session.State](t, f.do(http.MethodGet, "/session", ""))
	assert.Nil(t, st.CurrentUser)
}

func TestSession_Register(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.do(http.MethodPost, "/session/register", `{"name":"Ana Souza","email":"ana@email.com","password":"segredo"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	st := decode[session.State](t, rec)
	require.NotNil(t, st.CurrentUser)
	assert.Equal(t, "Ana Souza", st.CurrentUser.Name)
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	stores := decode[[]models.Store](t, f.do(http.MethodGet, "/stores", ""))
	require.Len(t, stores, 1)
	assert.Equal(t, "Hortifruiti Verde Vida", stores[0].Name)

	store := decode[models.Store](t, f.do(http.MethodGet, "/stores/1", ""))
	assert.Len(t, store.Products, 6)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/stores/9", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/stores/abc", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/stores/9/products", "").Code)

	fruits := decode[[]models.Product](t, f.do(http.MethodGet, "/stores/1/products?category=Frutas", ""))
	assert.Len(t, fruits, 3)
	all := decode[[]models.Product](t, f.do(http.MethodGet, "/stores/1/products?category=Todos", ""))
	assert.Len(t, all, 6)

	hits := decode[[]catalog.SearchHit](t, f.do(http.MethodGet, "/search?q=tomate", ""))
	require.Len(t, hits, 1)
	assert.Equal(t, "Tomate Italiano", hits[0].Product.Name)
	assert.Equal(t, "[]\n", f.do(http.MethodGet, "/search?q=abacaxi", "").Body.String())

	cats := decode[[]string](t, f.do(http.MethodGet, "/categories", ""))
	assert.Equal(t, "Todos", cats[0])
}

func TestCart(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	rec := f.do(http.MethodPost, "/cart/items", `{"store_id":1,"product_id":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(http.MethodPost, "/cart/items", `{"store_id":1,"product_id":1}`)
	st := decode[cart.State](t, rec)
	require.Len(t, st.Items, 1)
	assert.Equal(t, 2, st.TotalItems)
	assert.InDelta(t, 9.98, st.TotalPrice, 1e-9)
	assert.Equal(t, "Hortifruiti Verde Vida", st.Items[0].StoreName)

	st = decode[cart.State](t, f.do(http.MethodPost, "/cart/items", `{"store_id":1,"product_id":2,"quantity":3}`))
	assert.Equal(t, 5, st.TotalItems)
	assert.Equal(t, 3, f.cart.ItemQuantity(2))

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/cart/items", `{"store_id":1,"product_id":99}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/cart/items", `{"store_id":1,"product_id":1,"quantity":-1}`).Code)

	st = decode[cart.State](t, f.do(http.MethodPatch, "/cart/items/1", `{"quantity":5}`))
	assert.Equal(t, 8, st.TotalItems)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPatch, "/cart/items/1", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPatch, "/cart/items/x", `{"quantity":1}`).Code)

	st = decode[cart.State](t, f.do(http.MethodPatch, "/cart/items/1", `{"quantity":0}`))
	assert.Equal(t, 3, st.TotalItems)
	assert.Equal(t, 0, f.cart.ItemQuantity(1))

	st = decode[cart.State](t, f.do(http.MethodDelete, "/cart/items/2", ""))
	assert.Empty(t, st.Items)

	f.do(http.MethodPost, "/cart/items", `{"store_id":1,"product_id":3}`)
	st = decode[cart.State](t, f.do(http.MethodDelete, "/cart", ""))
	assert.Equal(t, 0, st.TotalItems)
	assert.Zero(t, st.TotalPrice)
}

func TestCart_AddQuantityBounds(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	rec := f.do(http.MethodPost, "/cart/items", `{"store_id":1,"product_id":1,"quantity":9223372036854775807}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(http.MethodPost, "/cart/items", `{"store_id":1,"product_id":1,"quantity":100}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, f.cart.IsEmpty())

	st := decode[cart.State](t, f.do(http.MethodPost, "/cart/items", `{"store_id":1,"product_id":1,"quantity":99}`))
	assert.Equal(t, 99, st.TotalItems)
	st = decode[cart.State](t, f.do(http.MethodPost, "/cart/items", `{"store_id":1,"product_id":1,"quantity":99}`))
	assert.Equal(t, 198, st.TotalItems)
	assert.Equal(t, 198, f.cart.ItemQuantity(1))
}

const paymentBody = `{"address":"Rua A, 1","city":"São Paulo","zipCode":"01000-000","paymentMethod":"debit",
"cardNumber":"4111111111111111","cardName":"JOAO SILVA","expiryDate":"12/30","cvv":"123"}`

func TestCheckout(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	assert.Equal(t, http.StatusConflict, f.do(http.MethodPost, "/checkout", paymentBody).Code)

	f.do(http.MethodPost, "/session/login", `{"email":"joao@email.com","password":"123456"}`)
	f.do(http.MethodPost, "/cart/items", `{"store_id":1,"product_id":4,"quantity":2}`)

	rec := f.do(http.MethodPost, "/checkout", `{"address":"Rua A, 1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 2, f.cart.TotalItems())

	rec = f.do(http.MethodPost, "/checkout", paymentBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[checkoutResponse](t, rec)
	assert.Equal(t, "/", res.RedirectTo)
	assert.Equal(t, int64(1), res.RedirectAfterMS)
	assert.Equal(t, models.OrderStatusConfirmed, res.Order.Status)
	assert.Equal(t, "debit", res.Order.PaymentMethod)
	assert.InDelta(t, 11.98, res.Order.Total, 1e-9)
	assert.True(t, f.cart.IsEmpty())

	profile := decode[profileResponse](t, f.do(http.MethodGet, "/profile", ""))
	require.Len(t, profile.Orders, 1)
	assert.Equal(t, res.Order.ID, profile.Orders[0].ID)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.do(http.MethodGet, "/stores", "")

	rec := f.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hortifood_http_requests_total{method="GET",route="/stores",status="200"} 1`)
}
