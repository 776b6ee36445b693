package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bitbucket.org/mmdatafocus/sales_backend/handlers"
	"bitbucket.org/mmdatafocus/sales_backend/middlewares"
	"bitbucket.org/mmdatafocus/sales_backend/models"
	"bitbucket.org/mmdatafocus/sales_backend/testutil"
	"bitbucket.org/mmdatafocus/sales_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	testutil.OpenDB(t)

	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	handlers.RegisterRoutes(r)
	r.NoRoute(handlers.NotFound)
	return r
}

// login creates a user with role and returns a client carrying its token.
func login(t *testing.T, r *gin.Engine, username string, role models.UserRole) *apiClient {
	t.Helper()
	user, err := models.CreateUser(context.Background(), &models.NewUser{
		Username: username,
		Name:     username,
		Password: "secret1",
		Role:     role,
	})
	require.NoError(t, err)
	token, err := utils.JwtGenerate(user.ID, user.Username, string(user.Role))
	require.NoError(t, err)
	return &apiClient{t: t, router: r, token: token}
}

func (a *apiClient) do(method string, path string, body any) *httptest.ResponseRecorder {
	return doRequest(a.t, a.router, method, path, a.token, body)
}

func doRequest(t *testing.T, r *gin.Engine, method string, path string, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else if raw, ok := body.(string); ok {
		reader = bytes.NewReader([]byte(raw))
	} else {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func seedAccounts(t *testing.T) {
	t.Helper()
	ctx := testutil.Context()
	for _, acc := range []models.NewAccount{
		{Code: "131", Name: "Receivables", Level: 1},
		{Code: "511", Name: "Revenue", Level: 1},
		{Code: "521", Name: "Revenue deductions", Level: 1},
		{Code: "3331", Name: "Output VAT", Level: 2},
	} {
		acc := acc
		_, err := models.CreateAccount(ctx, &acc)
		require.NoError(t, err)
	}
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	r := newServer(t)

	w := doRequest(t, r, http.MethodGet, "/api/customers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/customers", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterLoginAndMe(t *testing.T) {
	r := newServer(t)

	w := doRequest(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice",
		"name":     "Alice",
		"password": "secret1",
		"role":     "admin",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode[models.User](t, w)
	assert.Equal(t, models.UserRoleUser, user.Role)

	w = doRequest(t, r, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "wrong!!"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, r, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	info := decode[models.LoginInfo](t, w)
	require.NotEmpty(t, info.Token)

	w = doRequest(t, r, http.MethodGet, "/api/auth/me", info.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", decode[models.User](t, w).Username)

	w = doRequest(t, r, http.MethodPut, "/api/auth/password", info.Token, gin.H{"old_password": "secret1", "new_password": "secret2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = doRequest(t, r, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "secret2"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCustomers(t *testing.T) {
	r := newServer(t)
	api := login(t, r, "clerk", models.UserRoleUser)
	admin := login(t, r, "boss", models.UserRoleAdmin)

	w := api.do(http.MethodPost, "/api/customers", gin.H{"address": "12 Le Loi"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "name", decode[map[string]string](t, w)["field"])

	w = api.do(http.MethodPost, "/api/customers", gin.H{"email": "sales@anphat.vn"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	invalid := decode[map[string]any](t, w)
	assert.Equal(t, map[string]any{"name": "is required", "address": "is required"}, invalid["fields"])

	w = api.do(http.MethodPost, "/api/customers", gin.H{"name": "Minh Anh Co.", "address": "12 Le Loi", "email": "sales@localhost"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email", decode[map[string]any](t, w)["field"])

	w = api.do(http.MethodPost, "/api/customers", gin.H{"name": "Minh Anh Co.", "address": "12 Le Loi", "tax_code": "0301234567"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	customer := decode[models.Customer](t, w)
	assert.Equal(t, "KH0001", customer.Code)

	w = api.do(http.MethodPost, "/api/customers", gin.H{"name": "Other", "address": "1 Hai Ba Trung", "tax_code": "0301234567"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodGet, "/api/customers/tax-code/0301234567", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "KH0001", decode[models.Customer](t, w).Code)

	w = api.do(http.MethodGet, "/api/customers/search?keyword=minh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Customer](t, w), 1)

	w = api.do(http.MethodGet, "/api/customers/KH9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodGet, "/api/customers?skip=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodDelete, "/api/customers/KH0001", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = admin.do(http.MethodDelete, "/api/customers/KH0001", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodGet, "/api/customers/KH0001", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPriceListRoutes(t *testing.T) {
	r := newServer(t)
	api := login(t, r, "clerk", models.UserRoleUser)

	w := api.do(http.MethodPost, "/api/products", gin.H{"name": "Green tea", "unit_price": "15000", "unit": "box"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	product := decode[models.Product](t, w)

	for _, entry := range []gin.H{
		{"product_code": product.Code, "effective_date": "2024-01-01", "unit_price": "15000"},
		{"product_code": product.Code, "effective_date": "2024-03-01", "unit_price": "16000"},
	} {
		w = api.do(http.MethodPost, "/api/price-lists", entry)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = api.do(http.MethodGet, "/api/price-lists/"+product.Code+"/latest?date=2024-02-15", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "15000", decode[models.PriceListEntry](t, w).UnitPrice.String())

	w = api.do(http.MethodGet, "/api/price-lists/"+product.Code+"/latest?date=2023-12-31", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodGet, "/api/price-lists/"+product.Code+"/latest", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "16000", decode[models.PriceListEntry](t, w).UnitPrice.String())

	w = api.do(http.MethodGet, "/api/price-lists/"+product.Code+"/latest?date=", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/price-lists/"+product.Code+"/latest?date=15/02/2024x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/price-lists/"+product.Code+"/2024-03-01", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/api/price-lists/"+product.Code, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.PriceListEntry](t, w), 2)

	w = api.do(http.MethodPost, "/api/discount-tiers", gin.H{
		"product_code": product.Code, "effective_date": "2024-01-01", "threshold": "100000", "discount_rate": "5",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodGet, "/api/discount-tiers/"+product.Code+"/applicable?date=2024-02-01&amount=150000", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "5", decode[models.DiscountTier](t, w).DiscountRate.String())

	w = api.do(http.MethodGet, "/api/discount-tiers/"+product.Code+"/applicable?amount=150000", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "5", decode[models.DiscountTier](t, w).DiscountRate.String())

	w = api.do(http.MethodPost, "/api/discount-tiers", gin.H{
		"product_code": product.Code, "effective_date": "2024-02-01", "threshold": "0", "discount_rate": "120",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLookupRoutes(t *testing.T) {
	r := newServer(t)
	seedAccounts(t)
	api := login(t, r, "clerk", models.UserRoleUser)

	for path, want := range map[string]string{
		"/api/customers/next-code": "KH0001",
		"/api/products/next-code":  "SP0001",
		"/api/invoices/next-code":  "HD0001",
		"/api/vouchers/next-code":  "PG0001",
	} {
		w := api.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, want, decode[map[string]string](t, w)["code"], path)
	}

	w := api.do(http.MethodPost, "/api/customers", gin.H{"name": "Minh Anh Co.", "address": "12 Le Loi", "tax_code": "0301234567"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = api.do(http.MethodPost, "/api/products", gin.H{"name": "Green tea", "unit_price": "15000", "unit": "box"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodGet, "/api/customers/next-code", nil)
	assert.Equal(t, "KH0002", decode[map[string]string](t, w)["code"])

	for path, want := range map[string]bool{
		"/api/customers/KH0001/exists":              true,
		"/api/customers/KH0002/exists":              false,
		"/api/customers/tax-code/0301234567/exists": true,
		"/api/customers/tax-code/0309999999/exists": false,
		"/api/products/SP0001/exists":               true,
		"/api/products/SP0009/exists":               false,
		"/api/accounts/3331/exists":                 true,
		"/api/accounts/9999/exists":                 false,
	} {
		w := api.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, want, decode[map[string]bool](t, w)["exists"], path)
	}

	w = api.do(http.MethodGet, "/api/accounts/search?keyword=vat", nil)
	require.Equal(t, http.StatusOK, w.Code)
	accounts := decode[[]models.Account](t, w)
	require.Len(t, accounts, 1)
	assert.Equal(t, "3331", accounts[0].Code)

	w = api.do(http.MethodPost, "/api/price-lists", gin.H{"product_code": "SP0001", "effective_date": "2024-01-01", "unit_price": "15000"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodGet, "/api/price-lists?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.PriceListEntry](t, w), 1)

	w = api.do(http.MethodGet, "/api/discount-tiers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}
