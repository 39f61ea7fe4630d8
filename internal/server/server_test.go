package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"buybizz/internal/client"
	"buybizz/internal/config"
	"buybizz/internal/model"
	"buybizz/internal/repository"
	"buybizz/internal/service"
	"buybizz/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testIdentity = &config.Identity{JWTSecret: "server-test-secret", Issuer: "https://id.example.test"}

type testServer struct {
	*Server
	db *gorm.DB
}

func newTestServer(t *testing.T, webhookSecret string) *testServer {
	t.Helper()

	db := testutil.NewDB(t)
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	entitlementRepo := repository.NewEntitlementRepository(db)
	appRepo := repository.NewVendorApplicationRepository(db)
	reportRepo := repository.NewReportRepository(db)
	identityService := service.NewIdentityService(userRepo)

	srv := NewServer(client.NewIdentityClient(testIdentity), &Services{
		Identity:    identityService,
		Product:     service.NewProductService(productRepo),
		Cart:        service.NewCartService(cartRepo, productRepo),
		Order:       service.NewOrderService(db, userRepo, cartRepo, orderRepo, entitlementRepo),
		Entitlement: service.NewEntitlementService(entitlementRepo, orderRepo),
		Vendor:      service.NewVendorService(db, userRepo, appRepo, productRepo, reportRepo),
		Admin:       service.NewAdminService(userRepo, productRepo, orderRepo, appRepo, reportRepo),
		Webhook:     service.NewWebhookService(webhookSecret, identityService, userRepo, repository.NewWebhookEventRepository(db)),
	})
	return &testServer{Server: srv, db: db}
}

func token(t *testing.T, externalID string) string {
	t.Helper()

	tok, err := client.SignSessionToken(testIdentity, &model.Identity{
		ExternalID: externalID,
		Email:      externalID + "@example.test",
		Name:       externalID,
	}, time.Hour)
	require.NoError(t, err)
	return tok
}

// do sends body as JSON with a bearer token when tok is set and decodes the
// response into a generic map.
func (s *testServer) do(t *testing.T, method, path, tok string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	out := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "")

	code, body := s.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestGuards(t *testing.T) {
	s := newTestServer(t, "")
	customer := token(t, "user_customer")

	tests := []struct {
		name   string
		method string
		path   string
		tok    string
		status int
		error  string
	}{
		{"no token on cart", http.MethodGet, "/api/cart", "", http.StatusUnauthorized, "Unauthorized"},
		{"garbage token", http.MethodGet, "/api/orders", "not-a-jwt", http.StatusUnauthorized, "Unauthorized"},
		{"customer on admin", http.MethodGet, "/api/admin/stats", customer, http.StatusForbidden, "Forbidden"},
		{"customer on vendor", http.MethodGet, "/api/vendor/stats", customer, http.StatusForbidden, "Forbidden"},
		{"customer creates agent", http.MethodPost, "/api/agents", customer, http.StatusForbidden, "Forbidden"},
		{"anonymous catalogue", http.MethodGet, "/api/agents", "", http.StatusOK, ""},
		{"customer cart", http.MethodGet, "/api/cart", customer, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := s.do(t, tt.method, tt.path, tt.tok, nil)
			assert.Equal(t, tt.status, code, body)
			if tt.error != "" {
				assert.Equal(t, tt.error, body["error"])
			}
		})
	}
}

func TestSessionCookie(t *testing.T) {
	s := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.AddCookie(&http.Cookie{Name: "__session", Value: token(t, "user_cookie")})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		User model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "user_cookie", body.User.ExternalID)
	assert.Equal(t, model.RoleCustomer, body.User.Role)
}

func TestPurchaseFlow(t *testing.T) {
	s := newTestServer(t, "")
	testutil.CreateUser(t, s.db, "user_vendor", model.RoleVendor)
	vendorTok := token(t, "user_vendor")
	buyerTok := token(t, "user_buyer")

	code, body := s.do(t, http.MethodPost, "/api/agents", vendorTok, map[string]interface{}{
		"name":        "Inbox Zero",
		"description": "Sorts your mail",
		"category":    "productivity",
		"price":       "25.00",
	})
	require.Equal(t, http.StatusCreated, code, body)
	agentID := body["agent"].(map[string]interface{})["id"].(string)

	code, body = s.do(t, http.MethodPost, "/api/cart", buyerTok, map[string]interface{}{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ValidationError", body["error"])

	code, body = s.do(t, http.MethodPost, "/api/cart", buyerTok, map[string]interface{}{"agentId": agentID, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ValidationError", body["error"])

	code, body = s.do(t, http.MethodPost, "/api/cart", buyerTok, map[string]interface{}{"agentId": agentID})
	require.Equal(t, http.StatusCreated, code, body)
	code, body = s.do(t, http.MethodPost, "/api/cart", buyerTok, map[string]interface{}{"agentId": agentID, "quantity": 1})
	require.Equal(t, http.StatusCreated, code, body)
	assert.EqualValues(t, 2, body["cartItem"].(map[string]interface{})["quantity"])

	code, body = s.do(t, http.MethodPost, "/api/orders", buyerTok, nil)
	require.Equal(t, http.StatusCreated, code, body)
	orderID := body["order"].(map[string]interface{})["id"].(string)
	agents := body["agents"].([]interface{})
	require.Len(t, agents, 1)
	assert.Len(t, agents[0].(map[string]interface{})["apiKeys"], 2)

	code, body = s.do(t, http.MethodPost, "/api/orders", buyerTok, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "EmptyCart", body["error"])

	code, body = s.do(t, http.MethodGet, "/api/user/agents", buyerTok, nil)
	require.Equal(t, http.StatusOK, code)
	owned := body["agents"].([]interface{})
	require.Len(t, owned, 1)
	assert.EqualValues(t, 2, owned[0].(map[string]interface{})["licenseCount"])

	code, _ = s.do(t, http.MethodGet, "/api/orders/"+orderID, vendorTok, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodGet, "/api/orders/"+orderID, buyerTok, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestWebhookEndpoint(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		s := newTestServer(t, "")
		code, body := s.do(t, http.MethodPost, "/api/webhooks/identity", "", map[string]string{"type": "user.created"})
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "ConfigError", body["error"])
		assert.NotContains(t, fmt.Sprint(body["message"]), "secret")
	})

	t.Run("unsigned", func(t *testing.T) {
		s := newTestServer(t, "whsec_c2VjcmV0")
		code, body := s.do(t, http.MethodPost, "/api/webhooks/identity", "", map[string]string{"type": "user.created"})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "ValidationError", body["error"])
	})
}

func TestRenderError(t *testing.T) {
	status, body := renderError(fmt.Errorf("load: %w", gorm.ErrRecordNotFound))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NotFound", body.Error)

	status, body = renderError(errors.New("db exploded"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "UnexpectedError", body.Error)
	assert.NotContains(t, body.Message, "exploded")
}
