package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/sweetshop/internal/api/http/handlers"
	"github.com/spec-kit/sweetshop/internal/auth"
	"github.com/spec-kit/sweetshop/internal/config"
	"github.com/spec-kit/sweetshop/internal/events"
	"github.com/spec-kit/sweetshop/internal/observability"
	"github.com/spec-kit/sweetshop/internal/persistence"
	"github.com/spec-kit/sweetshop/internal/repository"
	"github.com/spec-kit/sweetshop/internal/service"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-pass"
)

type testServer struct {
	app *fiber.App
}

func newTestServer(t *testing.T, mutate ...func(*config.AuthConfig)) *testServer {
	t.Helper()
	logger := zap.NewNop()

	store, err := persistence.NewSQLite(config.SQLiteConfig{
		Path: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}, logger)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, repository.AutoMigrate(store.DB))

	authCfg := config.AuthConfig{
		JWTSecret:             "router-test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
	}
	for _, m := range mutate {
		m(&authCfg)
	}

	users := repository.NewGormUserRepository(store.DB)
	authService := service.NewAuthService(authCfg, service.AuthDependencies{UserRepo: users, Logger: logger})
	require.NoError(t, authService.EnsureBootstrapAdmin(context.Background(), adminEmail, adminPassword))

	inventory := service.NewInventoryService(service.InventoryDependencies{
		SweetRepo:  repository.NewGormSweetRepository(store.DB),
		Dispatcher: events.NewInMemoryDispatcher(logger),
		Logger:     logger,
	})

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger, metrics)})
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("sweetshop", "test", metrics, handlers.DependencyCheck{Name: "sqlite", Pinger: store}),
		Users:          handlers.NewUsersHandler(authService),
		Sweets:         handlers.NewSweetsHandler(inventory),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
	})
	return &testServer{app: app}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *nethttp.Request) (int, map[string]any) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	status, body := s.do(t, fiber.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, fiber.StatusOK, status, body)
	data := body["data"].(map[string]any)
	assert.Equal(t, "bearer", data["token_type"])
	return data["access_token"].(string)
}

func (s *testServer) registerAndLogin(t *testing.T, email string) string {
	t.Helper()
	status, body := s.do(t, fiber.MethodPost, "/api/auth/register", map[string]string{"email": email, "password": "secret1"}, "")
	require.Equal(t, fiber.StatusCreated, status, body)
	return s.login(t, email, "secret1")
}

func (s *testServer) createSweet(t *testing.T, token, name string, qty int) int64 {
	t.Helper()
	status, body := s.do(t, fiber.MethodPost, "/api/sweets", map[string]any{
		"name": name, "category": "Pastry", "price": 3.5, "quantity": qty,
	}, token)
	require.Equal(t, fiber.StatusCreated, status, body)
	return int64(body["data"].(map[string]any)["id"].(float64))
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func sweetPath(id int64, suffix string) string {
	return "/api/sweets/" + jsonNumber(id) + suffix
}

func jsonNumber(id int64) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}

func TestRegister(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, fiber.MethodPost, "/api/auth/register", map[string]string{"email": "ann@example.com", "password": "secret1"}, "")
	require.Equal(t, fiber.StatusCreated, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "ann@example.com", data["email"])
	assert.Equal(t, "customer", data["role"])
	assert.NotContains(t, data, "password_hash")

	status, body = srv.do(t, fiber.MethodPost, "/api/auth/register", map[string]string{"email": "ann@example.com", "password": "other12"}, "")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "EMAIL_TAKEN", errorCode(body))

	status, body = srv.do(t, fiber.MethodPost, "/api/auth/register", map[string]string{"email": "not-an-email", "password": "x"}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
}

func TestRegister_SelfAssignedRole(t *testing.T) {
	locked := newTestServer(t)
	status, body := locked.do(t, fiber.MethodPost, "/api/auth/register", map[string]string{"email": "eve@example.com", "password": "secret1", "role": "admin"}, "")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	open := newTestServer(t, func(c *config.AuthConfig) { c.AllowSelfAssignedRole = true })
	status, body = open.do(t, fiber.MethodPost, "/api/auth/register", map[string]string{"email": "eve@example.com", "password": "secret1", "role": "admin"}, "")
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "admin", body["data"].(map[string]any)["role"])
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)
	srv.registerAndLogin(t, "ann@example.com")

	status, body := srv.do(t, fiber.MethodPost, "/api/auth/login", map[string]string{"email": "ann@example.com", "password": "wrong"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(body))

	status, _ = srv.do(t, fiber.MethodPost, "/api/auth/login", map[string]string{"email": "ghost@example.com", "password": "secret1"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	form := strings.NewReader("username=ann%40example.com&password=secret1")
	req := httptest.NewRequest(fiber.MethodPost, "/api/auth/login", form)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	status, body = srv.send(t, req)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.NotEmpty(t, body["data"].(map[string]any)["access_token"])
}

func TestMe(t *testing.T) {
	srv := newTestServer(t)
	token := srv.registerAndLogin(t, "ann@example.com")

	status, body := srv.do(t, fiber.MethodGet, "/api/users/me", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ann@example.com", body["data"].(map[string]any)["email"])

	req := httptest.NewRequest(fiber.MethodGet, "/api/users/me", nil)
	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer", resp.Header.Get(fiber.HeaderWWWAuthenticate))

	status, _ = srv.do(t, fiber.MethodGet, "/api/auth/me", nil, "garbage")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestAdminCreatesUsers(t *testing.T) {
	srv := newTestServer(t)
	adminToken := srv.login(t, adminEmail, adminPassword)
	customerToken := srv.registerAndLogin(t, "ann@example.com")

	payload := map[string]string{"email": "staff@example.com", "password": "secret1", "role": "admin"}
	status, _ := srv.do(t, fiber.MethodPost, "/api/users", payload, customerToken)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := srv.do(t, fiber.MethodPost, "/api/users", payload, adminToken)
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Equal(t, "admin", body["data"].(map[string]any)["role"])
}

func TestSweetLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, adminEmail, adminPassword)

	id := srv.createSweet(t, token, "Chocolate Eclair", 1)
	srv.createSweet(t, token, "Caramel Tart", 4)
	srv.createSweet(t, token, "Chocolate Mousse", 2)

	status, body := srv.do(t, fiber.MethodGet, "/api/sweets", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 3)

	status, body = srv.do(t, fiber.MethodGet, "/api/sweets?skip=1&limit=1", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	page := body["data"].([]any)
	require.Len(t, page, 1)
	assert.Equal(t, "Caramel Tart", page[0].(map[string]any)["name"])

	status, _ = srv.do(t, fiber.MethodGet, "/api/sweets?limit=500", nil, token)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = srv.do(t, fiber.MethodGet, "/api/sweets/search?name=choc", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 2)

	status, body = srv.do(t, fiber.MethodGet, "/api/sweets/search?category=Pastry&min_price=3.5&max_price=3.5", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 3)

	status, body = srv.do(t, fiber.MethodPost, sweetPath(id, "/purchase"), nil, token)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, float64(0), body["data"].(map[string]any)["quantity"])

	status, body = srv.do(t, fiber.MethodPost, sweetPath(id, "/purchase"), nil, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "OUT_OF_STOCK", errorCode(body))

	status, body = srv.do(t, fiber.MethodPost, sweetPath(id, "/restock"), map[string]int{"quantity": 3}, token)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, float64(3), body["data"].(map[string]any)["quantity"])

	status, body = srv.do(t, fiber.MethodPatch, sweetPath(id, ""), map[string]any{"price": 4.25}, token)
	require.Equal(t, fiber.StatusOK, status, body)
	data := body["data"].(map[string]any)
	assert.Equal(t, 4.25, data["price"])
	assert.Equal(t, "Chocolate Eclair", data["name"])
	assert.Equal(t, float64(3), data["quantity"])

	status, _ = srv.do(t, fiber.MethodDelete, sweetPath(id, ""), nil, token)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, body = srv.do(t, fiber.MethodGet, sweetPath(id, ""), nil, token)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestSweets_NonAdminForbidden(t *testing.T) {
	srv := newTestServer(t)
	adminToken := srv.login(t, adminEmail, adminPassword)
	id := srv.createSweet(t, adminToken, "Eclair", 5)
	customer := srv.registerAndLogin(t, "ann@example.com")

	checks := []struct {
		method, path string
		body         any
	}{
		{fiber.MethodPost, "/api/sweets", map[string]any{"name": "x", "category": "y", "price": 1, "quantity": 1}},
		{fiber.MethodPut, sweetPath(id, ""), map[string]any{"name": "Hacked"}},
		{fiber.MethodDelete, sweetPath(id, ""), nil},
		{fiber.MethodPost, sweetPath(id, "/restock"), map[string]int{"quantity": 10}},
	}
	for _, c := range checks {
		status, body := srv.do(t, c.method, c.path, c.body, customer)
		assert.Equal(t, fiber.StatusForbidden, status, c.method+" "+c.path)
		assert.Equal(t, "FORBIDDEN", errorCode(body))
	}

	status, body := srv.do(t, fiber.MethodGet, sweetPath(id, ""), nil, adminToken)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Eclair", body["data"].(map[string]any)["name"])
	assert.Equal(t, float64(5), body["data"].(map[string]any)["quantity"])
}

func TestSweets_CrossOwnerNotFound(t *testing.T) {
	srv := newTestServer(t)
	adminToken := srv.login(t, adminEmail, adminPassword)
	id := srv.createSweet(t, adminToken, "Eclair", 5)
	customer := srv.registerAndLogin(t, "ann@example.com")

	status, _ := srv.do(t, fiber.MethodGet, sweetPath(id, ""), nil, customer)
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = srv.do(t, fiber.MethodPost, sweetPath(id, "/purchase"), nil, customer)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body := srv.do(t, fiber.MethodGet, "/api/sweets", nil, customer)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, body["data"])

	status, body = srv.do(t, fiber.MethodGet, sweetPath(id, ""), nil, adminToken)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(5), body["data"].(map[string]any)["quantity"])
}

func TestSweets_InvalidInput(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, adminEmail, adminPassword)

	status, body := srv.do(t, fiber.MethodPost, "/api/sweets", map[string]any{"name": "", "category": "Cake", "price": -2, "quantity": 1}, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "price")

	status, _ = srv.do(t, fiber.MethodGet, "/api/sweets/abc", nil, token)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = srv.do(t, fiber.MethodGet, "/api/sweets/search?min_price=cheap", nil, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, fiber.MethodGet, "/health/live", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = srv.do(t, fiber.MethodGet, "/health/ready", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["dependencies"].(map[string]any)["sqlite"])

	status, body = srv.do(t, fiber.MethodGet, "/nowhere", nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	status, body = srv.do(t, fiber.MethodGet, "/metrics", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	requests := body["data"].(map[string]any)["requests"].(map[string]any)
	assert.Equal(t, float64(1), requests["/health/live|GET|200"])
}
