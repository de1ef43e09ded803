package routes

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"padyai-portal/internal/adapters/http/middleware"
	"padyai-portal/internal/config"
	"padyai-portal/internal/pkg/jwt"
)

// newTestApp wires the full route table against miniredis and no
// database. Routing and guard outcomes are fully decided before any
// repository call, which is all these tests assert on.
func newTestApp(t *testing.T) (*fiber.App, *miniredis.Miniredis, *config.Config) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "access-secret",
			RefreshSecret:    "refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
		KYC: config.KYCConfig{CacheTTL: time.Minute},
	}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})
	middleware.Setup(app, cfg)
	Setup(app, nil, rdb, cfg)
	return app, mr, cfg
}

func bearer(t *testing.T, cfg *config.Config, userID uint, role string) string {
	t.Helper()

	token, err := jwt.GenerateAccessToken(userID, "user@padyai.co.in", role,
		cfg.JWT.Secret, cfg.JWT.AccessTokenMins)
	require.NoError(t, err)
	return "Bearer " + token
}

type apiBody struct {
	Success  bool   `json:"success"`
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

func request(t *testing.T, app *fiber.App, method, path, auth string) (int, apiBody) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body apiBody
	_ = json.Unmarshal(raw, &body)
	return resp.StatusCode, body
}

func TestAdminListingsReachAdminHandlers(t *testing.T) {
	app, _, cfg := newTestApp(t)
	admin := bearer(t, cfg, 1, "admin")

	// two-segment admin paths must never be captured by the member
	// /:kind parameter routes
	for _, path := range []string{
		"/api/v1/admin/users",
		"/api/v1/admin/kyc/pending",
		"/api/v1/admin/fees/pending",
	} {
		status, body := request(t, app, fiber.MethodGet, path, admin)
		assert.NotEqual(t, fiber.StatusForbidden, status, path)
		assert.Empty(t, body.Redirect, path)
	}
}

func TestAdminAreaDeniedForMembers(t *testing.T) {
	app, _, cfg := newTestApp(t)
	society := bearer(t, cfg, 9, "society")

	status, body := request(t, app, fiber.MethodGet, "/api/v1/admin/users", society)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "/society/dashboard", body.Redirect)
}

func TestFinancialWritesRequireApprovedKYC(t *testing.T) {
	app, mr, cfg := newTestApp(t)

	student := bearer(t, cfg, 7, "student")
	society := bearer(t, cfg, 9, "society")
	require.NoError(t, mr.Set("kyc:status:7", "not_submitted"))
	require.NoError(t, mr.Set("kyc:status:9", "pending"))

	cases := []struct {
		path string
		auth string
	}{
		{"/api/v1/fees", student},
		{"/api/v1/payments/fees/3/order", student},
		{"/api/v1/loans", society},
		{"/api/v1/investments", society},
		{"/api/v1/payments/emis/3/order", society},
	}
	for _, tc := range cases {
		status, body := request(t, app, fiber.MethodPost, tc.path, tc.auth)
		assert.Equal(t, fiber.StatusForbidden, status, tc.path)
		assert.Equal(t, "/kyc", body.Redirect, tc.path)
	}
}

func TestFinancialReadsSkipKYCGate(t *testing.T) {
	app, mr, cfg := newTestApp(t)

	society := bearer(t, cfg, 9, "society")
	require.NoError(t, mr.Set("kyc:status:9", "not_submitted"))

	for _, path := range []string{"/api/v1/emis/pending", "/api/v1/loans"} {
		status, _ := request(t, app, fiber.MethodGet, path, society)
		assert.NotEqual(t, fiber.StatusForbidden, status, path)
	}
}

func TestApprovedMemberPassesFinancialGate(t *testing.T) {
	app, mr, cfg := newTestApp(t)

	society := bearer(t, cfg, 9, "society")
	require.NoError(t, mr.Set("kyc:status:9", "approved"))

	status, body := request(t, app, fiber.MethodPost, "/api/v1/loans", society)
	assert.NotEqual(t, fiber.StatusForbidden, status)
	assert.Empty(t, body.Redirect)
}

func TestAnonymousDenialPreservesAttemptedPath(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, body := request(t, app, fiber.MethodGet, "/api/v1/dashboard", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "/login?next=%2Fapi%2Fv1%2Fdashboard", body.Redirect)
}
