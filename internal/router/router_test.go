package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aldenair/storefront-backend/config"
	"github.com/aldenair/storefront-backend/internal/app/controller"
	"github.com/aldenair/storefront-backend/internal/app/repository"
	"github.com/aldenair/storefront-backend/internal/app/service"
	"github.com/aldenair/storefront-backend/internal/db"
	"github.com/aldenair/storefront-backend/internal/middleware"
	ws "github.com/aldenair/storefront-backend/internal/websocket"
	"github.com/aldenair/storefront-backend/pkg/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T, limit int) http.Handler {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	cfg := &config.Config{
		Server: config.ServerConfig{GinMode: "test"},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"https://aldenair.de"}},
	}

	userRepo := repository.NewUserRepository(testDB)
	catalog := service.NewCatalogService(repository.NewProductRepository(testDB))
	bundles := service.NewBundleService(repository.NewBundleRepository(testDB))
	hub := ws.NewHub()
	carts := service.NewCartService(catalog, bundles, nil, hub)
	loyalty := service.NewLoyaltyService(userRepo)

	controllers := Controllers{
		Auth:     controller.NewAuthController(service.NewAuthService(userRepo, "secret", time.Minute, time.Hour), nil, time.Minute),
		Product:  controller.NewProductController(catalog),
		Cart:     controller.NewCartController(carts, bundles, hub, "EUR", cfg.CORS.AllowedOrigins),
		Bundle:   controller.NewBundleController(bundles),
		Checkout: controller.NewCheckoutController(service.NewCheckoutService(carts, repository.NewOrderRepository(testDB), loyalty, "EUR")),
		Loyalty:  controller.NewLoyaltyController(loyalty),
		Partner:  controller.NewPartnerController(service.NewPartnerService(repository.NewPartnerRepository(testDB))),
	}

	return NewRouter(controllers, middleware.NewAuthMiddleware("secret", nil), ratelimit.NewMemoryLimiter(limit, time.Minute), cfg).Setup()
}

func TestRouter_Health(t *testing.T) {
	r := setupRouter(t, 100)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestRouter_CORSExposesCartSession(t *testing.T) {
	r := setupRouter(t, 100)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Origin", "https://aldenair.de")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://aldenair.de", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), middleware.CartSessionHeader)
	assert.NotEmpty(t, w.Header().Get(middleware.CartSessionHeader))
}

func TestRouter_RateLimitsAPI(t *testing.T) {
	r := setupRouter(t, 2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/bundles", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// health is outside the limited group
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_AdminRoutesRequireAuth(t *testing.T) {
	r := setupRouter(t, 100)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/bundles", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
