package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/aldenair/storefront-backend/internal/app/model"
	"github.com/aldenair/storefront-backend/internal/app/repository"
	"github.com/aldenair/storefront-backend/internal/app/service"
	"github.com/aldenair/storefront-backend/internal/db"
	"github.com/aldenair/storefront-backend/internal/middleware"
	"github.com/aldenair/storefront-backend/internal/storage"
	ws "github.com/aldenair/storefront-backend/internal/websocket"
	"github.com/aldenair/storefront-backend/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "controller-test-secret"

type memoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (r *memoryRevoker) Revoke(_ context.Context, token string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[token] = true
	return nil
}

func (r *memoryRevoker) IsRevoked(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.revoked[token], nil
}

type fakeImageStorage struct {
	uploaded []string
}

func (f *fakeImageStorage) PresignUpload(_ context.Context, contentType string) (*storage.PresignedUpload, error) {
	if err := storage.ValidateImage(contentType, 0); err != nil {
		return nil, err
	}
	return &storage.PresignedUpload{
		UploadURL: "https://bucket.example/products/x.jpg?X-Amz-Signature=abc",
		FileURL:   "https://cdn.example/products/x.jpg",
		Key:       "products/x.jpg",
	}, nil
}

func (f *fakeImageStorage) Upload(_ context.Context, contentType string, size int64, body io.Reader) (string, error) {
	if err := storage.ValidateImage(contentType, size); err != nil {
		return "", err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.uploaded = append(f.uploaded, string(data))
	return "https://cdn.example/products/uploaded.jpg", nil
}

type testEnv struct {
	db      *gorm.DB
	router  *gin.Engine
	images  *fakeImageStorage
	revoker *memoryRevoker
	admin   *model.User
	user    *model.User
}

// newTestEnv mounts every controller on the same routes the server uses
func newTestEnv(t *testing.T) *testEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	bundleRepo := repository.NewBundleRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	partnerRepo := repository.NewPartnerRepository(testDB)

	authService := service.NewAuthService(userRepo, testSecret, 15*time.Minute, time.Hour)
	catalogService := service.NewCatalogService(productRepo)
	bundleService := service.NewBundleService(bundleRepo)
	hub := ws.NewHub()
	cartService := service.NewCartService(catalogService, bundleService, nil, hub)
	loyaltyService := service.NewLoyaltyService(userRepo)
	checkoutService := service.NewCheckoutService(cartService, orderRepo, loyaltyService, "EUR")
	partnerService := service.NewPartnerService(partnerRepo)

	env := &testEnv{
		db:      testDB,
		images:  &fakeImageStorage{},
		revoker: &memoryRevoker{revoked: make(map[string]bool)},
	}

	authCtrl := NewAuthController(authService, env.revoker, 15*time.Minute)
	productCtrl := NewProductController(catalogService)
	cartCtrl := NewCartController(cartService, bundleService, hub, "EUR", nil)
	bundleCtrl := NewBundleController(bundleService)
	checkoutCtrl := NewCheckoutController(checkoutService)
	loyaltyCtrl := NewLoyaltyController(loyaltyService)
	partnerCtrl := NewPartnerController(partnerService)
	uploadCtrl := NewUploadController(env.images)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.LoggingMiddleware())
	auth := middleware.NewAuthMiddleware(testSecret, env.revoker)
	admin := []gin.HandlerFunc{auth.Authenticate(), auth.RequireRole(model.RoleAdmin)}

	v1 := r.Group("/api/v1")
	v1.POST("/auth/register", authCtrl.Register)
	v1.POST("/auth/login", authCtrl.Login)
	v1.POST("/auth/refresh", authCtrl.Refresh)
	v1.POST("/auth/logout", auth.Authenticate(), authCtrl.Logout)
	v1.GET("/auth/me", auth.Authenticate(), authCtrl.GetMe)

	v1.GET("/products", auth.OptionalAuthenticate(), productCtrl.GetProducts)
	v1.GET("/products/:id", auth.OptionalAuthenticate(), productCtrl.GetProductByID)
	v1.POST("/products", append(admin, productCtrl.CreateProduct)...)
	v1.PUT("/products/:id", append(admin, productCtrl.UpdateProduct)...)
	v1.DELETE("/products/:id", append(admin, productCtrl.DeleteProduct)...)

	cartGroup := v1.Group("/cart", middleware.CartSession())
	cartGroup.GET("", cartCtrl.GetCart)
	cartGroup.DELETE("", cartCtrl.ClearCart)
	cartGroup.POST("/items", cartCtrl.AddItem)
	cartGroup.PUT("/items/:product_id/:variant_id", cartCtrl.UpdateItemQuantity)
	cartGroup.DELETE("/items/:product_id/:variant_id", cartCtrl.RemoveItem)
	cartGroup.POST("/bundle", cartCtrl.ApplyBundle)
	cartGroup.DELETE("/bundle", cartCtrl.RemoveBundle)

	v1.GET("/bundles", bundleCtrl.GetBundles)
	v1.GET("/bundles/eligible", bundleCtrl.GetEligibleBundles)
	v1.POST("/bundles", append(admin, bundleCtrl.CreateBundle)...)
	v1.DELETE("/bundles/:id", append(admin, bundleCtrl.DeleteBundle)...)

	v1.POST("/checkout", middleware.CartSession(), auth.OptionalAuthenticate(), checkoutCtrl.Checkout)
	v1.GET("/loyalty", auth.Authenticate(), loyaltyCtrl.GetStatus)

	v1.POST("/partners", auth.Authenticate(), partnerCtrl.Apply)
	v1.GET("/partners/me", auth.Authenticate(), partnerCtrl.GetMine)
	v1.PUT("/partners/:id/approve", append(admin, partnerCtrl.Approve)...)

	v1.POST("/upload/presigned-url", append(admin, uploadCtrl.PresignImage)...)
	v1.POST("/upload/image", append(admin, uploadCtrl.UploadImage)...)

	env.router = r
	env.admin = env.createUser(t, "admin@aldenair.de", model.RoleAdmin)
	env.user = env.createUser(t, "kunde@example.com", model.RoleUser)
	return env
}

func (e *testEnv) createUser(t *testing.T, email string, role model.UserRole) *model.User {
	hash, err := util.HashPassword("Passwort123")
	require.NoError(t, err)
	user := &model.User{Email: email, PasswordHash: hash, Name: "Test", Role: role}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) tokenFor(t *testing.T, user *model.User) string {
	tokens, err := util.GenerateTokenPair(user.ID, user.Email, string(user.Role), testSecret, 15*time.Minute, time.Hour)
	require.NoError(t, err)
	return tokens.AccessToken
}

type request struct {
	method  string
	path    string
	body    interface{}
	token   string
	session string
}

func (e *testEnv) do(t *testing.T, r request) *httptest.ResponseRecorder {
	var body io.Reader
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(r.method, r.path, body)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	if r.session != "" {
		req.Header.Set(middleware.CartSessionHeader, r.session)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (e *testEnv) seedPerfume(t *testing.T, name string, priceCents int64, active bool) (*model.Product, string, string) {
	p := &model.Product{
		Brand: "ALDENAIR", Name: name, Category: model.CategoryUnisex, Size: "50ml", Active: true,
		Variants: []model.ProductVariant{{SKU: name + "-50", Label: "50ml", PriceCents: priceCents, StockQuantity: 5}},
	}
	require.NoError(t, repository.NewProductRepository(e.db).Create(p))
	if !active {
		require.NoError(t, e.db.Model(p).Update("active", false).Error)
	}
	return p, strconv.FormatUint(uint64(p.ID), 10), strconv.FormatUint(uint64(p.Variants[0].ID), 10)
}

func (e *testEnv) seedBundle(t *testing.T, slug string, percent float64, required int) *model.BundleOffer {
	offer := &model.BundleOffer{Slug: slug, Name: slug, DiscountPercent: percent, QuantityRequired: required, Active: true}
	require.NoError(t, repository.NewBundleRepository(e.db).Create(offer))
	return offer
}
