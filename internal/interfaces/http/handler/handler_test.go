package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	catalogapp "github.com/soko/backend/internal/application/catalog"
	disputeapp "github.com/soko/backend/internal/application/dispute"
	escrowapp "github.com/soko/backend/internal/application/escrow"
	orderapp "github.com/soko/backend/internal/application/order"
	trustapp "github.com/soko/backend/internal/application/trust"
	"github.com/soko/backend/internal/domain/shop"
	"github.com/soko/backend/internal/infrastructure/auth"
	"github.com/soko/backend/internal/infrastructure/config"
	"github.com/soko/backend/internal/infrastructure/event"
	"github.com/soko/backend/internal/infrastructure/persistence"
	"github.com/soko/backend/internal/interfaces/http/dto"
	"github.com/soko/backend/internal/interfaces/http/middleware"
	"github.com/soko/backend/internal/interfaces/http/router"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Cross-service ports wired the same way cmd/server does it.

type escrowReleaserAdapter struct{ svc *escrowapp.Service }

func (a escrowReleaserAdapter) ReleaseEscrow(ctx context.Context, orderID uuid.UUID) error {
	_, err := a.svc.ReleaseEscrow(ctx, orderID)
	return err
}

type escrowRefunderAdapter struct{ svc *escrowapp.Service }

func (a escrowRefunderAdapter) RefundEscrow(ctx context.Context, orderID uuid.UUID) error {
	_, err := a.svc.RefundEscrow(ctx, orderID)
	return err
}

type violationRecorderAdapter struct{ svc *trustapp.Service }

func (a violationRecorderAdapter) RecordViolation(ctx context.Context, shopID uuid.UUID, vtype shop.ViolationType, severity shop.Severity, details shop.ViolationDetails) error {
	_, err := a.svc.RecordViolation(ctx, shopID, vtype, severity, details)
	return err
}

type violationAppenderAdapter struct{ svc *trustapp.Service }

func (a violationAppenderAdapter) AppendViolation(ctx context.Context, shopID uuid.UUID, vtype shop.ViolationType, severity shop.Severity, details shop.ViolationDetails) error {
	_, err := a.svc.AppendViolation(ctx, shopID, vtype, severity, details)
	return err
}

type testServer struct {
	engine    *gin.Engine
	jwt       *auth.JWTService
	processor *event.OutboxProcessor
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	shopRepo := persistence.NewShopRepository(db)
	productRepo := persistence.NewProductRepository(db)
	scoreRepo := persistence.NewTrustScoreRepository(db)
	violationRepo := persistence.NewViolationRepository(db)
	orderRepo := persistence.NewOrderRepository(db)
	escrowRepo := persistence.NewEscrowRepository(db)
	payoutRepo := persistence.NewPayoutRepository(db)
	disputeRepo := persistence.NewDisputeRepository(db)
	outboxRepo := event.NewOutboxRepository(db)

	trustService := trustapp.NewService(shopRepo, scoreRepo, violationRepo, productRepo, persistence.NewTrustMetricsSource(db))
	escrowService := escrowapp.NewService(escrowRepo, orderRepo, shopRepo, trustService)
	payoutService := escrowapp.NewPayoutService(escrowRepo, payoutRepo, shopRepo, zap.NewNop())
	orderService := orderapp.NewService(orderRepo, productRepo, shopRepo, escrowReleaserAdapter{escrowService})
	catalogService := catalogapp.NewService(shopRepo, productRepo, trustService, violationRecorderAdapter{trustService})
	disputeService := disputeapp.NewService(disputeRepo, orderRepo, shopRepo, escrowRefunderAdapter{escrowService}, violationAppenderAdapter{trustService}, zap.NewNop())

	processor := event.NewOutboxProcessor(outboxRepo, event.DefaultOutboxProcessorConfig(), zap.NewNop())
	processor.Register(orderapp.EscrowCreateKind, event.EscrowCreateHandler(escrowService))

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret: "handler-test-secret",
		Issuer: "soko-test",
	})
	authRequired := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{JWTService: jwtService})
	authOptional := middleware.OptionalJWTAuthMiddleware(jwtService)

	engine := gin.New()
	engine.Use(middleware.RequestID(zap.NewNop()))

	r := router.NewRouter(engine)
	r.Register(NewCatalogHandler(catalogService, authRequired))
	r.Register(NewOrderHandler(orderService, authRequired, authOptional))
	r.Register(NewDisputeHandler(disputeService, authRequired))
	r.Register(NewTrustHandler(trustService, authRequired))
	r.Register(NewSettlementHandler(escrowService, payoutService, authRequired))
	r.Register(NewHealthHandler(nil))
	r.Setup()

	return &testServer{engine: engine, jwt: jwtService, processor: processor}
}

func (s *testServer) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := s.jwt.GenerateToken(userID, time.Hour)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
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
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// decodeData re-marshals the generic data payload into a typed struct
func decodeData(t *testing.T, resp dto.Response, out any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

// createShop provisions a shop through the API and returns its response
func (s *testServer) createShop(t *testing.T, ownerToken string) catalogapp.ShopResponse {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/v1/shops", ownerToken, gin.H{
		"name":        "Mama Njeri Electronics",
		"description": "Solar gear and phone accessories",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var sh catalogapp.ShopResponse
	decodeData(t, decodeResponse(t, w), &sh)
	return sh
}

// createProduct lists a product through the API and returns its response
func (s *testServer) createProduct(t *testing.T, ownerToken string, stock int) catalogapp.ProductResponse {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/v1/products", ownerToken, gin.H{
		"name":     "Solar Lantern",
		"category": "home",
		"price":    1250.0,
		"stock":    stock,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var p catalogapp.ProductResponse
	decodeData(t, decodeResponse(t, w), &p)
	return p
}
