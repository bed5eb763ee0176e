package trust

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/soko/backend/internal/domain/shared"
	"github.com/soko/backend/internal/domain/shop"
)

type mockShopRepo struct {
	mock.Mock
}

func (m *mockShopRepo) FindByID(ctx context.Context, id uuid.UUID) (*shop.Shop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shop.Shop), args.Error(1)
}

func (m *mockShopRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*shop.Shop, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shop.Shop), args.Error(1)
}

func (m *mockShopRepo) Save(ctx context.Context, s *shop.Shop) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockShopRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status shop.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type mockScoreRepo struct {
	mock.Mock
}

func (m *mockScoreRepo) FindByShop(ctx context.Context, shopID uuid.UUID) (*shop.TrustScoreRecord, error) {
	args := m.Called(ctx, shopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shop.TrustScoreRecord), args.Error(1)
}

func (m *mockScoreRepo) Upsert(ctx context.Context, record *shop.TrustScoreRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

type mockViolationRepo struct {
	mock.Mock
}

func (m *mockViolationRepo) Append(ctx context.Context, v *shop.Violation) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *mockViolationRepo) CountByTypeSince(ctx context.Context, shopID uuid.UUID, vtype shop.ViolationType, since time.Time) (int64, error) {
	args := m.Called(ctx, shopID, vtype, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockViolationRepo) FindByShop(ctx context.Context, shopID uuid.UUID, limit int) ([]shop.Violation, error) {
	args := m.Called(ctx, shopID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shop.Violation), args.Error(1)
}

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*shop.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shop.Product), args.Error(1)
}

func (m *mockProductRepo) Save(ctx context.Context, p *shop.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepo) FindByShop(ctx context.Context, shopID uuid.UUID, filter shared.Filter) (*shared.Paginated[shop.Product], error) {
	args := m.Called(ctx, shopID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[shop.Product]), args.Error(1)
}

func (m *mockProductRepo) CountCreatedSince(ctx context.Context, shopID uuid.UUID, since time.Time) (int64, error) {
	args := m.Called(ctx, shopID, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProductRepo) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

type mockMetricsSource struct {
	mock.Mock
}

func (m *mockMetricsSource) GatherMetrics(ctx context.Context, shopID uuid.UUID) (shop.TrustMetrics, error) {
	args := m.Called(ctx, shopID)
	return args.Get(0).(shop.TrustMetrics), args.Error(1)
}

func (m *mockMetricsSource) CountListingsSince(ctx context.Context, shopID uuid.UUID, since time.Time) (int64, error) {
	args := m.Called(ctx, shopID, since)
	return args.Get(0).(int64), args.Error(1)
}

func activeShop(t *testing.T, age time.Duration) *shop.Shop {
	t.Helper()
	sh, err := shop.NewShop(uuid.New(), "Test Shop", "")
	require.NoError(t, err)
	sh.CreatedAt = time.Now().Add(-age)
	return sh
}

func newTestService(shopRepo *mockShopRepo, scoreRepo *mockScoreRepo, violationRepo *mockViolationRepo, productRepo *mockProductRepo, metrics *mockMetricsSource) *Service {
	return NewService(shopRepo, scoreRepo, violationRepo, productRepo, metrics)
}

func TestCalculateTrustScore(t *testing.T) {
	shopRepo := new(mockShopRepo)
	scoreRepo := new(mockScoreRepo)
	metrics := new(mockMetricsSource)
	svc := newTestService(shopRepo, scoreRepo, new(mockViolationRepo), new(mockProductRepo), metrics)

	sh := activeShop(t, 40*24*time.Hour)
	shopRepo.On("FindByID", mock.Anything, sh.ID).Return(sh, nil)
	metrics.On("GatherMetrics", mock.Anything, sh.ID).Return(shop.TrustMetrics{
		TotalOrders:         50,
		CompletedOrders:     45,
		AvgFulfillmentHours: 30,
		AvgRating:           4.5,
	}, nil)
	scoreRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(r *shop.TrustScoreRecord) bool {
		return r.ShopID == sh.ID && r.Score == 100
	})).Return(nil)

	resp, err := svc.CalculateTrustScore(context.Background(), sh.ID)
	require.NoError(t, err)

	// 50 base + 30 age + 22.5 orders + 10 fast + 45 rating, clamped
	assert.Equal(t, 100, resp.Score)
	scoreRepo.AssertExpectations(t)
}

func TestCalculateTrustScore_ShopNotFound(t *testing.T) {
	shopRepo := new(mockShopRepo)
	svc := newTestService(shopRepo, new(mockScoreRepo), new(mockViolationRepo), new(mockProductRepo), new(mockMetricsSource))

	shopID := uuid.New()
	shopRepo.On("FindByID", mock.Anything, shopID).Return(nil, nil)

	_, err := svc.CalculateTrustScore(context.Background(), shopID)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestRecordViolation_HighSeveritySuspendsImmediately(t *testing.T) {
	shopRepo := new(mockShopRepo)
	violationRepo := new(mockViolationRepo)
	svc := newTestService(shopRepo, new(mockScoreRepo), violationRepo, new(mockProductRepo), new(mockMetricsSource))

	sh := activeShop(t, 24*time.Hour)
	shopRepo.On("FindByID", mock.Anything, sh.ID).Return(sh, nil)
	violationRepo.On("Append", mock.Anything, mock.Anything).Return(nil)
	shopRepo.On("UpdateStatus", mock.Anything, sh.ID, shop.StatusSuspended).Return(nil)

	resp, err := svc.RecordViolation(context.Background(), sh.ID, shop.ViolationListingAbuse, shop.SeverityHigh, nil)
	require.NoError(t, err)

	assert.True(t, resp.Suspended)
	assert.Equal(t, "shop_suspended", resp.ActionTaken)
	violationRepo.AssertNotCalled(t, "CountByTypeSince", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	shopRepo.AssertExpectations(t)
}

func TestRecordViolation_EscalatesAfterThreeInWindow(t *testing.T) {
	shopRepo := new(mockShopRepo)
	violationRepo := new(mockViolationRepo)
	svc := newTestService(shopRepo, new(mockScoreRepo), violationRepo, new(mockProductRepo), new(mockMetricsSource))

	sh := activeShop(t, 24*time.Hour)
	shopRepo.On("FindByID", mock.Anything, sh.ID).Return(sh, nil)
	violationRepo.On("Append", mock.Anything, mock.Anything).Return(nil)
	violationRepo.On("CountByTypeSince", mock.Anything, sh.ID, shop.ViolationContactSharing, mock.Anything).Return(int64(3), nil)
	shopRepo.On("UpdateStatus", mock.Anything, sh.ID, shop.StatusSuspended).Return(nil)

	resp, err := svc.RecordViolation(context.Background(), sh.ID, shop.ViolationContactSharing, shop.SeverityMedium, nil)
	require.NoError(t, err)

	assert.True(t, resp.Suspended)
	shopRepo.AssertExpectations(t)
}

func TestRecordViolation_BelowThresholdNoSuspension(t *testing.T) {
	shopRepo := new(mockShopRepo)
	violationRepo := new(mockViolationRepo)
	svc := newTestService(shopRepo, new(mockScoreRepo), violationRepo, new(mockProductRepo), new(mockMetricsSource))

	sh := activeShop(t, 24*time.Hour)
	shopRepo.On("FindByID", mock.Anything, sh.ID).Return(sh, nil)
	violationRepo.On("Append", mock.Anything, mock.Anything).Return(nil)
	violationRepo.On("CountByTypeSince", mock.Anything, sh.ID, shop.ViolationContactSharing, mock.Anything).Return(int64(2), nil)

	resp, err := svc.RecordViolation(context.Background(), sh.ID, shop.ViolationContactSharing, shop.SeverityMedium, nil)
	require.NoError(t, err)

	assert.False(t, resp.Suspended)
	assert.Equal(t, "product_rejected", resp.ActionTaken)
	shopRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestAppendViolation_NeverEscalates(t *testing.T) {
	shopRepo := new(mockShopRepo)
	violationRepo := new(mockViolationRepo)
	svc := newTestService(shopRepo, new(mockScoreRepo), violationRepo, new(mockProductRepo), new(mockMetricsSource))

	sh := activeShop(t, 24*time.Hour)
	shopRepo.On("FindByID", mock.Anything, sh.ID).Return(sh, nil)
	violationRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.AppendViolation(context.Background(), sh.ID, shop.ViolationHighDisputeRate, shop.SeverityMedium, nil)
	require.NoError(t, err)

	assert.Equal(t, "payout_frozen", resp.ActionTaken)
	violationRepo.AssertNotCalled(t, "CountByTypeSince", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	shopRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckNewSellerThrottle_EstablishedShopSkipsCount(t *testing.T) {
	productRepo := new(mockProductRepo)
	svc := newTestService(new(mockShopRepo), new(mockScoreRepo), new(mockViolationRepo), productRepo, new(mockMetricsSource))

	sh := activeShop(t, 30*24*time.Hour)
	decision, err := svc.CheckNewSellerThrottle(context.Background(), sh)
	require.NoError(t, err)

	assert.True(t, decision.Allowed)
	productRepo.AssertNotCalled(t, "CountCreatedSince", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckNewSellerThrottle_NewShopAtCap(t *testing.T) {
	productRepo := new(mockProductRepo)
	svc := newTestService(new(mockShopRepo), new(mockScoreRepo), new(mockViolationRepo), productRepo, new(mockMetricsSource))

	sh := activeShop(t, 48*time.Hour)
	productRepo.On("CountCreatedSince", mock.Anything, sh.ID, mock.Anything).Return(int64(5), nil)

	decision, err := svc.CheckNewSellerThrottle(context.Background(), sh)
	require.NoError(t, err)

	assert.False(t, decision.Allowed)
	assert.Equal(t, "New sellers can only list 5 products per day", decision.Reason)
}

type stubCache struct {
	scores map[uuid.UUID]int
}

func (c *stubCache) GetScore(_ context.Context, shopID uuid.UUID) (int, bool, error) {
	score, ok := c.scores[shopID]
	return score, ok, nil
}

func (c *stubCache) SetScore(_ context.Context, shopID uuid.UUID, score int) error {
	c.scores[shopID] = score
	return nil
}

func TestGetTrustBadge_CacheHitSkipsRecompute(t *testing.T) {
	shopRepo := new(mockShopRepo)
	cache := &stubCache{scores: map[uuid.UUID]int{}}
	svc := NewService(shopRepo, new(mockScoreRepo), new(mockViolationRepo), new(mockProductRepo), new(mockMetricsSource), WithScoreCache(cache))

	shopID := uuid.New()
	cache.scores[shopID] = 85

	badge, err := svc.GetTrustBadge(context.Background(), shopID)
	require.NoError(t, err)

	assert.Equal(t, 85, badge.Score)
	assert.Equal(t, "trusted", badge.Tier)
	shopRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestGetTrustBadge_MissComputesAndCaches(t *testing.T) {
	shopRepo := new(mockShopRepo)
	scoreRepo := new(mockScoreRepo)
	metrics := new(mockMetricsSource)
	cache := &stubCache{scores: map[uuid.UUID]int{}}
	svc := NewService(shopRepo, scoreRepo, new(mockViolationRepo), new(mockProductRepo), metrics, WithScoreCache(cache))

	sh := activeShop(t, 10*24*time.Hour)
	shopRepo.On("FindByID", mock.Anything, sh.ID).Return(sh, nil)
	metrics.On("GatherMetrics", mock.Anything, sh.ID).Return(shop.TrustMetrics{}, nil)
	scoreRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	badge, err := svc.GetTrustBadge(context.Background(), sh.ID)
	require.NoError(t, err)

	// 50 base + 10 age days + 10 fast fulfillment
	assert.Equal(t, 70, badge.Score)
	assert.Equal(t, "established", badge.Tier)
	assert.Equal(t, 70, cache.scores[sh.ID])
}
