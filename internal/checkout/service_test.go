package checkout

import (
	"context"
	"io"
	"regexp"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/devhaven/marketplace-backend/internal/cart"
	"github.com/devhaven/marketplace-backend/internal/orders"
	"github.com/devhaven/marketplace-backend/internal/products"
	"github.com/devhaven/marketplace-backend/pkg/db/models"
	"github.com/devhaven/marketplace-backend/pkg/enums"
	pkgerrors "github.com/devhaven/marketplace-backend/pkg/errors"
	"github.com/devhaven/marketplace-backend/pkg/logger"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r *testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fixture struct {
	db      *gorm.DB
	svc     Service
	carts   *cart.Repository
	orders  *orders.Repository
	product *products.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		// SQLite cannot take concurrent writers on a shared-cache DB; the
		// single connection also serializes competing transactions.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Product{},
		&models.Cart{}, &models.CartItem{},
		&models.Order{}, &models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cartRepo := cart.NewRepository(db)
	orderRepo := orders.NewRepository(db)
	productRepo := products.NewRepository(db)

	svc, err := NewService(ServiceParams{
		DB:          &testTxRunner{db: db},
		CartRepo:    cartRepo,
		OrderRepo:   orderRepo,
		ProductRepo: productRepo,
		Logger:      logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)

	return &fixture{
		db:      db,
		svc:     svc,
		carts:   cartRepo,
		orders:  orderRepo,
		product: productRepo,
	}
}

func (f *fixture) seedProduct(t *testing.T, priceCents int64, status enums.ProductStatus) *models.Product {
	t.Helper()
	product := &models.Product{
		SellerID:   uuid.New(),
		Name:       "tool",
		Slug:       "tool-" + uuid.NewString()[:8],
		PriceCents: priceCents,
		Status:     status,
	}
	require.NoError(t, f.db.Create(product).Error)
	return product
}

func (f *fixture) stage(t *testing.T, userID uuid.UUID, productID uuid.UUID, quantity int) {
	t.Helper()
	ctx := context.Background()
	staged, err := f.carts.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	require.NoError(t, f.carts.AddItem(ctx, staged.ID, productID, quantity))
}

func billing() Request {
	return Request{
		BillingName:  "Test Buyer",
		BillingEmail: "buyer@example.com",
	}
}

func TestCheckoutCreatesConfirmedOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	buyerID := uuid.New()

	product := f.seedProduct(t, 1000, enums.ProductStatusActive)
	f.stage(t, buyerID, product.ID, 2)

	resp, err := f.svc.Checkout(ctx, buyerID, billing())
	require.NoError(t, err)
	require.NotNil(t, resp.Order)
	assert.Empty(t, resp.DroppedItems)

	order := resp.Order
	assert.Equal(t, enums.OrderStatusConfirmed, order.Status)
	assert.Equal(t, enums.PaymentStatusCompleted, order.PaymentStatus)
	assert.Equal(t, int64(2000), order.SubtotalCents)
	assert.Equal(t, int64(200), order.TaxCents)
	assert.Equal(t, int64(2200), order.TotalCents)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{14}-[0-9A-F]{6}$`), order.OrderNumber)

	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.Equal(t, int64(1000), item.PriceCents)
	assert.Equal(t, 2, item.Quantity)
	assert.Regexp(t, regexp.MustCompile(`^LIC-[0-9A-F]{8}-[0-9A-F]{8}$`), item.LicenseKey)

	// Cart is emptied atomically with the order.
	reloaded, err := f.carts.FindByUserID(ctx, buyerID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Items)

	// Download counter reflects the purchased quantity.
	var fresh models.Product
	require.NoError(t, f.db.First(&fresh, "id = ?", product.ID).Error)
	assert.Equal(t, int64(2), fresh.DownloadCount)
}

func TestCheckoutEmptyCart(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	buyerID := uuid.New()

	// No cart row at all.
	_, err := f.svc.Checkout(ctx, buyerID, billing())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeEmptyCart, pkgerrors.As(err).Code())

	// A cart row with no items behaves the same.
	_, err = f.carts.GetOrCreate(ctx, buyerID)
	require.NoError(t, err)
	_, err = f.svc.Checkout(ctx, buyerID, billing())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeEmptyCart, pkgerrors.As(err).Code())
}

func TestCheckoutAllItemsInvalid(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	buyerID := uuid.New()

	product := f.seedProduct(t, 1000, enums.ProductStatusActive)
	f.stage(t, buyerID, product.ID, 1)
	require.NoError(t, f.db.Model(product).Update("status", enums.ProductStatusInactive).Error)

	_, err := f.svc.Checkout(ctx, buyerID, billing())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNoValidItems, typed.Code())
	assert.NotNil(t, typed.Details())

	// Nothing was written and the cart still holds its line.
	var orderCount int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)

	reloaded, err := f.carts.FindByUserID(ctx, buyerID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Items, 1)
}

func TestCheckoutDropsUnavailableItems(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	buyerID := uuid.New()

	keep := f.seedProduct(t, 1000, enums.ProductStatusActive)
	drop := f.seedProduct(t, 9900, enums.ProductStatusActive)
	f.stage(t, buyerID, keep.ID, 1)
	f.stage(t, buyerID, drop.ID, 1)
	require.NoError(t, f.db.Model(drop).Update("status", enums.ProductStatusDraft).Error)

	resp, err := f.svc.Checkout(ctx, buyerID, billing())
	require.NoError(t, err)

	require.Len(t, resp.Order.Items, 1)
	assert.Equal(t, keep.ID, resp.Order.Items[0].ProductID)
	assert.Equal(t, int64(1000), resp.Order.SubtotalCents)

	require.Len(t, resp.DroppedItems, 1)
	assert.Equal(t, drop.ID, resp.DroppedItems[0].ProductID)

	// The dropped line leaves with the rest of the cart.
	reloaded, err := f.carts.FindByUserID(ctx, buyerID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Items)
}

func TestCheckoutSnapshotsPrices(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	buyerID := uuid.New()

	product := f.seedProduct(t, 1500, enums.ProductStatusActive)
	f.stage(t, buyerID, product.ID, 1)

	resp, err := f.svc.Checkout(ctx, buyerID, billing())
	require.NoError(t, err)

	require.NoError(t, f.db.Model(product).Update("price_cents", 9999).Error)

	stored, err := f.orders.FindByID(ctx, resp.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), stored.Items[0].PriceCents)
	assert.Equal(t, int64(1500), stored.SubtotalCents)
}

func TestCheckoutSnapshotsDeliveryURL(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	buyerID := uuid.New()

	product := f.seedProduct(t, 1500, enums.ProductStatusActive)
	demoURL := "https://cdn.example.com/demo/tool-1"
	require.NoError(t, f.db.Model(product).Update("demo_url", demoURL).Error)
	f.stage(t, buyerID, product.ID, 1)

	resp, err := f.svc.Checkout(ctx, buyerID, billing())
	require.NoError(t, err)

	stored, err := f.orders.FindByID(ctx, resp.Order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Items[0].DownloadURL)
	assert.Equal(t, demoURL, *stored.Items[0].DownloadURL)

	bare := f.seedProduct(t, 500, enums.ProductStatusActive)
	f.stage(t, buyerID, bare.ID, 1)
	resp, err = f.svc.Checkout(ctx, buyerID, billing())
	require.NoError(t, err)

	stored, err = f.orders.FindByID(ctx, resp.Order.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Items[0].DownloadURL)
}

func TestConcurrentCheckoutCreatesOneOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	buyerID := uuid.New()

	product := f.seedProduct(t, 1000, enums.ProductStatusActive)
	f.stage(t, buyerID, product.ID, 1)

	const racers = 4
	results := make(chan error, racers)
	var wg sync.WaitGroup
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func() {
			defer wg.Done()
			_, err := f.svc.Checkout(ctx, buyerID, billing())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, emptyCarts int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeEmptyCart {
			emptyCarts++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, racers-1, emptyCarts)

	var orderCount int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Equal(t, int64(1), orderCount)
}

func TestCheckoutRoundsTaxHalfUp(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	buyerID := uuid.New()

	product := f.seedProduct(t, 1005, enums.ProductStatusActive)
	f.stage(t, buyerID, product.ID, 1)

	resp, err := f.svc.Checkout(ctx, buyerID, billing())
	require.NoError(t, err)
	assert.Equal(t, int64(1005), resp.Order.SubtotalCents)
	assert.Equal(t, int64(101), resp.Order.TaxCents)
	assert.Equal(t, int64(1106), resp.Order.TotalCents)
}
