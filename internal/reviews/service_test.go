package reviews

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/devhaven/marketplace-backend/internal/orders"
	"github.com/devhaven/marketplace-backend/internal/products"
	"github.com/devhaven/marketplace-backend/pkg/db/models"
	"github.com/devhaven/marketplace-backend/pkg/enums"
	pkgerrors "github.com/devhaven/marketplace-backend/pkg/errors"
	"github.com/devhaven/marketplace-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:reviews_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Product{},
		&models.Order{}, &models.OrderItem{},
		&models.Review{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:      NewRepository(db),
		Products:  products.NewRepository(db),
		Purchases: orders.NewRepository(db),
	})
	require.NoError(t, err)
	return svc
}

func seedProduct(t *testing.T, db *gorm.DB, sellerID uuid.UUID, status enums.ProductStatus) *models.Product {
	t.Helper()
	product := &models.Product{
		SellerID:   sellerID,
		Name:       "asset pack",
		Slug:       "asset-pack-" + uuid.NewString()[:8],
		PriceCents: 1999,
		Status:     status,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedPurchase(t *testing.T, db *gorm.DB, buyerID, productID uuid.UUID) {
	t.Helper()
	order := &models.Order{
		BuyerID:       buyerID,
		OrderNumber:   "ORD-20250806120000-" + uuid.NewString()[:6],
		Status:        enums.OrderStatusConfirmed,
		PaymentStatus: enums.PaymentStatusCompleted,
		SubtotalCents: 1999,
		TaxCents:      200,
		TotalCents:    2199,
		BillingName:   "Buyer",
		BillingEmail:  "buyer@example.com",
	}
	require.NoError(t, db.Create(order).Error)
	item := &models.OrderItem{
		OrderID:    order.ID,
		ProductID:  productID,
		Quantity:   1,
		PriceCents: 1999,
		LicenseKey: "LIC-" + uuid.NewString()[:8] + "-TEST0000",
	}
	require.NoError(t, db.Create(item).Error)
}

func TestCreateStampsVerifiedPurchase(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newService(t, db)
	ctx := context.Background()

	product := seedProduct(t, db, uuid.New(), enums.ProductStatusActive)
	buyerID := uuid.New()
	seedPurchase(t, db, buyerID, product.ID)

	review, err := svc.Create(ctx, product.ID, buyerID, CreateRequest{Rating: 5})
	require.NoError(t, err)
	assert.True(t, review.IsVerifiedPurchase)

	// A reviewer with no purchase gets the unverified flag.
	other, err := svc.Create(ctx, product.ID, uuid.New(), CreateRequest{Rating: 3})
	require.NoError(t, err)
	assert.False(t, other.IsVerifiedPurchase)
}

func TestCreateRejectsDuplicate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newService(t, db)
	ctx := context.Background()

	product := seedProduct(t, db, uuid.New(), enums.ProductStatusActive)
	userID := uuid.New()

	_, err := svc.Create(ctx, product.ID, userID, CreateRequest{Rating: 4})
	require.NoError(t, err)

	_, err = svc.Create(ctx, product.ID, userID, CreateRequest{Rating: 2})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDuplicateReview, pkgerrors.As(err).Code())
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newService(t, db)
	ctx := context.Background()

	product := seedProduct(t, db, uuid.New(), enums.ProductStatusActive)
	inactive := seedProduct(t, db, uuid.New(), enums.ProductStatusInactive)

	_, err := svc.Create(ctx, product.ID, uuid.New(), CreateRequest{Rating: 0})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Create(ctx, product.ID, uuid.New(), CreateRequest{Rating: 6})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Create(ctx, uuid.New(), uuid.New(), CreateRequest{Rating: 4})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = svc.Create(ctx, inactive.ID, uuid.New(), CreateRequest{Rating: 4})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeProductUnavailable, pkgerrors.As(err).Code())
}

func TestListByProductSummarizes(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newService(t, db)
	ctx := context.Background()

	product := seedProduct(t, db, uuid.New(), enums.ProductStatusActive)
	for _, rating := range []int{5, 4, 3} {
		_, err := svc.Create(ctx, product.ID, uuid.New(), CreateRequest{Rating: rating})
		require.NoError(t, err)
	}

	resp, err := svc.ListByProduct(ctx, product.ID, pagination.Params{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Reviews, 2)
	assert.Equal(t, int64(3), resp.Meta.TotalItems)
	assert.Equal(t, int64(3), resp.Summary.ReviewCount)
	assert.InDelta(t, 4.0, resp.Summary.AverageRating, 0.001)
}

func TestMarkHelpful(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newService(t, db)
	ctx := context.Background()

	product := seedProduct(t, db, uuid.New(), enums.ProductStatusActive)
	review, err := svc.Create(ctx, product.ID, uuid.New(), CreateRequest{Rating: 5})
	require.NoError(t, err)

	require.NoError(t, svc.MarkHelpful(ctx, review.ID))
	require.NoError(t, svc.MarkHelpful(ctx, review.ID))

	var fresh models.Review
	require.NoError(t, db.First(&fresh, "id = ?", review.ID).Error)
	assert.Equal(t, int64(2), fresh.HelpfulCount)

	err = svc.MarkHelpful(ctx, uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestRespondRequiresOwningSeller(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newService(t, db)
	ctx := context.Background()

	sellerID := uuid.New()
	product := seedProduct(t, db, sellerID, enums.ProductStatusActive)
	review, err := svc.Create(ctx, product.ID, uuid.New(), CreateRequest{Rating: 2})
	require.NoError(t, err)

	_, err = svc.Respond(ctx, review.ID, uuid.New(), RespondRequest{Response: "sorry"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	updated, err := svc.Respond(ctx, review.ID, sellerID, RespondRequest{Response: "thanks, a fix ships next week"})
	require.NoError(t, err)
	require.NotNil(t, updated.SellerResponse)
	assert.Equal(t, "thanks, a fix ships next week", *updated.SellerResponse)
}
