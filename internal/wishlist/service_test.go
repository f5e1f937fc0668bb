package wishlist

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/devhaven/marketplace-backend/internal/products"
	"github.com/devhaven/marketplace-backend/pkg/db/models"
	"github.com/devhaven/marketplace-backend/pkg/enums"
	pkgerrors "github.com/devhaven/marketplace-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:wishlist_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.WishlistItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), products.NewRepository(db))
	require.NoError(t, err)
	return svc
}

func seedProduct(t *testing.T, db *gorm.DB) *models.Product {
	t.Helper()
	product := &models.Product{
		SellerID:   uuid.New(),
		Name:       "plugin",
		Slug:       "plugin-" + uuid.NewString()[:8],
		PriceCents: 999,
		Status:     enums.ProductStatusActive,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestAddListRemove(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	first := seedProduct(t, db)
	second := seedProduct(t, db)

	_, err := svc.Add(ctx, userID, AddRequest{ProductID: first.ID})
	require.NoError(t, err)
	_, err = svc.Add(ctx, userID, AddRequest{ProductID: second.ID})
	require.NoError(t, err)

	rows, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].Product)

	require.NoError(t, svc.Remove(ctx, userID, first.ID))
	rows, err = svc.List(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, second.ID, rows[0].ProductID)
}

func TestAddRejectsDuplicateAndUnknownProduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	product := seedProduct(t, db)
	_, err := svc.Add(ctx, userID, AddRequest{ProductID: product.ID})
	require.NoError(t, err)

	_, err = svc.Add(ctx, userID, AddRequest{ProductID: product.ID})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	_, err = svc.Add(ctx, userID, AddRequest{ProductID: uuid.New()})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	// The same product on another user's list is fine.
	_, err = svc.Add(ctx, uuid.New(), AddRequest{ProductID: product.ID})
	require.NoError(t, err)
}

func TestRemoveUnknownItem(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newService(t, db)

	err := svc.Remove(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
