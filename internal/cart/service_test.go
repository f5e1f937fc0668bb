package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/devhaven/marketplace-backend/pkg/db/models"
	"github.com/devhaven/marketplace-backend/pkg/enums"
	pkgerrors "github.com/devhaven/marketplace-backend/pkg/errors"
)

type testProductRepo struct {
	db *gorm.DB
}

func (r *testProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func TestAddItemValidatesProduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo, &testProductRepo{db: db})
	require.NoError(t, err)
	ctx := context.Background()
	userID := uuid.New()

	active := seedProduct(t, db, 1000, enums.ProductStatusActive)
	inactive := seedProduct(t, db, 1000, enums.ProductStatusInactive)

	_, err = svc.AddItem(ctx, userID, AddItemRequest{ProductID: inactive.ID, Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeProductUnavailable, pkgerrors.As(err).Code())

	_, err = svc.AddItem(ctx, userID, AddItemRequest{ProductID: uuid.New(), Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = svc.AddItem(ctx, userID, AddItemRequest{ProductID: active.ID, Quantity: 0})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	dto, err := svc.AddItem(ctx, userID, AddItemRequest{ProductID: active.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 2, dto.Items[0].Quantity)
}

func TestCartTotalsPreview(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo, &testProductRepo{db: db})
	require.NoError(t, err)
	ctx := context.Background()
	userID := uuid.New()

	product := seedProduct(t, db, 1000, enums.ProductStatusActive)
	_, err = svc.AddItem(ctx, userID, AddItemRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	dto, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 20.00, dto.Subtotal)
	assert.Equal(t, 2.00, dto.Tax)
	assert.Equal(t, 22.00, dto.Total)
}

func TestUpdateAndRemoveItems(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo, &testProductRepo{db: db})
	require.NoError(t, err)
	ctx := context.Background()
	userID := uuid.New()

	product := seedProduct(t, db, 1000, enums.ProductStatusActive)
	staged, err := svc.AddItem(ctx, userID, AddItemRequest{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, staged.Items, 1)
	require.NotEqual(t, uuid.Nil, staged.Items[0].ID)
	itemID := staged.Items[0].ID

	dto, err := svc.UpdateItem(ctx, userID, itemID, UpdateItemRequest{Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, dto.Items[0].Quantity)

	_, err = svc.UpdateItem(ctx, userID, uuid.New(), UpdateItemRequest{Quantity: 5})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	// A stranger supplying the real line id hits their own empty cart.
	_, err = svc.UpdateItem(ctx, uuid.New(), itemID, UpdateItemRequest{Quantity: 5})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	dto, err = svc.RemoveItem(ctx, userID, itemID)
	require.NoError(t, err)
	assert.Empty(t, dto.Items)

	_, err = svc.RemoveItem(ctx, userID, itemID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestUnavailableItemsAreFlaggedNotPriced(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo, &testProductRepo{db: db})
	require.NoError(t, err)
	ctx := context.Background()
	userID := uuid.New()

	product := seedProduct(t, db, 1000, enums.ProductStatusActive)
	_, err = svc.AddItem(ctx, userID, AddItemRequest{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	// The seller pulls the listing after it was staged.
	require.NoError(t, db.Model(product).Update("status", enums.ProductStatusInactive).Error)

	dto, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.True(t, dto.Items[0].Unavailable)
	assert.Equal(t, 0.00, dto.Subtotal)
	assert.Equal(t, 0.00, dto.Total)
}
