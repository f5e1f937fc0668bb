package products

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/devhaven/marketplace-backend/pkg/db/models"
	"github.com/devhaven/marketplace-backend/pkg/enums"
	"github.com/devhaven/marketplace-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		// SQLite cannot take concurrent writers on a shared-cache DB.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedSeller(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Email:        "seller_" + uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Name:         "Seller",
		Role:         enums.UserRoleSeller,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, sellerID uuid.UUID, name string, priceCents int64, status enums.ProductStatus) *models.Product {
	t.Helper()
	product := &models.Product{
		SellerID:   sellerID,
		Name:       name,
		Slug:       name + "-" + uuid.NewString()[:8],
		PriceCents: priceCents,
		Status:     status,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestListFiltersByStatusAndSeller(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	sellerA := seedSeller(t, db)
	sellerB := seedSeller(t, db)

	seedProduct(t, db, sellerA.ID, "editor", 1000, enums.ProductStatusActive)
	seedProduct(t, db, sellerA.ID, "compiler", 2000, enums.ProductStatusDraft)
	seedProduct(t, db, sellerB.ID, "linter", 3000, enums.ProductStatusActive)

	active := enums.ProductStatusActive
	rows, total, err := repo.List(ctx, ListFilter{Status: &active}, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, rows, 2)

	rows, total, err = repo.List(ctx, ListFilter{SellerID: &sellerA.ID}, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, row := range rows {
		assert.Equal(t, sellerA.ID, row.SellerID)
	}
}

func TestListSearchAndSort(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seller := seedSeller(t, db)
	seedProduct(t, db, seller.ID, "terraform toolkit", 5000, enums.ProductStatusActive)
	seedProduct(t, db, seller.ID, "deploy helper", 1000, enums.ProductStatusActive)
	seedProduct(t, db, seller.ID, "terraform modules", 3000, enums.ProductStatusActive)

	rows, total, err := repo.List(ctx, ListFilter{Search: "terraform", Sort: "price_asc"}, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(3000), rows[0].PriceCents)
	assert.Equal(t, int64(5000), rows[1].PriceCents)
}

func TestListPaginates(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seller := seedSeller(t, db)
	for i := 0; i < 5; i++ {
		seedProduct(t, db, seller.ID, "tool", int64(100*(i+1)), enums.ProductStatusActive)
	}

	rows, total, err := repo.List(ctx, ListFilter{Sort: "price_asc"}, pagination.Params{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(300), rows[0].PriceCents)
}

func TestIncrementCountersAreAtomic(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seller := seedSeller(t, db)
	product := seedProduct(t, db, seller.ID, "editor", 1000, enums.ProductStatusActive)

	const workers = 10
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_ = repo.IncrementViewCount(ctx, product.ID)
		}()
	}
	wg.Wait()

	require.NoError(t, repo.IncrementDownloadCount(ctx, product.ID, 3))

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, int64(workers), reloaded.ViewCount)
	assert.Equal(t, int64(3), reloaded.DownloadCount)
}

func TestFindBySlugPreloadsSeller(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seller := seedSeller(t, db)
	product := seedProduct(t, db, seller.ID, "editor", 1000, enums.ProductStatusActive)

	found, err := repo.FindBySlug(ctx, product.Slug)
	require.NoError(t, err)
	require.NotNil(t, found.Seller)
	assert.Equal(t, seller.ID, found.Seller.ID)
}
