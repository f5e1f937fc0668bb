package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/devhaven/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/devhaven/marketplace-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:categories_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&models.Category{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func TestCreateAndGetBySlug(t *testing.T) {
	t.Parallel()
	svc := newService(t, newTestDB(t))
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateCategoryRequest{Name: "Developer Tools"})
	require.NoError(t, err)
	assert.Equal(t, "developer-tools", created.Slug)

	got, err := svc.GetBySlug(ctx, "developer-tools")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	t.Parallel()
	svc := newService(t, newTestDB(t))
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateCategoryRequest{Name: "Security"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateCategoryRequest{Name: "Security"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestCreateRejectsUnknownParent(t *testing.T) {
	t.Parallel()
	svc := newService(t, newTestDB(t))

	parentID := uuid.New()
	_, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "Child", ParentID: &parentID})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestGetBySlugNotFound(t *testing.T) {
	t.Parallel()
	svc := newService(t, newTestDB(t))

	_, err := svc.GetBySlug(context.Background(), "missing")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListOrdersByName(t *testing.T) {
	t.Parallel()
	svc := newService(t, newTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"Plugins", "Analytics", "Monitoring"} {
		_, err := svc.Create(ctx, CreateCategoryRequest{Name: name})
		require.NoError(t, err)
	}

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Analytics", rows[0].Name)
	assert.Equal(t, "Plugins", rows[2].Name)
}

func TestSlugify(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a-b-c", Slugify("  A & b / C "))
	assert.Equal(t, "ci-cd", Slugify("CI/CD"))
}
