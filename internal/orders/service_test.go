package orders

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
	"github.com/devhaven/marketplace-backend/pkg/pagination"
)

type stubOrderRepo struct {
	orders   map[uuid.UUID]*models.Order
	statuses map[uuid.UUID]enums.OrderStatus
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		orders:   map[uuid.UUID]*models.Order{},
		statuses: map[uuid.UUID]enums.OrderStatus{},
	}
}

func (s *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := s.orders[id]; ok {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) ListByBuyer(ctx context.Context, buyerID uuid.UUID, page pagination.Params) ([]models.Order, int64, error) {
	var rows []models.Order
	for _, order := range s.orders {
		if order.BuyerID == buyerID {
			rows = append(rows, *order)
		}
	}
	return rows, int64(len(rows)), nil
}

func (s *stubOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	s.statuses[id] = status
	return nil
}

func (s *stubOrderRepo) add(status enums.OrderStatus) *models.Order {
	order := &models.Order{
		ID:      uuid.New(),
		BuyerID: uuid.New(),
		Status:  status,
	}
	s.orders[order.ID] = order
	return order
}

func TestUpdateStatusFollowsStateMachine(t *testing.T) {
	t.Parallel()

	repo := newStubOrderRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	order := repo.add(enums.OrderStatusConfirmed)

	updated, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: "processing"})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, updated.Status)

	updated, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCompleted, updated.Status)
	assert.Equal(t, enums.OrderStatusCompleted, repo.statuses[order.ID])

	// Completion is reached only through processing.
	confirmed := repo.add(enums.OrderStatusConfirmed)
	_, err = svc.UpdateStatus(ctx, confirmed.ID, UpdateStatusRequest{Status: "completed"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	t.Parallel()

	repo := newStubOrderRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	completed := repo.add(enums.OrderStatusCompleted)
	_, err = svc.UpdateStatus(ctx, completed.ID, UpdateStatusRequest{Status: "pending"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	pending := repo.add(enums.OrderStatusPending)
	_, err = svc.UpdateStatus(ctx, pending.ID, UpdateStatusRequest{Status: "refunded"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestUpdateStatusValidatesInput(t *testing.T) {
	t.Parallel()

	repo := newStubOrderRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.UpdateStatus(ctx, uuid.New(), UpdateStatusRequest{Status: "shipped"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.UpdateStatus(ctx, uuid.New(), UpdateStatusRequest{Status: "confirmed"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestGetForBuyerSeparatesMissingFromForeign(t *testing.T) {
	t.Parallel()

	repo := newStubOrderRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	order := repo.add(enums.OrderStatusConfirmed)

	found, err := svc.GetForBuyer(ctx, order.ID, order.BuyerID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	// Someone else's real order is forbidden, not hidden.
	_, err = svc.GetForBuyer(ctx, order.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	_, err = svc.GetForBuyer(ctx, uuid.New(), order.BuyerID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
