package seller

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/devhaven/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/devhaven/marketplace-backend/pkg/errors"
	"github.com/devhaven/marketplace-backend/pkg/pagination"
	"github.com/devhaven/marketplace-backend/pkg/pricing"
)

// Analytics is the seller dashboard snapshot. Every field is zero-valued
// for a seller with no products or sales.
type Analytics struct {
	TotalProducts  int64   `json:"total_products"`
	ActiveProducts int64   `json:"active_products"`
	TotalOrders    int64   `json:"total_orders"`
	TotalRevenue   float64 `json:"total_revenue"`
	AverageRating  float64 `json:"average_rating"`
	TotalReviews   int64   `json:"total_reviews"`
}

// SalesResponse is one page of the seller's order-item feed.
type SalesResponse struct {
	Items []models.OrderItem `json:"items"`
	Meta  pagination.Meta    `json:"meta"`
}

// Service exposes the seller-facing read surface.
type Service interface {
	Analytics(ctx context.Context, sellerID uuid.UUID) (*Analytics, error)
	ListSales(ctx context.Context, sellerID uuid.UUID, page pagination.Params) (*SalesResponse, error)
}

type sellerRepository interface {
	CountProducts(ctx context.Context, sellerID uuid.UUID) (total, active int64, err error)
	CountDistinctOrders(ctx context.Context, sellerID uuid.UUID) (int64, error)
	SumRevenueCents(ctx context.Context, sellerID uuid.UUID) (int64, error)
	SummarizeReviews(ctx context.Context, sellerID uuid.UUID) (count int64, average float64, err error)
	ListSoldItems(ctx context.Context, sellerID uuid.UUID, page pagination.Params) ([]models.OrderItem, int64, error)
}

type service struct {
	repo sellerRepository
}

// NewService constructs the seller service.
func NewService(repo sellerRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("seller repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Analytics(ctx context.Context, sellerID uuid.UUID) (*Analytics, error) {
	total, active, err := s.repo.CountProducts(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count products")
	}
	orderCount, err := s.repo.CountDistinctOrders(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count orders")
	}
	revenueCents, err := s.repo.SumRevenueCents(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum revenue")
	}
	reviewCount, averageRating, err := s.repo.SummarizeReviews(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summarize reviews")
	}

	return &Analytics{
		TotalProducts:  total,
		ActiveProducts: active,
		TotalOrders:    orderCount,
		TotalRevenue:   pricing.ToFloat(revenueCents),
		AverageRating:  averageRating,
		TotalReviews:   reviewCount,
	}, nil
}

func (s *service) ListSales(ctx context.Context, sellerID uuid.UUID, page pagination.Params) (*SalesResponse, error) {
	rows, total, err := s.repo.ListSoldItems(ctx, sellerID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sold items")
	}
	return &SalesResponse{
		Items: rows,
		Meta:  pagination.MetaFor(page, total),
	}, nil
}
