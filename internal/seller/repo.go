package seller

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devhaven/marketplace-backend/pkg/db/models"
	"github.com/devhaven/marketplace-backend/pkg/enums"
	"github.com/devhaven/marketplace-backend/pkg/pagination"
)

// Repository aggregates the seller-facing views over products, orders and
// reviews. It only reads committed rows, so it can run alongside checkouts.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CountProducts(ctx context.Context, sellerID uuid.UUID) (total, active int64, err error) {
	err = r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("seller_id = ?", sellerID).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}
	err = r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("seller_id = ? AND status = ?", sellerID, enums.ProductStatusActive).
		Count(&active).Error
	if err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

// CountDistinctOrders counts orders containing at least one of the seller's
// items. An order with several of the seller's lines counts once.
func (r *Repository) CountDistinctOrders(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("COUNT(DISTINCT order_items.order_id)").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.seller_id = ?", sellerID).
		Scan(&count).Error
	return count, err
}

// SumRevenueCents totals price*quantity over the seller's sold items.
func (r *Repository) SumRevenueCents(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("COALESCE(SUM(order_items.price_cents * order_items.quantity), 0)").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.seller_id = ?", sellerID).
		Scan(&total).Error
	return total, err
}

type reviewAggregate struct {
	ReviewCount   int64
	AverageRating float64
}

// SummarizeReviews aggregates ratings over all of the seller's products.
// COALESCE keeps the average at 0 for sellers with no reviews.
func (r *Repository) SummarizeReviews(ctx context.Context, sellerID uuid.UUID) (count int64, average float64, err error) {
	var agg reviewAggregate
	err = r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COUNT(*) AS review_count, COALESCE(AVG(reviews.rating), 0) AS average_rating").
		Joins("JOIN products ON products.id = reviews.product_id").
		Where("products.seller_id = ?", sellerID).
		Scan(&agg).Error
	if err != nil {
		return 0, 0, err
	}
	return agg.ReviewCount, agg.AverageRating, nil
}

// ListSoldItems is the seller's order-item feed, newest first.
func (r *Repository) ListSoldItems(ctx context.Context, sellerID uuid.UUID, page pagination.Params) ([]models.OrderItem, int64, error) {
	page = page.Normalize()

	base := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.seller_id = ?", sellerID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.OrderItem
	err := base.
		Preload("Product").
		Order("order_items.created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
