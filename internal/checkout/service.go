package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devhaven/marketplace-backend/internal/cart"
	"github.com/devhaven/marketplace-backend/internal/orders"
	"github.com/devhaven/marketplace-backend/internal/products"
	"github.com/devhaven/marketplace-backend/pkg/db"
	"github.com/devhaven/marketplace-backend/pkg/db/models"
	"github.com/devhaven/marketplace-backend/pkg/enums"
	pkgerrors "github.com/devhaven/marketplace-backend/pkg/errors"
	"github.com/devhaven/marketplace-backend/pkg/keygen"
	"github.com/devhaven/marketplace-backend/pkg/logger"
	"github.com/devhaven/marketplace-backend/pkg/metrics"
	"github.com/devhaven/marketplace-backend/pkg/pricing"
)

// licenseKeyAttempts bounds how often a colliding license key is regenerated
// before the whole checkout fails.
const licenseKeyAttempts = 3

// Request carries the billing details presented at checkout.
type Request struct {
	PaymentMethod  *string `json:"payment_method,omitempty"`
	BillingName    string  `json:"billing_name" validate:"required"`
	BillingEmail   string  `json:"billing_email" validate:"required,email"`
	BillingAddress *string `json:"billing_address,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

// DroppedItem names a cart line that was excluded from the order because
// its product was no longer purchasable.
type DroppedItem struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	Reason      string    `json:"reason"`
}

// Response reports the created order and anything checkout had to drop.
type Response struct {
	Order        *models.Order `json:"order"`
	DroppedItems []DroppedItem `json:"dropped_items,omitempty"`
}

// Service turns a staged cart into an immutable order in one transaction.
type Service interface {
	Checkout(ctx context.Context, buyerID uuid.UUID, req Request) (*Response, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	db       txRunner
	carts    *cart.Repository
	orders   *orders.Repository
	products *products.Repository
	logg     *logger.Logger
	metrics  *metrics.CheckoutMetrics
	now      func() time.Time
}

// ServiceParams bundles the dependencies for the checkout flow.
type ServiceParams struct {
	DB          txRunner
	CartRepo    *cart.Repository
	OrderRepo   *orders.Repository
	ProductRepo *products.Repository
	Logger      *logger.Logger
	Metrics     *metrics.CheckoutMetrics
}

// NewService constructs the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		db:       params.DB,
		carts:    params.CartRepo,
		orders:   params.OrderRepo,
		products: params.ProductRepo,
		logg:     params.Logger,
		metrics:  params.Metrics,
		now:      time.Now,
	}, nil
}

func (s *service) Checkout(ctx context.Context, buyerID uuid.UUID, req Request) (*Response, error) {
	started := s.now()

	var (
		order   *models.Order
		dropped []DroppedItem
	)

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.carts.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		// The row lock serializes concurrent checkouts of the same cart:
		// the loser resumes on an emptied cart and fails cleanly below.
		staged, err := cartRepo.FindByUserIDForUpdate(ctx, buyerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		if len(staged.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
		}

		valid, droppedNow := partitionItems(staged.Items)
		dropped = droppedNow
		if len(valid) == 0 {
			return pkgerrors.New(pkgerrors.CodeNoValidItems, "no valid items in cart").
				WithDetails(dropped)
		}

		lines := make([]pricing.LineItem, 0, len(valid))
		for _, item := range valid {
			lines = append(lines, pricing.LineItem{
				UnitPriceCents: item.Product.PriceCents,
				Quantity:       item.Quantity,
			})
		}
		totals := pricing.Quote(lines)

		order, err = s.insertOrder(ctx, tx, orderRepo, buyerID, req, valid, totals)
		if err != nil {
			return err
		}

		for _, item := range valid {
			if err := productRepo.IncrementDownloadCount(ctx, item.ProductID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record downloads")
			}
		}

		if err := cartRepo.Clear(ctx, staged.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}
		return nil
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.ObserveFailure(string(failureCode(err)), s.now().Sub(started))
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveSuccess(s.now().Sub(started))
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_number": order.OrderNumber,
		"total_cents":  order.TotalCents,
		"items":        len(order.Items),
		"dropped":      len(dropped),
	}), "checkout completed")

	return &Response{Order: order, DroppedItems: dropped}, nil
}

// insertOrder creates the order plus its items, regenerating identifiers on
// the rare license key or order number collision. Each attempt runs under a
// savepoint so a failed insert does not poison the surrounding transaction.
func (s *service) insertOrder(
	ctx context.Context,
	tx *gorm.DB,
	orderRepo *orders.Repository,
	buyerID uuid.UUID,
	req Request,
	valid []models.CartItem,
	totals pricing.Totals,
) (*models.Order, error) {
	var lastErr error
	for attempt := 0; attempt < licenseKeyAttempts; attempt++ {
		candidate := s.buildOrder(buyerID, req, valid, totals)

		tx.SavePoint("order_insert")
		created, err := orderRepo.Create(ctx, candidate)
		if err == nil {
			return created, nil
		}
		if !db.IsUniqueViolation(err, "idx_order_items_license_key") &&
			!db.IsUniqueViolation(err, "idx_orders_order_number") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		tx.RollbackTo("order_insert")
		lastErr = err
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, lastErr, "allocate order identifiers")
}

func (s *service) buildOrder(buyerID uuid.UUID, req Request, valid []models.CartItem, totals pricing.Totals) *models.Order {
	items := make([]models.OrderItem, 0, len(valid))
	for _, item := range valid {
		// Snapshot the delivery URL alongside the price; later edits to the
		// product must not change what an existing order hands out.
		items = append(items, models.OrderItem{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			PriceCents:  item.Product.PriceCents,
			LicenseKey:  keygen.LicenseKey(),
			DownloadURL: item.Product.DemoURL,
		})
	}

	return &models.Order{
		BuyerID:        buyerID,
		OrderNumber:    keygen.OrderNumber(s.now()),
		Status:         enums.OrderStatusConfirmed,
		SubtotalCents:  totals.SubtotalCents,
		TaxCents:       totals.TaxCents,
		DiscountCents:  totals.DiscountCents,
		TotalCents:     totals.TotalCents,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  enums.PaymentStatusCompleted,
		BillingName:    req.BillingName,
		BillingEmail:   req.BillingEmail,
		BillingAddress: req.BillingAddress,
		Notes:          req.Notes,
		Items:          items,
	}
}

// partitionItems separates purchasable lines from ones whose product has
// gone missing or inactive since it was staged.
func partitionItems(items []models.CartItem) (valid []models.CartItem, dropped []DroppedItem) {
	for _, item := range items {
		switch {
		case item.Product == nil:
			dropped = append(dropped, DroppedItem{
				ProductID: item.ProductID,
				Reason:    "product no longer exists",
			})
		case item.Product.Status != enums.ProductStatusActive:
			dropped = append(dropped, DroppedItem{
				ProductID:   item.ProductID,
				ProductName: item.Product.Name,
				Reason:      "product is not available",
			})
		default:
			valid = append(valid, item)
		}
	}
	return valid, dropped
}

func failureCode(err error) pkgerrors.Code {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Code()
	}
	return pkgerrors.CodeInternal
}
