package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devhaven/marketplace-backend/pkg/db"
	"github.com/devhaven/marketplace-backend/pkg/db/models"
	"github.com/devhaven/marketplace-backend/pkg/enums"
	pkgerrors "github.com/devhaven/marketplace-backend/pkg/errors"
	"github.com/devhaven/marketplace-backend/pkg/pagination"
)

// CreateRequest is the payload for posting a review.
type CreateRequest struct {
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Title   *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=4000"`
}

// RespondRequest carries a seller's public reply to a review.
type RespondRequest struct {
	Response string `json:"response" validate:"required,max=4000"`
}

// ListResponse is one page of a product's reviews plus the aggregate
// rating.
type ListResponse struct {
	Reviews []models.Review `json:"reviews"`
	Summary RatingSummary   `json:"summary"`
	Meta    pagination.Meta `json:"meta"`
}

// Service manages product reviews.
type Service interface {
	Create(ctx context.Context, productID, userID uuid.UUID, req CreateRequest) (*models.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, page pagination.Params) (*ListResponse, error)
	MarkHelpful(ctx context.Context, reviewID uuid.UUID) error
	Respond(ctx context.Context, reviewID, sellerID uuid.UUID, req RespondRequest) (*models.Review, error)
}

type reviewRepository interface {
	Create(ctx context.Context, review *models.Review) (*models.Review, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, page pagination.Params) ([]models.Review, int64, error)
	IncrementHelpful(ctx context.Context, id uuid.UUID) (int64, error)
	SetSellerResponse(ctx context.Context, id uuid.UUID, response string) error
	SummarizeProduct(ctx context.Context, productID uuid.UUID) (*RatingSummary, error)
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type purchaseChecker interface {
	HasPurchased(ctx context.Context, buyerID, productID uuid.UUID) (bool, error)
}

type service struct {
	repo      reviewRepository
	products  productLoader
	purchases purchaseChecker
}

// ServiceParams collects the review service dependencies.
type ServiceParams struct {
	Repo      reviewRepository
	Products  productLoader
	Purchases purchaseChecker
}

// NewService constructs the review service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("review repository is required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product loader is required")
	}
	if params.Purchases == nil {
		return nil, fmt.Errorf("purchase checker is required")
	}
	return &service{
		repo:      params.Repo,
		products:  params.Products,
		purchases: params.Purchases,
	}, nil
}

func (s *service) Create(ctx context.Context, productID, userID uuid.UUID, req CreateRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if product.Status != enums.ProductStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeProductUnavailable, "product is not available")
	}

	// Stamped once here and never recomputed, so the badge stays stable
	// even if the backing order is later cancelled.
	verified, err := s.purchases.HasPurchased(ctx, userID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check purchase history")
	}

	review := &models.Review{
		ProductID:          productID,
		UserID:             userID,
		Rating:             req.Rating,
		Title:              req.Title,
		Comment:            req.Comment,
		IsVerifiedPurchase: verified,
	}
	if _, err := s.repo.Create(ctx, review); err != nil {
		if db.IsUniqueViolation(err, "idx_reviews_product_user") {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicateReview, "you have already reviewed this product")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
	}
	return review, nil
}

func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID, page pagination.Params) (*ListResponse, error) {
	rows, total, err := s.repo.ListByProduct(ctx, productID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}
	summary, err := s.repo.SummarizeProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summarize reviews")
	}
	return &ListResponse{
		Reviews: rows,
		Summary: *summary,
		Meta:    pagination.MetaFor(page, total),
	}, nil
}

func (s *service) MarkHelpful(ctx context.Context, reviewID uuid.UUID) error {
	affected, err := s.repo.IncrementHelpful(ctx, reviewID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark review helpful")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}
	return nil
}

func (s *service) Respond(ctx context.Context, reviewID, sellerID uuid.UUID, req RespondRequest) (*models.Review, error) {
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load review")
	}

	product, err := s.products.FindByID(ctx, review.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load reviewed product")
	}
	if product.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the product's seller can respond")
	}

	if err := s.repo.SetSellerResponse(ctx, reviewID, req.Response); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save seller response")
	}
	review.SellerResponse = &req.Response
	return review, nil
}
