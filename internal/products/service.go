package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/devhaven/marketplace-backend/internal/categories"
	"github.com/devhaven/marketplace-backend/pkg/db"
	"github.com/devhaven/marketplace-backend/pkg/db/models"
	"github.com/devhaven/marketplace-backend/pkg/enums"
	pkgerrors "github.com/devhaven/marketplace-backend/pkg/errors"
	"github.com/devhaven/marketplace-backend/pkg/pagination"
	"github.com/devhaven/marketplace-backend/pkg/pricing"
)

// CreateProductRequest carries the payload for a new listing.
type CreateProductRequest struct {
	Name             string     `json:"name" validate:"required"`
	Description      *string    `json:"description,omitempty"`
	ShortDescription *string    `json:"short_description,omitempty"`
	Price            float64    `json:"price" validate:"gte=0"`
	OriginalPrice    *float64   `json:"original_price,omitempty" validate:"omitempty,gte=0"`
	CategoryID       *uuid.UUID `json:"category_id,omitempty"`
	ProductType      string     `json:"product_type,omitempty"`
	LicenseType      string     `json:"license_type,omitempty"`
	Status           string     `json:"status,omitempty"`
	ImageURL         *string    `json:"image_url,omitempty" validate:"omitempty,url"`
	Images           []string   `json:"images,omitempty"`
	Version          *string    `json:"version,omitempty"`
	DemoURL          *string    `json:"demo_url,omitempty" validate:"omitempty,url"`
	DocumentationURL *string    `json:"documentation_url,omitempty" validate:"omitempty,url"`
	Features         []string   `json:"features,omitempty"`
	Requirements     *string    `json:"requirements,omitempty"`
}

// UpdateProductRequest carries the mutable listing fields.
type UpdateProductRequest struct {
	Name             *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Description      *string  `json:"description,omitempty"`
	ShortDescription *string  `json:"short_description,omitempty"`
	Price            *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Status           *string  `json:"status,omitempty"`
	ImageURL         *string  `json:"image_url,omitempty" validate:"omitempty,url"`
	Images           []string `json:"images,omitempty"`
	Version          *string  `json:"version,omitempty"`
	Features         []string `json:"features,omitempty"`
	Requirements     *string  `json:"requirements,omitempty"`
}

// ListRequest narrows the public catalog listing.
type ListRequest struct {
	CategorySlug string
	Search       string
	Sort         string
	Featured     *bool
	Page         pagination.Params
}

// ListResponse is one catalog page plus its pagination metadata.
type ListResponse struct {
	Products []models.Product `json:"products"`
	Meta     pagination.Meta  `json:"meta"`
}

// Service exposes catalog behavior for buyers and sellers.
type Service interface {
	Create(ctx context.Context, sellerID uuid.UUID, req CreateProductRequest) (*models.Product, error)
	Update(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, productID uuid.UUID, req UpdateProductRequest) (*models.Product, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, page pagination.Params) (*ListResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	Delist(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, productID uuid.UUID) error
}

type productRepository interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Save(ctx context.Context, product *models.Product) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	List(ctx context.Context, filter ListFilter, page pagination.Params) ([]models.Product, int64, error)
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
}

type categoryLoader interface {
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

type service struct {
	repo       productRepository
	categories categoryLoader
}

// NewService constructs the catalog service.
func NewService(repo productRepository, categoryRepo categoryLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	if categoryRepo == nil {
		return nil, fmt.Errorf("category repository is required")
	}
	return &service{repo: repo, categories: categoryRepo}, nil
}

func (s *service) Create(ctx context.Context, sellerID uuid.UUID, req CreateProductRequest) (*models.Product, error) {
	if req.Price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	productType := enums.ProductTypeSoftware
	if req.ProductType != "" {
		parsed, err := enums.ParseProductType(req.ProductType)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product type")
		}
		productType = parsed
	}

	licenseType := enums.LicenseTypePerpetual
	if req.LicenseType != "" {
		parsed, err := enums.ParseLicenseType(req.LicenseType)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid license type")
		}
		licenseType = parsed
	}

	status := enums.ProductStatusDraft
	if req.Status != "" {
		parsed, err := enums.ParseProductStatus(req.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
		}
		status = parsed
	}

	if req.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "category not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
		}
	}

	var originalCents *int64
	if req.OriginalPrice != nil {
		cents := pricing.ToCents(*req.OriginalPrice)
		originalCents = &cents
	}

	product := &models.Product{
		SellerID:           sellerID,
		CategoryID:         req.CategoryID,
		Name:               req.Name,
		Slug:               uniqueSlug(req.Name),
		Description:        req.Description,
		ShortDescription:   req.ShortDescription,
		PriceCents:         pricing.ToCents(req.Price),
		OriginalPriceCents: originalCents,
		ProductType:        productType,
		LicenseType:        licenseType,
		Status:             status,
		ImageURL:           req.ImageURL,
		Images:             pq.StringArray(req.Images),
		Version:            req.Version,
		DemoURL:            req.DemoURL,
		DocumentationURL:   req.DocumentationURL,
		Features:           pq.StringArray(req.Features),
		Requirements:       req.Requirements,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_products_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a listing with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, productID uuid.UUID, req UpdateProductRequest) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	if product.SellerID != actorID && actorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not the listing owner")
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.ShortDescription != nil {
		product.ShortDescription = req.ShortDescription
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		product.PriceCents = pricing.ToCents(*req.Price)
	}
	if req.Status != nil {
		parsed, err := enums.ParseProductStatus(*req.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
		}
		product.Status = parsed
	}
	if req.ImageURL != nil {
		product.ImageURL = req.ImageURL
	}
	if req.Images != nil {
		product.Images = pq.StringArray(req.Images)
	}
	if req.Version != nil {
		product.Version = req.Version
	}
	if req.Features != nil {
		product.Features = pq.StringArray(req.Features)
	}
	if req.Requirements != nil {
		product.Requirements = req.Requirements
	}

	saved, err := s.repo.Save(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save product")
	}
	return saved, nil
}

func (s *service) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	filter := ListFilter{
		Search:   req.Search,
		Sort:     req.Sort,
		Featured: req.Featured,
	}

	// Public catalog surfaces active listings only.
	active := enums.ProductStatusActive
	filter.Status = &active

	if req.CategorySlug != "" {
		category, err := s.categories.FindBySlug(ctx, req.CategorySlug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
		}
		filter.CategoryID = &category.ID
	}

	rows, total, err := s.repo.List(ctx, filter, req.Page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return &ListResponse{
		Products: rows,
		Meta:     pagination.MetaFor(req.Page, total),
	}, nil
}

func (s *service) ListBySeller(ctx context.Context, sellerID uuid.UUID, page pagination.Params) (*ListResponse, error) {
	rows, total, err := s.repo.List(ctx, ListFilter{SellerID: &sellerID}, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list seller products")
	}
	return &ListResponse{
		Products: rows,
		Meta:     pagination.MetaFor(page, total),
	}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	// Best effort; a failed bump never blocks the read.
	_ = s.repo.IncrementViewCount(ctx, id)
	product.ViewCount++

	return product, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	_ = s.repo.IncrementViewCount(ctx, product.ID)
	product.ViewCount++

	return product, nil
}

// Delist retires a listing instead of deleting the row, so order items
// keep a product to point at.
func (s *service) Delist(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, productID uuid.UUID) error {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	if product.SellerID != actorID && actorRole != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not the listing owner")
	}

	product.Status = enums.ProductStatusInactive
	if _, err := s.repo.Save(ctx, product); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delist product")
	}
	return nil
}

func uniqueSlug(name string) string {
	base := categories.Slugify(name)
	if base == "" {
		base = "listing"
	}
	return base + "-" + uuid.NewString()[:8]
}
