package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CreateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       string `json:"price" binding:"required"`
	Discount    string `json:"discount"`
	Stock       int    `json:"stock" binding:"gte=0"`
	CategoryID  string `json:"category_id" binding:"required"`
}

type UpdateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       string `json:"price" binding:"required"`
	Discount    string `json:"discount"`
	CategoryID  string `json:"category_id" binding:"required"`
}

type ProductResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Price           string `json:"price"`
	Discount        string `json:"discount"`
	DiscountedPrice string `json:"discounted_price"`
	Stock           int    `json:"stock"`
	CategoryID      string `json:"category_id"`
	CategoryName    string `json:"category_name,omitempty"`
}

type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ProductListFilter struct {
	CategoryID string
	Search     string
	Page       int
	Limit      int
}

// CatalogService manages categories and products. Stock is writable only at
// product creation; every later stock change goes through the inventory
// ledger.
type CatalogService interface {
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (CategoryResponse, error)
	ListCategories(ctx context.Context, search string, page, limit int) ([]CategoryResponse, int64, error)
	DeleteCategory(ctx context.Context, id string) error

	CreateProduct(ctx context.Context, distributorID uuid.UUID, req CreateProductRequest) (ProductResponse, error)
	UpdateProduct(ctx context.Context, distributorID uuid.UUID, id string, req UpdateProductRequest) (ProductResponse, error)
	DeleteProduct(ctx context.Context, distributorID uuid.UUID, id string) error
	GetProduct(ctx context.Context, id string) (ProductResponse, error)
	ListProducts(ctx context.Context, distributorID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error)
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

func NewCatalogService(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository) CatalogService {
	return &catalogService{categoryRepo: categoryRepo, productRepo: productRepo}
}

func (s *catalogService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (CategoryResponse, error) {
	category := model.ProductCategory{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.categoryRepo.Create(ctx, &category); err != nil {
		return CategoryResponse{}, fmt.Errorf("failed to create category: %w", err)
	}
	return toCategoryResponse(category), nil
}

func (s *catalogService) ListCategories(ctx context.Context, search string, page, limit int) ([]CategoryResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	categories, total, err := s.categoryRepo.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		res = append(res, toCategoryResponse(c))
	}
	return res, total, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id string) error {
	categoryID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid category id", ErrValidation)
	}
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: category %s", ErrNotFound, id)
		}
		return err
	}
	return s.categoryRepo.Delete(ctx, categoryID)
}

func (s *catalogService) CreateProduct(ctx context.Context, distributorID uuid.UUID, req CreateProductRequest) (ProductResponse, error) {
	price, discount, err := parsePriceAndDiscount(req.Price, req.Discount)
	if err != nil {
		return ProductResponse{}, err
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return ProductResponse{}, fmt.Errorf("%w: invalid category_id", ErrValidation)
	}
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		return ProductResponse{}, fmt.Errorf("%w: category %s", ErrNotFound, req.CategoryID)
	}

	product := model.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         price,
		Discount:      discount,
		Stock:         req.Stock,
		CategoryID:    categoryID,
		DistributorID: distributorID,
	}
	if err := s.productRepo.Create(ctx, &product); err != nil {
		return ProductResponse{}, fmt.Errorf("failed to create product: %w", err)
	}

	return toProductResponse(product), nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, distributorID uuid.UUID, id string, req UpdateProductRequest) (ProductResponse, error) {
	product, err := s.findOwnedProduct(ctx, distributorID, id)
	if err != nil {
		return ProductResponse{}, err
	}

	price, discount, err := parsePriceAndDiscount(req.Price, req.Discount)
	if err != nil {
		return ProductResponse{}, err
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return ProductResponse{}, fmt.Errorf("%w: invalid category_id", ErrValidation)
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = price
	product.Discount = discount
	product.CategoryID = categoryID

	if err := s.productRepo.Update(ctx, product); err != nil {
		return ProductResponse{}, fmt.Errorf("failed to update product: %w", err)
	}

	return toProductResponse(*product), nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, distributorID uuid.UUID, id string) error {
	product, err := s.findOwnedProduct(ctx, distributorID, id)
	if err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, product.ID)
}

func (s *catalogService) GetProduct(ctx context.Context, id string) (ProductResponse, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return ProductResponse{}, fmt.Errorf("%w: invalid product id", ErrValidation)
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductResponse{}, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return ProductResponse{}, fmt.Errorf("database error: %w", err)
	}
	return toProductResponse(*product), nil
}

func (s *catalogService) ListProducts(ctx context.Context, distributorID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.ProductFilter{
		DistributorID: distributorID,
		Search:        filter.Search,
		Page:          filter.Page,
		Limit:         filter.Limit,
	}
	if filter.CategoryID != "" {
		cid, err := uuid.Parse(filter.CategoryID)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: invalid category_id", ErrValidation)
		}
		repoFilter.CategoryID = &cid
	}

	products, total, err := s.productRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	res := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		res = append(res, toProductResponse(p))
	}
	return res, total, nil
}

// --- Helpers ---

func (s *catalogService) findOwnedProduct(ctx context.Context, distributorID uuid.UUID, id string) (*model.Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid product id", ErrValidation)
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if product.DistributorID != distributorID {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	return product, nil
}

func parsePriceAndDiscount(priceStr, discountStr string) (decimal.Decimal, decimal.Decimal, error) {
	price, err := decimal.NewFromString(priceStr)
	if err != nil || price.IsNegative() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: price must be a non-negative number", ErrValidation)
	}

	discount := decimal.Zero
	if discountStr != "" {
		discount, err = decimal.NewFromString(discountStr)
		if err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: invalid discount", ErrValidation)
		}
	}
	if discount.IsNegative() || discount.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: discount must be between 0 and 100", ErrValidation)
	}

	return price, discount, nil
}

func toCategoryResponse(c model.ProductCategory) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
	}
}

func toProductResponse(p model.Product) ProductResponse {
	res := ProductResponse{
		ID:              p.ID.String(),
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price.StringFixed(2),
		Discount:        p.Discount.StringFixed(2),
		DiscountedPrice: p.DiscountedPrice().StringFixed(2),
		Stock:           p.Stock,
		CategoryID:      p.CategoryID.String(),
	}
	if p.Category != nil {
		res.CategoryName = p.Category.Name
	}
	return res
}
