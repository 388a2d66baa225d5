package service

import (
	"context"
	"fmt"
	"strings"

	"nexus-store/internal/model"
	"nexus-store/internal/repository"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	logger       zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	logger zerolog.Logger,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		logger:       logger.With().Str("service", "product").Logger(),
	}
}

var (
	noSearchResultSuggestions = []string{
		"Check your spelling for typing errors",
		"Try searching with short and simple keywords",
	}
	noFilterResultSuggestions = []string{
		"Try adjusting your price range",
		"Try a different category",
		"Remove some filters to see more products",
	}
)

func filtersApplied(f model.ProductFilter) model.FiltersApplied {
	return model.FiltersApplied{
		Search:     strings.TrimSpace(f.Query) != "",
		Category:   f.CategoryID != nil || len(f.CategoryIDs) > 0,
		PriceRange: f.MinPrice != nil || f.MaxPrice != nil,
		Sorting:    f.Sort != "",
	}
}

// List retrieves one page of active products.
func (s *productService) List(ctx context.Context, f model.ProductFilter) (*model.ProductPage, error) {
	f.Normalise()

	products, total, err := s.productRepo.List(ctx, f)
	if err != nil {
		s.logger.Error().Err(err).
			Int("page", f.Page).
			Int("page_size", f.PageSize).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	page := model.NewProductPage(products, total, f)
	page.FiltersApplied = filtersApplied(f)

	s.logger.Debug().
		Int("count", len(products)).
		Int("total", total).
		Int("page", f.Page).
		Msg("retrieved products")

	return page, nil
}

func (s *productService) Search(ctx context.Context, f model.ProductFilter) (*model.ProductSearchResult, error) {
	page, err := s.List(ctx, f)
	if err != nil {
		return nil, err
	}

	applied := page.FiltersApplied
	otherFilters := applied.Category || applied.PriceRange || applied.Sorting

	result := &model.ProductSearchResult{
		ProductPage:     *page,
		SearchPerformed: applied.Search || otherFilters,
	}
	if applied.Search {
		result.SearchQuery = strings.TrimSpace(f.Query)
	}

	if page.TotalCount == 0 {
		switch {
		case applied.Search:
			result.Message = fmt.Sprintf(`There are no results for "%s".`, result.SearchQuery)
			result.Suggestions = noSearchResultSuggestions
		case otherFilters:
			result.Message = "No products match your filters."
			result.Suggestions = noFilterResultSuggestions
		}
	}

	return result, nil
}

func (s *productService) ListByCategory(ctx context.Context, categoryID int64, f model.ProductFilter) (*model.ProductPage, error) {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil || !category.IsActive {
		return nil, model.ErrCategoryNotFound
	}

	ids, err := s.categoryRepo.SubtreeIDs(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load category subtree: %w", err)
	}

	f.CategoryID = nil
	f.CategoryIDs = ids
	return s.List(ctx, f)
}

func (s *productService) Featured(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.Featured(ctx, model.FeaturedLimit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get featured products")
		return nil, fmt.Errorf("failed to get featured products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single active product by ID.
func (s *productService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil || !product.IsActive {
		s.logger.Debug().Int64("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

func (s *productService) Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	if req.Price.IsNegative() {
		return nil, model.ErrInvalidPrice
	}
	if req.StockQuantity < 0 {
		return nil, model.ErrInvalidStock
	}

	product := &model.Product{
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Price:         req.Price,
		CategoryID:    req.CategoryID,
		StockQuantity: req.StockQuantity,
		SKU:           strings.TrimSpace(req.SKU),
		IsActive:      req.IsActive == nil || *req.IsActive,
		IsFeatured:    req.IsFeatured,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("product_id", product.ID).
		Str("sku", product.SKU).
		Msg("product created")

	return s.reload(ctx, product.ID)
}

func (s *productService) Update(ctx context.Context, id int64, req *model.UpdateProductRequest) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, model.ErrInvalidPrice
		}
		product.Price = *req.Price
	}
	if req.CategoryID != nil {
		product.CategoryID = *req.CategoryID
	}
	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			return nil, model.ErrInvalidStock
		}
		product.StockQuantity = *req.StockQuantity
	}
	if req.SKU != nil {
		product.SKU = strings.TrimSpace(*req.SKU)
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("product_id", id).Msg("product updated")

	return s.reload(ctx, id)
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	ok, err := s.productRepo.SoftDelete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !ok {
		return model.ErrProductNotFound
	}

	s.logger.Info().Int64("product_id", id).Msg("product deactivated")
	return nil
}

func (s *productService) reload(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}
	return product, nil
}
