package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is a node in the product category tree.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ParentID    *int64    `json:"parent_id"`
	ParentName  *string   `json:"parent_name"`
	Slug        string    `json:"slug"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryDetail is a category together with its active children.
type CategoryDetail struct {
	Category
	Subcategories []Category `json:"subcategories"`
}

// CreateCategoryRequest is the payload for POST /api/categories/create.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
	ParentID    *int64 `json:"parent_id" validate:"omitempty,gt=0"`
	IsActive    *bool  `json:"is_active"`
}

// UpdateCategoryRequest is the payload for PUT/PATCH /api/categories/{id}/update.
// Nil fields are left unchanged.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	ParentID    *int64  `json:"parent_id" validate:"omitempty,gt=0"`
	IsActive    *bool   `json:"is_active"`
}

// CategoryRef is the compact category shape embedded in product responses.
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Product represents a sellable item in the catalogue.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	CategoryID    int64           `json:"category_id"`
	Category      *CategoryRef    `json:"category,omitempty"`
	StockQuantity int             `json:"stock_quantity"`
	SKU           string          `json:"sku"`
	IsActive      bool            `json:"is_active"`
	IsFeatured    bool            `json:"is_featured"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CreateProductRequest is the payload for POST /api/products/create.
type CreateProductRequest struct {
	Name          string          `json:"name" validate:"required,max=15"`
	Description   string          `json:"description" validate:"max=5000"`
	Price         decimal.Decimal `json:"price"`
	CategoryID    int64           `json:"category_id" validate:"required,gt=0"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
	SKU           string          `json:"sku" validate:"required,max=50"`
	IsActive      *bool           `json:"is_active"`
	IsFeatured    bool            `json:"is_featured"`
}

// UpdateProductRequest is the payload for PUT/PATCH /api/products/{id}/update.
// Nil fields are left unchanged.
type UpdateProductRequest struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=15"`
	Description   *string          `json:"description" validate:"omitempty,max=5000"`
	Price         *decimal.Decimal `json:"price"`
	CategoryID    *int64           `json:"category_id" validate:"omitempty,gt=0"`
	StockQuantity *int             `json:"stock_quantity" validate:"omitempty,gte=0"`
	SKU           *string          `json:"sku" validate:"omitempty,min=1,max=50"`
	IsActive      *bool            `json:"is_active"`
	IsFeatured    *bool            `json:"is_featured"`
}

// ProductSort names a supported listing order.
type ProductSort string

const (
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
	SortDateAsc   ProductSort = "date_asc"
	SortDateDesc  ProductSort = "date_desc"
	SortNameAsc   ProductSort = "name_asc"
	SortNameDesc  ProductSort = "name_desc"
)

// Valid reports whether s is a supported sort option.
func (s ProductSort) Valid() bool {
	switch s {
	case SortPriceAsc, SortPriceDesc, SortDateAsc, SortDateDesc, SortNameAsc, SortNameDesc:
		return true
	}
	return false
}

// Pagination defaults for product listings.
const (
	DefaultPageSize = 15
	MaxPageSize     = 100
	FeaturedLimit   = 8

	// MaxPage bounds the page number so the row offset cannot overflow.
	MaxPage = 10_000
)

// ProductFilter carries the listing query parameters. Zero values mean
// "not filtered".
type ProductFilter struct {
	Query      string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	CategoryID *int64
	// CategoryIDs restricts results to any of the given categories; used
	// when listing a category subtree.
	CategoryIDs []int64
	Sort        ProductSort
	Page        int
	PageSize    int
}

// Normalise clamps pagination into the supported range.
func (f *ProductFilter) Normalise() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if !f.Sort.Valid() {
		f.Sort = ""
	}
}

// Offset returns the row offset for the current page.
func (f *ProductFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// FiltersApplied tells the client which listing filters were in effect.
type FiltersApplied struct {
	Search     bool `json:"search"`
	Category   bool `json:"category"`
	PriceRange bool `json:"price_range"`
	Sorting    bool `json:"sorting"`
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Results        []Product      `json:"results"`
	CurrentPage    int            `json:"current_page"`
	TotalPages     int            `json:"total_pages"`
	TotalCount     int            `json:"total_count"`
	PageSize       int            `json:"page_size"`
	HasNext        bool           `json:"has_next"`
	HasPrevious    bool           `json:"has_previous"`
	FiltersApplied FiltersApplied `json:"filters_applied"`
}

// NewProductPage builds page metadata for a result slice.
func NewProductPage(results []Product, total int, f ProductFilter) *ProductPage {
	totalPages := 1
	if total > 0 {
		totalPages = (total + f.PageSize - 1) / f.PageSize
	}
	if results == nil {
		results = []Product{}
	}
	return &ProductPage{
		Results:     results,
		CurrentPage: f.Page,
		TotalPages:  totalPages,
		TotalCount:  total,
		PageSize:    f.PageSize,
		HasNext:     f.Page < totalPages,
		HasPrevious: f.Page > 1,
	}
}

// ProductSearchResult is a product page annotated with search hints.
type ProductSearchResult struct {
	ProductPage
	SearchPerformed bool     `json:"search_performed"`
	SearchQuery     string   `json:"search_query,omitempty"`
	Message         string   `json:"message,omitempty"`
	Suggestions     []string `json:"suggestions,omitempty"`
}
