package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/TotoPhandolack/EcomerceStore/internal/domain"
	"github.com/TotoPhandolack/EcomerceStore/internal/store"
)

// Default window sizes for the storefront listings.
const (
	DefaultPageSize       = 12
	LatestProductsLimit   = 4
	FeaturedProductsLimit = 4
)

// adminProductsPath keys the cached admin listing views invalidated after
// every successful mutation.
const adminProductsPath = "/admin/products"

// ErrInvalidPageWindow is returned when a listing call is made with page < 1
// or limit < 1. This is treated as a programming error on the caller's side
// and is deliberately not clamped; clamping previously masked off-by-one
// paging bugs.
var ErrInvalidPageWindow = errors.New("catalog: page and limit must be positive integers")

// Revalidator invalidates cached listing views keyed by path.
type Revalidator interface {
	Revalidate(ctx context.Context, path string) error
}

// NoopRevalidator satisfies Revalidator without doing anything. Used when no
// cache layer is configured.
type NoopRevalidator struct{}

func (NoopRevalidator) Revalidate(ctx context.Context, path string) error { return nil }

// ProductPage is one page of listing results. It is constructed fresh per
// request and never mutated afterwards.
type ProductPage struct {
	Items      []domain.Product `json:"items"`
	TotalPages int              `json:"total_pages"`
}

// Result reports the outcome of a mutation. Expected failures (validation,
// not-found) surface here with Success=false; only store faults are raised
// as errors.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ProductInput is the payload for create/update mutations.
type ProductInput struct {
	ID          string  `json:"id"` // Required for update, assigned on create when empty
	Slug        string  `json:"slug" validate:"required,max=255"`
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty"`
	Category    string  `json:"category" validate:"required,max=255"`
	Price       float64 `json:"price" validate:"gte=0"`
	Rating      float64 `json:"rating" validate:"gte=0,lte=5"`
	IsFeatured  bool    `json:"is_featured"`
}

// Service composes filters, resolves ordering, and executes paginated queries
// against the product store. It holds no per-request state; concurrent calls
// need no coordination.
type Service struct {
	store    store.ProductStorer
	cache    Revalidator
	validate *validator.Validate
}

// NewService creates a Service backed by the given store and revalidator.
func NewService(ps store.ProductStorer, rv Revalidator) *Service {
	if rv == nil {
		rv = NoopRevalidator{}
	}
	return &Service{
		store:    ps,
		cache:    rv,
		validate: validator.New(),
	}
}

// ListProducts executes the dynamic product query: criteria are composed
// into a predicate, the sort token resolved to an ordering key, and the
// requested window fetched along with the total page count.
//
// The data read and the count read are two independent queries with no
// shared snapshot; under concurrent writes they may disagree by the delta of
// those writes. This is an accepted approximation.
func (s *Service) ListProducts(ctx context.Context, c Criteria) (*ProductPage, error) {
	if c.Page < 1 || c.Limit < 1 {
		return nil, fmt.Errorf("%w: page=%d limit=%d", ErrInvalidPageWindow, c.Page, c.Limit)
	}

	filter := Compose(c)
	order := ResolveSort(c.Sort)
	offset := (c.Page - 1) * c.Limit

	items, err := s.store.SelectProducts(ctx, filter, order, c.Limit, offset)
	if err != nil {
		return nil, err
	}
	count, err := s.store.CountProducts(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := 0
	if count > 0 {
		totalPages = (count + c.Limit - 1) / c.Limit
	}
	if items == nil {
		items = []domain.Product{}
	}
	return &ProductPage{Items: items, TotalPages: totalPages}, nil
}

// ListFeatured returns up to limit featured products, newest first.
func (s *Service) ListFeatured(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit=%d", ErrInvalidPageWindow, limit)
	}
	featured := true
	filter := store.ProductFilter{Featured: &featured}
	return s.store.SelectProducts(ctx, filter, ResolveSort(SortNewest), limit, 0)
}

// ListLatest returns up to limit products, newest first, with no filter.
func (s *Service) ListLatest(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit=%d", ErrInvalidPageWindow, limit)
	}
	return s.store.SelectProducts(ctx, store.ProductFilter{}, ResolveSort(SortNewest), limit, 0)
}

// ListCategories returns per-category product counts.
func (s *Service) ListCategories(ctx context.Context) ([]domain.CategoryCount, error) {
	return s.store.CountByCategory(ctx)
}

// GetProductBySlug fetches a single product by its slug.
func (s *Service) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return s.store.GetProductBySlug(ctx, slug)
}

// GetProductByID fetches a single product by its ID.
func (s *Service) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.store.GetProductByID(ctx, id)
}

// CreateProduct validates the payload and inserts a new product. The ID is
// assigned here when the payload omits it.
func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (Result, error) {
	if err := s.validate.Struct(input); err != nil {
		return Result{Success: false, Message: "Validation failed: " + err.Error()}, nil
	}

	product := &domain.Product{
		ID:          input.ID,
		Slug:        input.Slug,
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		Rating:      input.Rating,
		IsFeatured:  input.IsFeatured,
	}
	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	if _, err := s.store.CreateProduct(ctx, product); err != nil {
		if errors.Is(err, store.ErrProductSlugExists) {
			return Result{Success: false, Message: "Product slug already exists"}, nil
		}
		return Result{}, err
	}

	s.revalidate(ctx, adminProductsPath)
	return Result{Success: true, Message: "Product created successfully"}, nil
}

// UpdateProduct validates the payload, verifies the target exists, and
// replaces its mutable fields.
func (s *Service) UpdateProduct(ctx context.Context, input ProductInput) (Result, error) {
	if input.ID == "" {
		return Result{Success: false, Message: "Validation failed: product ID is required"}, nil
	}
	if err := s.validate.Struct(input); err != nil {
		return Result{Success: false, Message: "Validation failed: " + err.Error()}, nil
	}

	if _, err := s.store.GetProductByID(ctx, input.ID); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			return Result{Success: false, Message: "Product not found"}, nil
		}
		return Result{}, err
	}

	product := &domain.Product{
		ID:          input.ID,
		Slug:        input.Slug,
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		Rating:      input.Rating,
		IsFeatured:  input.IsFeatured,
	}
	if _, err := s.store.UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			return Result{Success: false, Message: "Product not found"}, nil
		}
		return Result{}, err
	}

	s.revalidate(ctx, adminProductsPath)
	return Result{Success: true, Message: "Product updated successfully"}, nil
}

// DeleteProduct verifies the target exists and removes it.
func (s *Service) DeleteProduct(ctx context.Context, id string) (Result, error) {
	if _, err := s.store.GetProductByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			return Result{Success: false, Message: "Product not found"}, nil
		}
		return Result{}, err
	}

	if err := s.store.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			return Result{Success: false, Message: "Product not found"}, nil
		}
		return Result{}, err
	}

	s.revalidate(ctx, adminProductsPath)
	return Result{Success: true, Message: "Product deleted successfully"}, nil
}

// revalidate invalidates cached listing views. A failing cache never fails
// the mutation; a listing fetched right after a mutation still reflects it
// because the core itself serves no cached data.
func (s *Service) revalidate(ctx context.Context, path string) {
	if err := s.cache.Revalidate(ctx, path); err != nil {
		log.Printf("WARN: Failed to revalidate %s: %v", path, err)
	}
}
