package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/TotoPhandolack/EcomerceStore/internal/catalog"
	"github.com/TotoPhandolack/EcomerceStore/internal/domain"
	"github.com/TotoPhandolack/EcomerceStore/internal/store"
)

// Catalog is the listing/mutation surface consumed by the HTTP handlers.
type Catalog interface {
	ListProducts(ctx context.Context, c catalog.Criteria) (*catalog.ProductPage, error)
	ListFeatured(ctx context.Context, limit int) ([]domain.Product, error)
	ListLatest(ctx context.Context, limit int) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.CategoryCount, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	CreateProduct(ctx context.Context, input catalog.ProductInput) (catalog.Result, error)
	UpdateProduct(ctx context.Context, input catalog.ProductInput) (catalog.Result, error)
	DeleteProduct(ctx context.Context, id string) (catalog.Result, error)
}

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	catalog Catalog
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(c Catalog) *HTTPHandler {
	return &HTTPHandler{catalog: c}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("ERROR: Failed to encode JSON response: %v", err)
			http.Error(w, `{"error": "Internal server error during JSON encoding"}`, http.StatusInternalServerError)
		}
	}
}

// parseIntParam parses an optional integer query parameter, returning the
// fallback when the parameter is absent. A present but non-integer value is
// a parse failure; out-of-domain integers are passed through so the catalog
// can reject them loudly.
func parseIntParam(raw string, fallback int) (int, bool) {
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

// --- Listing Handlers ---

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	qParams := r.URL.Query()

	page, ok := parseIntParam(qParams.Get("page"), 1)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid page format")
		return
	}
	limit, ok := parseIntParam(qParams.Get("limit"), catalog.DefaultPageSize)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid limit format")
		return
	}

	criteria := catalog.Criteria{
		Query:    qParams.Get("q"),
		Category: qParams.Get("category"),
		Price:    qParams.Get("price"),
		Rating:   qParams.Get("rating"),
		Sort:     qParams.Get("sort"),
		Page:     page,
		Limit:    limit,
	}

	productPage, err := h.catalog.ListProducts(r.Context(), criteria)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidPageWindow) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("ERROR: ListProducts failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}

	respondWithJSON(w, http.StatusOK, productPage)
}

func (h *HTTPHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	h.listFixed(w, r, catalog.FeaturedProductsLimit, h.catalog.ListFeatured)
}

func (h *HTTPHandler) ListLatest(w http.ResponseWriter, r *http.Request) {
	h.listFixed(w, r, catalog.LatestProductsLimit, h.catalog.ListLatest)
}

func (h *HTTPHandler) listFixed(w http.ResponseWriter, r *http.Request, defaultLimit int, list func(context.Context, int) ([]domain.Product, error)) {
	limit, ok := parseIntParam(r.URL.Query().Get("limit"), defaultLimit)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid limit format")
		return
	}

	products, err := list(r.Context(), limit)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidPageWindow) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("ERROR: Fixed listing failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		log.Printf("ERROR: ListCategories failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}
	if categories == nil {
		categories = []domain.CategoryCount{}
	}
	respondWithJSON(w, http.StatusOK, categories)
}

func (h *HTTPHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productId")

	product, err := h.catalog.GetProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, store.ErrProductNotFound.Error())
			return
		}
		log.Printf("ERROR: GetProductByID for ID %s failed: %v", id, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *HTTPHandler) GetProductBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	product, err := h.catalog.GetProductBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, store.ErrProductNotFound.Error())
			return
		}
		log.Printf("ERROR: GetProductBySlug for slug %s failed: %v", slug, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

// --- Mutation Handlers ---

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input catalog.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	result, err := h.catalog.CreateProduct(r.Context(), input)
	if err != nil {
		log.Printf("ERROR: CreateProduct failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	code := http.StatusOK
	if result.Success {
		code = http.StatusCreated
	}
	respondWithJSON(w, code, result)
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var input catalog.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()
	input.ID = chi.URLParam(r, "productId")

	result, err := h.catalog.UpdateProduct(r.Context(), input)
	if err != nil {
		log.Printf("ERROR: UpdateProduct for ID %s failed: %v", input.ID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productId")

	result, err := h.catalog.DeleteProduct(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: DeleteProduct for ID %s failed: %v", id, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the service.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)   // GET /api/v1/products
		r.Post("/", h.CreateProduct) // POST /api/v1/products

		// Fixed routes must precede {productId} so they are not treated as IDs
		r.Get("/featured", h.ListFeatured)      // GET /api/v1/products/featured
		r.Get("/latest", h.ListLatest)          // GET /api/v1/products/latest
		r.Get("/categories", h.ListCategories)  // GET /api/v1/products/categories
		r.Get("/slug/{slug}", h.GetProductBySlug) // GET /api/v1/products/slug/{slug}

		r.Route("/{productId}", func(r chi.Router) {
			r.Get("/", h.GetProductByID)   // GET /api/v1/products/{productId}
			r.Put("/", h.UpdateProduct)    // PUT /api/v1/products/{productId}
			r.Delete("/", h.DeleteProduct) // DELETE /api/v1/products/{productId}
		})
	})
}
