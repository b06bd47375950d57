package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TotoPhandolack/EcomerceStore/internal/domain"
)

// Helper function to create a mock DB and PostgresStore for testing
func newMockDBAndStore(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresStore) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	store := NewPostgresStore(db)
	require.NotNil(t, store, "Store should not be nil")

	return db, mock, store
}

// Helper function to get a pointer (useful for optional fields)
func PtrTo[T any](v T) *T {
	return &v
}

func productRowColumns() []string {
	return []string{"id", "slug", "name", "description", "category", "price", "rating", "is_featured", "created_at"}
}

func addProductRow(rows *sqlmock.Rows, p domain.Product) *sqlmock.Rows {
	return rows.AddRow(p.ID, p.Slug, p.Name, p.Description, p.Category, p.Price, p.Rating, p.IsFeatured, p.CreatedAt)
}

func TestPostgresStore_SelectProducts_MatchAll(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	now := time.Now().Truncate(time.Millisecond)
	query := regexp.QuoteMeta(`SELECT id, slug, name, description, category, price, rating, is_featured, created_at FROM products ORDER BY created_at DESC LIMIT $1 OFFSET $2`)

	rows := sqlmock.NewRows(productRowColumns())
	addProductRow(rows, domain.Product{ID: "p1", Slug: "a", Name: "A", Category: "Misc", Price: 10, Rating: 4, CreatedAt: now})
	addProductRow(rows, domain.Product{ID: "p2", Slug: "b", Name: "B", Category: "Misc", Price: 20, Rating: 3, CreatedAt: now.Add(-time.Hour)})

	mock.ExpectQuery(query).WithArgs(12, 0).WillReturnRows(rows)

	products, err := store.SelectProducts(context.Background(), ProductFilter{},
		OrderKey{Column: "created_at", Descending: true}, 12, 0)

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, "p2", products[1].ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SelectProducts_AllCriteria(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	now := time.Now().Truncate(time.Millisecond)
	filter := ProductFilter{
		Search:    PtrTo("scarf"),
		Category:  PtrTo("Apparel"),
		MinPrice:  PtrTo(0.0),
		MaxPrice:  PtrTo(50.0),
		MinRating: PtrTo(3.0),
	}

	query := regexp.QuoteMeta(`SELECT id, slug, name, description, category, price, rating, is_featured, created_at FROM products WHERE (name ILIKE $1 OR description ILIKE $2) AND category = $3 AND price >= $4 AND price <= $5 AND rating >= $6 ORDER BY price ASC LIMIT $7 OFFSET $8`)

	rows := sqlmock.NewRows(productRowColumns())
	addProductRow(rows, domain.Product{ID: "p3", Slug: "wool-scarf", Name: "Wool Scarf", Description: PtrTo("Warm wool scarf"), Category: "Apparel", Price: 20, Rating: 4, CreatedAt: now})

	mock.ExpectQuery(query).
		WithArgs("%scarf%", "%scarf%", "Apparel", 0.0, 50.0, 3.0, 10, 20).
		WillReturnRows(rows)

	products, err := store.SelectProducts(context.Background(), filter,
		OrderKey{Column: "price", Descending: false}, 10, 20)

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "p3", products[0].ID)
	require.NotNil(t, products[0].Description)
	assert.Equal(t, "Warm wool scarf", *products[0].Description)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SelectProducts_DisallowedOrderColumnFallsBack(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	// An order column outside the whitelist must never reach the SQL string.
	query := regexp.QuoteMeta(`SELECT id, slug, name, description, category, price, rating, is_featured, created_at FROM products ORDER BY created_at ASC LIMIT $1 OFFSET $2`)

	mock.ExpectQuery(query).WithArgs(5, 0).WillReturnRows(sqlmock.NewRows(productRowColumns()))

	products, err := store.SelectProducts(context.Background(), ProductFilter{},
		OrderKey{Column: "id; DROP TABLE products"}, 5, 0)

	require.NoError(t, err)
	assert.Empty(t, products)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountProducts(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	filter := ProductFilter{Category: PtrTo("Apparel")}
	query := regexp.QuoteMeta(`SELECT COUNT(*) FROM products WHERE category = $1`)

	mock.ExpectQuery(query).WithArgs("Apparel").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := store.CountProducts(context.Background(), filter)

	require.NoError(t, err)
	assert.Equal(t, 7, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountByCategory(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	query := regexp.QuoteMeta(`SELECT category, COUNT(*) FROM products GROUP BY category ORDER BY category ASC;`)

	rows := sqlmock.NewRows([]string{"category", "count"}).
		AddRow("Accessories", 2).
		AddRow("Apparel", 5)

	mock.ExpectQuery(query).WillReturnRows(rows)

	counts, err := store.CountByCategory(context.Background())

	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, domain.CategoryCount{Category: "Accessories", Count: 2}, counts[0])
	assert.Equal(t, domain.CategoryCount{Category: "Apparel", Count: 5}, counts[1])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetProductBySlug_Found(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	now := time.Now().Truncate(time.Millisecond)
	query := regexp.QuoteMeta(`SELECT id, slug, name, description, category, price, rating, is_featured, created_at FROM products WHERE slug = $1;`)

	rows := sqlmock.NewRows(productRowColumns())
	addProductRow(rows, domain.Product{ID: "p1", Slug: "canvas-tote", Name: "Canvas Tote", Category: "Bags", Price: 30, Rating: 4.5, IsFeatured: true, CreatedAt: now})

	mock.ExpectQuery(query).WithArgs("canvas-tote").WillReturnRows(rows)

	product, err := store.GetProductBySlug(context.Background(), "canvas-tote")

	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "p1", product.ID)
	assert.Equal(t, "canvas-tote", product.Slug)
	assert.True(t, product.IsFeatured)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetProductByID_NotFound(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	query := regexp.QuoteMeta(`SELECT id, slug, name, description, category, price, rating, is_featured, created_at FROM products WHERE id = $1;`)

	mock.ExpectQuery(query).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	product, err := store.GetProductByID(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProductNotFound), "Error should be ErrProductNotFound")
	assert.Nil(t, product)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateProduct(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	now := time.Now().Truncate(time.Millisecond)
	productToCreate := &domain.Product{
		ID:       "p9",
		Slug:     "new-product",
		Name:     "New Product",
		Category: "Misc",
		Price:    15,
		Rating:   0,
	}

	query := regexp.QuoteMeta(`
		INSERT INTO products (id, slug, name, description, category, price, rating, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, slug, name, description, category, price, rating, is_featured, created_at;
	`)

	rows := sqlmock.NewRows(productRowColumns())
	created := *productToCreate
	created.CreatedAt = now
	addProductRow(rows, created)

	mock.ExpectQuery(query).
		WithArgs(productToCreate.ID, productToCreate.Slug, productToCreate.Name, productToCreate.Description,
			productToCreate.Category, productToCreate.Price, productToCreate.Rating, productToCreate.IsFeatured).
		WillReturnRows(rows)

	createdProduct, err := store.CreateProduct(context.Background(), productToCreate)

	require.NoError(t, err)
	require.NotNil(t, createdProduct)
	assert.Equal(t, "p9", createdProduct.ID)
	assert.WithinDuration(t, now, createdProduct.CreatedAt, time.Second)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateProduct_SlugExists(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	productToCreate := &domain.Product{ID: "p9", Slug: "taken", Name: "Dup", Category: "Misc"}

	query := regexp.QuoteMeta(`
		INSERT INTO products (id, slug, name, description, category, price, rating, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, slug, name, description, category, price, rating, is_featured, created_at;
	`)

	pqErr := &pq.Error{Code: "23505", Constraint: "products_slug_key"}
	mock.ExpectQuery(query).
		WithArgs(productToCreate.ID, productToCreate.Slug, productToCreate.Name, productToCreate.Description,
			productToCreate.Category, productToCreate.Price, productToCreate.Rating, productToCreate.IsFeatured).
		WillReturnError(pqErr)

	createdProduct, err := store.CreateProduct(context.Background(), productToCreate)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProductSlugExists), "Error should be ErrProductSlugExists")
	assert.Nil(t, createdProduct)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateProduct_NotFound(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	productToUpdate := &domain.Product{ID: "missing", Slug: "s", Name: "N", Category: "C"}

	query := regexp.QuoteMeta(`
		UPDATE products
		SET name = $1, description = $2, category = $3, price = $4, rating = $5, is_featured = $6
		WHERE id = $7
		RETURNING id, slug, name, description, category, price, rating, is_featured, created_at;
	`)

	mock.ExpectQuery(query).
		WithArgs(productToUpdate.Name, productToUpdate.Description, productToUpdate.Category,
			productToUpdate.Price, productToUpdate.Rating, productToUpdate.IsFeatured, productToUpdate.ID).
		WillReturnError(sql.ErrNoRows)

	_, err := store.UpdateProduct(context.Background(), productToUpdate)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProductNotFound), "Error should be ErrProductNotFound")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteProduct_Success(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	query := regexp.QuoteMeta(`DELETE FROM products WHERE id = $1;`)

	mock.ExpectExec(query).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.DeleteProduct(context.Background(), "p1")

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteProduct_NotFound(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	query := regexp.QuoteMeta(`DELETE FROM products WHERE id = $1;`)

	mock.ExpectExec(query).WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteProduct(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProductNotFound), "Error should be ErrProductNotFound")

	require.NoError(t, mock.ExpectationsWereMet())
}
