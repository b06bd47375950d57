package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/lib/pq"

	"github.com/TotoPhandolack/EcomerceStore/internal/domain"
)

// Predefined errors for store operations
var (
	ErrProductNotFound   = errors.New("store: product not found")
	ErrProductSlugExists = errors.New("store: product slug already exists")
)

const productColumns = "id, slug, name, description, category, price, rating, is_featured, created_at"

// allowedOrderColumns whitelists ORDER BY targets; the order key is
// interpolated into the query string, so everything else is rejected.
var allowedOrderColumns = map[string]bool{
	"created_at": true,
	"price":      true,
	"rating":     true,
	"name":       true,
}

// PostgresStore implements the ProductStorer interface using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore instance.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// buildWhere translates the filter into a WHERE clause and its arguments.
// Returns the clause (with leading " WHERE ", or empty for match-all), the
// arguments, and the next positional placeholder index.
func buildWhere(filter ProductFilter) (string, []interface{}, int) {
	var queryArgs []interface{}
	var whereClauses []string
	argID := 1

	if filter.Search != nil && *filter.Search != "" {
		// Search in name OR description
		whereClauses = append(whereClauses, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argID, argID+1))
		searchTerm := "%" + *filter.Search + "%"
		queryArgs = append(queryArgs, searchTerm, searchTerm)
		argID += 2
	}
	if filter.Category != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("category = $%d", argID))
		queryArgs = append(queryArgs, *filter.Category)
		argID++
	}
	if filter.MinPrice != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("price >= $%d", argID))
		queryArgs = append(queryArgs, *filter.MinPrice)
		argID++
	}
	if filter.MaxPrice != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("price <= $%d", argID))
		queryArgs = append(queryArgs, *filter.MaxPrice)
		argID++
	}
	if filter.MinRating != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("rating >= $%d", argID))
		queryArgs = append(queryArgs, *filter.MinRating)
		argID++
	}
	if filter.Featured != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("is_featured = $%d", argID))
		queryArgs = append(queryArgs, *filter.Featured)
		argID++
	}

	whereCondition := ""
	if len(whereClauses) > 0 {
		whereCondition = " WHERE " + strings.Join(whereClauses, " AND ")
	}
	return whereCondition, queryArgs, argID
}

func scanProduct(scanner interface{ Scan(...interface{}) error }) (domain.Product, error) {
	var p domain.Product
	err := scanner.Scan(
		&p.ID, &p.Slug, &p.Name, &p.Description, &p.Category,
		&p.Price, &p.Rating, &p.IsFeatured, &p.CreatedAt,
	)
	return p, err
}

func (s *PostgresStore) SelectProducts(ctx context.Context, filter ProductFilter, order OrderKey, limit, offset int) ([]domain.Product, error) {
	whereCondition, queryArgs, argID := buildWhere(filter)

	sortColumn := "created_at" // Default sort
	if allowedOrderColumns[strings.ToLower(order.Column)] {
		sortColumn = strings.ToLower(order.Column)
	}
	sortOrder := "ASC"
	if order.Descending {
		sortOrder = "DESC"
	}

	dataQuery := fmt.Sprintf("SELECT %s FROM products%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		productColumns, whereCondition, sortColumn, sortOrder, argID, argID+1)
	finalQueryArgs := append(queryArgs, limit, offset)

	rows, err := s.db.QueryContext(ctx, dataQuery, finalQueryArgs...)
	if err != nil {
		return nil, fmt.Errorf("store: SelectProducts failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("store: SelectProducts failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: SelectProducts iteration error: %w", err)
	}
	return products, nil
}

func (s *PostgresStore) CountProducts(ctx context.Context, filter ProductFilter) (int, error) {
	whereCondition, queryArgs, _ := buildWhere(filter)
	countQuery := "SELECT COUNT(*) FROM products" + whereCondition

	var totalCount int
	if err := s.db.QueryRowContext(ctx, countQuery, queryArgs...).Scan(&totalCount); err != nil {
		return 0, fmt.Errorf("store: CountProducts failed to count products: %w", err)
	}
	return totalCount, nil
}

func (s *PostgresStore) CountByCategory(ctx context.Context) ([]domain.CategoryCount, error) {
	query := `SELECT category, COUNT(*) FROM products GROUP BY category ORDER BY category ASC;`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: CountByCategory failed to query categories: %w", err)
	}
	defer rows.Close()

	counts := []domain.CategoryCount{}
	for rows.Next() {
		var c domain.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("store: CountByCategory failed to scan row: %w", err)
		}
		counts = append(counts, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: CountByCategory iteration error: %w", err)
	}
	return counts, nil
}

func (s *PostgresStore) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE id = $1;", productColumns)
	p, err := scanProduct(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: GetProductByID failed to scan row: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE slug = $1;", productColumns)
	p, err := scanProduct(s.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: GetProductBySlug failed to scan row: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := fmt.Sprintf(`
		INSERT INTO products (id, slug, name, description, category, price, rating, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s;
	`, productColumns)

	row := s.db.QueryRowContext(ctx, query,
		product.ID, product.Slug, product.Name, product.Description,
		product.Category, product.Price, product.Rating, product.IsFeatured,
	)

	created, err := scanProduct(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // Unique violation
			if strings.Contains(pqErr.Constraint, "products_slug_key") || strings.Contains(pqErr.Detail, "Key (slug)") {
				return nil, ErrProductSlugExists
			}
		}
		return nil, fmt.Errorf("store: CreateProduct failed to scan row: %w", err)
	}
	return &created, nil
}

// UpdateProduct replaces the mutable fields of an existing product.
// The slug is immutable after creation and is not part of the SET list.
func (s *PostgresStore) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := fmt.Sprintf(`
		UPDATE products
		SET name = $1, description = $2, category = $3, price = $4, rating = $5, is_featured = $6
		WHERE id = $7
		RETURNING %s;
	`, productColumns)

	row := s.db.QueryRowContext(ctx, query,
		product.Name, product.Description, product.Category,
		product.Price, product.Rating, product.IsFeatured, product.ID,
	)

	updated, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: UpdateProduct failed to scan row: %w", err)
	}
	return &updated, nil
}

func (s *PostgresStore) DeleteProduct(ctx context.Context, id string) error {
	query := `DELETE FROM products WHERE id = $1;`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("store: DeleteProduct failed to execute delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeleteProduct failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		log.Println("INFO: Closing database connection pool...")
		if err := s.db.Close(); err != nil {
			log.Printf("ERROR: Failed to close database connection pool: %v", err)
			return err
		}
	}
	return nil
}
