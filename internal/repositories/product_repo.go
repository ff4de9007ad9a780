package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/firststep/ecom/internal/database"
	"github.com/firststep/ecom/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(db *database.DB) *ProductRepository {
	return &ProductRepository{pool: db.Pool}
}

const productColumns = `id, user_id, name, price, type, stock, image, description, status, created_at, updated_at`

func scanProductRow(scanner rowScanner) (*models.Product, error) {
	var p models.Product

	err := scanner.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Price, &p.Type, &p.Stock,
		&p.Image, &p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &p, nil
}

func scanProductRows(rows pgx.Rows) ([]*models.Product, error) {
	defer rows.Close()

	products := make([]*models.Product, 0)

	for rows.Next() {
		product, err := scanProductRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	return scanProductRow(r.pool.QueryRow(ctx, query, id))
}

// ListByOwner returns the seller's products, newest first
func (r *ProductRepository) ListByOwner(ctx context.Context, userID string) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products WHERE user_id = $1 ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	return scanProductRows(rows)
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	product.ID = uuid.New().String()

	if product.Status == "" {
		product.Status = "active"
	}

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	query := `
		INSERT INTO products (id, user_id, name, price, type, stock, image, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + productColumns

	return scanProductRow(r.pool.QueryRow(ctx, query,
		product.ID, product.UserID, product.Name, product.Price, product.Type,
		product.Stock, product.Image, product.Description, product.Status,
		product.CreatedAt, product.UpdatedAt,
	))
}

// Update modifies a product only when the caller owns it
func (r *ProductRepository) Update(ctx context.Context, id, userID string, product *models.Product) (*models.Product, error) {
	query := `
		UPDATE products
		SET name = $1, price = $2, type = $3, stock = $4, image = $5, description = $6, status = $7, updated_at = NOW()
		WHERE id = $8 AND user_id = $9
		RETURNING ` + productColumns

	return scanProductRow(r.pool.QueryRow(ctx, query,
		product.Name, product.Price, product.Type, product.Stock,
		product.Image, product.Description, product.Status, id, userID,
	))
}

// Delete removes a product only when the caller owns it
func (r *ProductRepository) Delete(ctx context.Context, id, userID string) error {
	query := `DELETE FROM products WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
