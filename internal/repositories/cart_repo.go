package repositories

import (
	"context"
	"fmt"

	"github.com/firststep/ecom/internal/database"
	"github.com/firststep/ecom/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(db *database.DB) *CartRepository {
	return &CartRepository{pool: db.Pool}
}

func (r *CartRepository) ListByUser(ctx context.Context, userID string) ([]*models.CartItem, error) {
	query := `
		SELECT user_id, product_id, quantity, added_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY added_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	items := make([]*models.CartItem, 0)

	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(&item.UserID, &item.ProductID, &item.Quantity, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", database.MapPostgresError(err))
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart rows: %w", err)
	}

	return items, nil
}

// AddOrIncrement inserts the line or bumps its quantity in one statement
func (r *CartRepository) AddOrIncrement(ctx context.Context, userID, productID string, quantity int) (*models.CartItem, error) {
	query := `
		INSERT INTO cart_items (user_id, product_id, quantity, added_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, product_id) DO UPDATE
		SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING user_id, product_id, quantity, added_at
	`

	var item models.CartItem
	err := r.pool.QueryRow(ctx, query, userID, productID, quantity).
		Scan(&item.UserID, &item.ProductID, &item.Quantity, &item.AddedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &item, nil
}

func (r *CartRepository) Remove(ctx context.Context, userID, productID string) error {
	query := `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`

	if _, err := r.pool.Exec(ctx, query, userID, productID); err != nil {
		return database.MapPostgresError(err)
	}

	return nil
}

func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	query := `DELETE FROM cart_items WHERE user_id = $1`

	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		return database.MapPostgresError(err)
	}

	return nil
}
