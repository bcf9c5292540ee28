package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `
		SELECT id, sku, name, stock, price, purchase_price, tax_rate, active, created_at, updated_at
		FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Stock, &p.Price, &p.PurchasePrice,
		&p.TaxRate, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// ReserveStock descuenta qty en un único UPDATE condicional: solo si el
// producto está activo y hay existencia suficiente. La condición en el WHERE
// es lo que impide la sobreventa bajo ventas concurrentes del mismo producto;
// no hay lectura previa que pueda quedar obsoleta.
func (r *ProductRepo) ReserveStock(id string, qty decimal.Decimal) (bool, error) {
	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND active AND stock >= $2`
	tag, err := r.q.Exec(context.Background(), query, id, qty)
	if err != nil {
		return false, fmt.Errorf("reserve stock: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ReleaseStock incrementa el stock sin condición.
func (r *ProductRepo) ReleaseStock(id string, qty decimal.Decimal) error {
	query := `
		UPDATE products
		SET stock = stock + $2, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, qty)
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
