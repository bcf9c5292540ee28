package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository sobre PostgreSQL (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(id string) (*entity.Customer, error) {
	query := `
		SELECT id, name, email, phone, order_count, lifetime_spend, last_purchase_at, created_at, updated_at
		FROM customers WHERE id = $1`
	var c entity.Customer
	var email, phone *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&c.ID, &c.Name, &email, &phone, &c.OrderCount, &c.LifetimeSpend,
		&c.LastPurchaseAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	c.Email = derefStr(email)
	c.Phone = derefStr(phone)
	return &c, nil
}

// ApplySale incrementa los agregados denormalizados del cliente en un solo UPDATE.
func (r *CustomerRepo) ApplySale(id string, total decimal.Decimal, at time.Time) error {
	query := `
		UPDATE customers
		SET order_count      = order_count + 1,
		    lifetime_spend   = lifetime_spend + $2,
		    last_purchase_at = $3,
		    updated_at       = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, total, at)
	if err != nil {
		return fmt.Errorf("apply sale to customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cliente %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
