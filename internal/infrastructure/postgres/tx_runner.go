package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/ventas-api/internal/application/payments"
	"github.com/jhoicas/ventas-api/internal/application/returns"
	"github.com/jhoicas/ventas-api/internal/application/sales"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// Ensure TxRunner implementa los runners de cada coordinador.
var _ sales.TxRunner = (*TxRunner)(nil)
var _ returns.TxRunner = (*TxRunner)(nil)
var _ payments.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL: un Begin,
// repos atados a la tx, Commit si el callback retorna nil y Rollback si no.
// Cada operación de venta/devolución/pago corre completa dentro de una tx.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunSale transacción para la creación de ventas.
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	sales repository.SaleRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewProductRepository(tx), NewCustomerRepository(tx), NewSaleRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunReturn transacción para crear/procesar/cancelar devoluciones.
func (r *TxRunner) RunReturn(ctx context.Context, fn func(
	products repository.ProductRepository,
	sales repository.SaleRepository,
	returns repository.ReturnRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewProductRepository(tx), NewSaleRepository(tx), NewReturnRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunPayment transacción para conciliación y aprobación de pagos.
func (r *TxRunner) RunPayment(ctx context.Context, fn func(
	sales repository.SaleRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewSaleRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
