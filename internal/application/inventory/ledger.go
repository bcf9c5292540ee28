package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// Ledger es el libro de inventario: reserva y libera stock de un producto.
// La reserva es un único UPDATE condicional a nivel de fila (lo ejecuta el
// repositorio), nunca leer-y-escribir, de modo que dos ventas concurrentes del
// mismo producto no puedan sobrevender. El stock jamás queda negativo.
type Ledger struct{}

// NewLedger construye el libro de inventario. No tiene estado propio: opera
// sobre el repositorio que reciba, normalmente el ligado a la transacción del caller.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Reserve descuenta qty del stock del producto si está activo y hay existencia
// suficiente. Si la condición falla, el error distingue producto inexistente,
// producto inactivo y stock insuficiente (con nombre y disponible).
func (l *Ledger) Reserve(products repository.ProductRepository, productID string, qty decimal.Decimal) error {
	if productID == "" || !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	ok, err := products.ReserveStock(productID, qty)
	if err != nil {
		return fmt.Errorf("reservar stock: %w", err)
	}
	if ok {
		return nil
	}

	// La reserva falló: leer el producto solo para armar un error con contexto.
	product, err := products.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	if !product.Active {
		return fmt.Errorf("producto %q inactivo: %w", product.Name, domain.ErrConflict)
	}
	return &domain.StockError{
		ProductID:   product.ID,
		ProductName: product.Name,
		Requested:   qty,
		Available:   product.Stock,
	}
}

// Release incrementa el stock sin condición. Solo se usa cuando una devolución
// pasa a Completed.
func (l *Ledger) Release(products repository.ProductRepository, productID string, qty decimal.Decimal) error {
	if productID == "" || !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if err := products.ReleaseStock(productID, qty); err != nil {
		return fmt.Errorf("liberar stock: %w", err)
	}
	return nil
}
