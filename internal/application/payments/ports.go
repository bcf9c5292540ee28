package payments

import (
	"context"

	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con el
// repositorio de ventas atado a esa tx.
type TxRunner interface {
	RunPayment(ctx context.Context, fn func(sales repository.SaleRepository) error) error
}
