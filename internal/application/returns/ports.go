package returns

import (
	"context"

	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios que necesita el coordinador de devoluciones.
type TxRunner interface {
	RunReturn(ctx context.Context, fn func(
		products repository.ProductRepository,
		sales repository.SaleRepository,
		returns repository.ReturnRepository,
	) error) error
}
