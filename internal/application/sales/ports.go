package sales

import (
	"context"

	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad todo-o-nada para la
// creación de la venta: reserva de stock, numeración, persistencia y
// agregados del cliente se confirman o revierten juntos.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		products repository.ProductRepository,
		customers repository.CustomerRepository,
		sales repository.SaleRepository,
	) error) error
}
