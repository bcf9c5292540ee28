package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para clientes.
type CustomerRepository interface {
	GetByID(id string) (*entity.Customer, error)
	// ApplySale actualiza los agregados denormalizados del cliente como efecto
	// de una venta: +1 compra, += total, fecha de última compra.
	ApplySale(id string, total decimal.Decimal, at time.Time) error
}
