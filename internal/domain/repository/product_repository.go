package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para el catálogo de productos.
// El stock solo se muta por el libro de inventario, vía Reserve/Release.
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
	// ReserveStock descuenta qty en un solo UPDATE condicional
	// (stock >= qty AND active). Devuelve false si la condición no se cumple;
	// nunca debe implementarse como leer-y-escribir.
	ReserveStock(id string, qty decimal.Decimal) (bool, error)
	// ReleaseStock incrementa el stock sin condición (devolución completada).
	ReleaseStock(id string, qty decimal.Decimal) error
}
