package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas y sus líneas.
type SaleRepository interface {
	Create(sale *entity.Sale) error
	CreateLine(line *entity.SaleLine) error
	GetByID(id string) (*entity.Sale, error)
	// GetByIDForUpdate bloquea la fila de la venta (SELECT FOR UPDATE);
	// usar dentro de una transacción para pagos y aprobaciones.
	GetByIDForUpdate(id string) (*entity.Sale, error)
	GetLines(saleID string) ([]*entity.SaleLine, error)
	// UpdatePayment persiste estado, campos de pago/ajuste y aprobación.
	UpdatePayment(sale *entity.Sale) error
	// IncrementReturnedQuantity suma qty a returned_quantity en un UPDATE
	// condicional (returned_quantity + qty <= quantity). Devuelve false si la
	// condición no se cumple: resguardo atómico del invariante acumulado.
	IncrementReturnedQuantity(lineID string, qty decimal.Decimal) (bool, error)
	// DecrementReturnedQuantity revierte el incremento al cancelar una devolución.
	DecrementReturnedQuantity(lineID string, qty decimal.Decimal) (bool, error)

	// Fuente de numeración para el asignador de documentos (facturas).
	LastNumber(prefix string) (string, error)
	NumberExists(number string) (bool, error)
}
