package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo.
// Stock es la cantidad disponible (no negativa, hasta 3 decimales para unidades
// fraccionarias, ej. metros de tela). Solo el libro de inventario la modifica.
type Product struct {
	ID            string
	SKU           string // código único
	Name          string
	Stock         decimal.Decimal
	Price         decimal.Decimal // precio de venta unitario
	PurchasePrice decimal.Decimal // precio de compra
	TaxRate       decimal.Decimal // porcentaje, ej. 5 = 5%
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
