package entity

import "github.com/shopspring/decimal"

// ReturnLine representa una línea de devolución, ligada a una línea de venta.
// UnitPrice se copia de la línea original al momento de crear la devolución;
// DiscountAmount es la prorrata lineal del descuento original.
type ReturnLine struct {
	ID             string
	ReturnID       string
	SaleLineID     string
	ProductID      string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	ConditionNote  string // estado del artículo devuelto
	Position       int
}
