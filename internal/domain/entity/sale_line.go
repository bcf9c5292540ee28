package entity

import "github.com/shopspring/decimal"

// SaleLine representa una línea de una venta.
// Solo se guarda el descuento como monto; el porcentaje se deriva, así las dos
// representaciones no pueden divergir.
// Invariante: ReturnedQuantity <= Quantity, acumulado sobre todas las
// devoluciones creadas contra la línea.
type SaleLine struct {
	ID               string
	SaleID           string
	ProductID        string
	ProductName      string // copiado al crear, para mensajes sin joins
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	DiscountAmount   decimal.Decimal
	TaxAmount        decimal.Decimal
	Total            decimal.Decimal
	ReturnedQuantity decimal.Decimal
	Position         int // orden dentro de la venta
}

// Subtotal devuelve UnitPrice * Quantity sin redondear.
func (l *SaleLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(l.Quantity)
}

// DiscountPercent deriva el porcentaje de descuento del monto guardado.
// Devuelve cero si el subtotal es cero.
func (l *SaleLine) DiscountPercent() decimal.Decimal {
	sub := l.Subtotal()
	if sub.IsZero() {
		return decimal.Zero
	}
	return l.DiscountAmount.Div(sub).Mul(decimal.NewFromInt(100)).Round(2)
}

// EffectiveTaxRate reconstruye el porcentaje de impuesto con el que se calculó
// la línea: TaxAmount / (Subtotal - DiscountAmount) * 100, sin redondear para
// que una devolución total reproduzca el impuesto original. La tarifa vigente
// del producto puede haber cambiado desde la venta; por eso no se relee.
func (l *SaleLine) EffectiveTaxRate() decimal.Decimal {
	base := l.Subtotal().Sub(l.DiscountAmount)
	if base.IsZero() {
		return decimal.Zero
	}
	return l.TaxAmount.Div(base).Mul(decimal.NewFromInt(100))
}

// Returnable devuelve la cantidad aún devolvible de la línea.
func (l *SaleLine) Returnable() decimal.Decimal {
	return l.Quantity.Sub(l.ReturnedQuantity)
}
