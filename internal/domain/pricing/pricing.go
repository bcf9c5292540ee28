package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-api/internal/domain"
)

// Motor de precios (servicio de dominio, puro): aritmética de línea
// descuento/impuesto/total y prorrata de descuentos para devoluciones.
// Moneda a 2 decimales; cantidades hasta 3 decimales (unidades fraccionarias).

var (
	hundred = decimal.NewFromInt(100)
)

// Discount es la entrada dual de descuento: porcentaje o monto absoluto.
// Si Amount no es cero se toma como canónico y el porcentaje se deriva;
// si no, se deriva el monto desde Percent.
type Discount struct {
	Percent decimal.Decimal
	Amount  decimal.Decimal
}

// Line es el resultado del cálculo de una línea.
type Line struct {
	Quantity        decimal.Decimal // normalizada a 3 decimales
	Subtotal        decimal.Decimal // UnitPrice * Quantity, redondeado a 2
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	TaxAmount       decimal.Decimal // sobre el monto post-descuento
	Total           decimal.Decimal // Subtotal - DiscountAmount + TaxAmount
}

// ComputeLine calcula los montos de una línea de venta o devolución.
//
//	subtotal = unitPrice * quantity
//	tax      = (subtotal - descuento) * taxRatePercent / 100
//	total    = subtotal - descuento + tax
func ComputeLine(unitPrice, quantity decimal.Decimal, discount Discount, taxRatePercent decimal.Decimal) (Line, error) {
	if unitPrice.IsNegative() || taxRatePercent.IsNegative() {
		return Line{}, domain.ErrInvalidInput
	}
	if !quantity.GreaterThan(decimal.Zero) {
		return Line{}, domain.ErrInvalidInput
	}
	if discount.Percent.IsNegative() || discount.Amount.IsNegative() {
		return Line{}, domain.ErrInvalidInput
	}
	if discount.Percent.GreaterThan(hundred) {
		return Line{}, domain.ErrInvalidInput
	}

	qty := quantity.Round(3)
	subtotal := unitPrice.Mul(qty).Round(2)

	// Representación dual: el monto manda; si no viene, se deriva del porcentaje.
	var discountAmount, discountPercent decimal.Decimal
	if !discount.Amount.IsZero() {
		discountAmount = discount.Amount.Round(2)
		if subtotal.IsZero() {
			discountPercent = decimal.Zero
		} else {
			discountPercent = discountAmount.Div(subtotal).Mul(hundred).Round(2)
		}
	} else {
		discountPercent = discount.Percent
		discountAmount = subtotal.Mul(discount.Percent).Div(hundred).Round(2)
	}
	if discountAmount.GreaterThan(subtotal) {
		return Line{}, domain.ErrInvalidInput
	}

	afterDiscount := subtotal.Sub(discountAmount)
	tax := afterDiscount.Mul(taxRatePercent).Div(hundred).Round(2)

	return Line{
		Quantity:        qty,
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
		TaxAmount:       tax,
		Total:           afterDiscount.Add(tax).Round(2),
	}, nil
}

// ProportionalDiscount prorratea linealmente el descuento original según la
// cantidad devuelta: originalDiscount * returnQty / originalQty.
// Devuelve cero si originalQty es cero; una devolución total reproduce el
// descuento original exacto.
func ProportionalDiscount(originalQty, returnQty, originalDiscountAmount decimal.Decimal) decimal.Decimal {
	if originalQty.IsZero() {
		return decimal.Zero
	}
	if returnQty.Equal(originalQty) {
		return originalDiscountAmount
	}
	return originalDiscountAmount.Mul(returnQty).Div(originalQty).Round(2)
}
