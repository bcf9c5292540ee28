package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/pricing"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Caso de referencia: precio 100, cantidad 2, descuento 10%, IVA 5%.
// subtotal=200, descuento=20, base=180, impuesto=9, total=189.
func TestComputeLine_DescuentoPorcentual(t *testing.T) {
	line, err := pricing.ComputeLine(d("100"), d("2"), pricing.Discount{Percent: d("10")}, d("5"))
	require.NoError(t, err)

	assert.True(t, line.Subtotal.Equal(d("200")), "subtotal debe ser 200, fue %s", line.Subtotal)
	assert.True(t, line.DiscountAmount.Equal(d("20")), "descuento debe ser 20, fue %s", line.DiscountAmount)
	assert.True(t, line.TaxAmount.Equal(d("9")), "impuesto debe ser 9 (5%% sobre 180), fue %s", line.TaxAmount)
	assert.True(t, line.Total.Equal(d("189")), "total debe ser 189, fue %s", line.Total)
}

// El monto absoluto manda y el porcentaje se deriva de él.
func TestComputeLine_DescuentoPorMonto(t *testing.T) {
	line, err := pricing.ComputeLine(d("100"), d("2"), pricing.Discount{Amount: d("20")}, d("5"))
	require.NoError(t, err)

	assert.True(t, line.DiscountPercent.Equal(d("10")), "porcentaje derivado debe ser 10, fue %s", line.DiscountPercent)
	assert.True(t, line.Total.Equal(d("189")), "total debe coincidir con el cálculo porcentual")
}

// Si vienen porcentaje y monto, el monto es canónico.
func TestComputeLine_MontoMandaSobrePorcentaje(t *testing.T) {
	line, err := pricing.ComputeLine(d("100"), d("1"), pricing.Discount{Percent: d("50"), Amount: d("10")}, d("0"))
	require.NoError(t, err)

	assert.True(t, line.DiscountAmount.Equal(d("10")), "el monto explícito debe mandar")
	assert.True(t, line.Total.Equal(d("90")), "total debe ser 90")
}

// Cantidades fraccionarias (ej. 1.25 metros) se normalizan a 3 decimales
// (mitad hacia arriba) y la moneda a 2.
func TestComputeLine_CantidadFraccionaria(t *testing.T) {
	line, err := pricing.ComputeLine(d("33.33"), d("1.2345"), pricing.Discount{}, d("19"))
	require.NoError(t, err)

	assert.True(t, line.Quantity.Equal(d("1.235")), "cantidad redondeada a 3 decimales, fue %s", line.Quantity)
	// 33.33 * 1.235 = 41.1626 -> 41.16 (redondeado a 2)
	assert.True(t, line.Subtotal.Equal(d("41.16")), "subtotal debe redondear a 2 decimales, fue %s", line.Subtotal)
	assert.True(t, line.Total.Round(2).Equal(line.Total), "el total no debe tener más de 2 decimales")
}

// Invariante contable: total == subtotal - descuento + impuesto.
func TestComputeLine_InvarianteTotales(t *testing.T) {
	line, err := pricing.ComputeLine(d("19.99"), d("3.5"), pricing.Discount{Percent: d("7.5")}, d("19"))
	require.NoError(t, err)

	expected := line.Subtotal.Sub(line.DiscountAmount).Add(line.TaxAmount)
	diff := line.Total.Sub(expected).Abs()
	assert.True(t, diff.LessThanOrEqual(d("0.01")),
		"total debe cumplir subtotal - descuento + impuesto dentro de 0.01, difirió %s", diff)
}

// ── Errores de validación ─────────────────────────────────────────────────────

func TestComputeLine_ErrorCantidadNoPositiva(t *testing.T) {
	_, err := pricing.ComputeLine(d("100"), decimal.Zero, pricing.Discount{}, d("5"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero debe rechazarse")

	_, err = pricing.ComputeLine(d("100"), d("-1"), pricing.Discount{}, d("5"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad negativa debe rechazarse")
}

func TestComputeLine_ErrorDescuentoInvalido(t *testing.T) {
	_, err := pricing.ComputeLine(d("100"), d("1"), pricing.Discount{Percent: d("101")}, d("5"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "porcentaje mayor a 100 debe rechazarse")

	_, err = pricing.ComputeLine(d("100"), d("1"), pricing.Discount{Amount: d("150")}, d("5"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "monto mayor al subtotal debe rechazarse")

	_, err = pricing.ComputeLine(d("100"), d("1"), pricing.Discount{Amount: d("-5")}, d("5"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "descuento negativo debe rechazarse")
}

// ── Prorrata ──────────────────────────────────────────────────────────────────

// Devolver la cantidad completa reproduce el descuento original exacto.
func TestProportionalDiscount_DevolucionTotal(t *testing.T) {
	got := pricing.ProportionalDiscount(d("2"), d("2"), d("20"))
	assert.True(t, got.Equal(d("20")), "devolución total debe reproducir el descuento completo, fue %s", got)
}

// Venta de 2 unidades con descuento de 20; se devuelve 1 ⇒ prorrata 10.
func TestProportionalDiscount_DevolucionParcial(t *testing.T) {
	got := pricing.ProportionalDiscount(d("2"), d("1"), d("20"))
	assert.True(t, got.Equal(d("10")), "prorrata lineal debe ser 10, fue %s", got)
}

func TestProportionalDiscount_CantidadOriginalCero(t *testing.T) {
	got := pricing.ProportionalDiscount(decimal.Zero, d("1"), d("20"))
	assert.True(t, got.IsZero(), "cantidad original cero debe prorratear a cero")
}

func TestProportionalDiscount_DevolucionCero(t *testing.T) {
	got := pricing.ProportionalDiscount(d("5"), decimal.Zero, d("20"))
	assert.True(t, got.IsZero(), "devolver cero unidades debe prorratear a cero")
}

func TestProportionalDiscount_RedondeaADosDecimales(t *testing.T) {
	// 10 * 1 / 3 = 3.333... -> 3.33
	got := pricing.ProportionalDiscount(d("3"), d("1"), d("10"))
	assert.True(t, got.Equal(d("3.33")), "prorrata debe redondear a 2 decimales, fue %s", got)
}
