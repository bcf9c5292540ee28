package payment

import "github.com/shopspring/decimal"

// Clasificación de la diferencia entre el total calculado de la venta y el
// monto recibido (servicio de dominio, puro).

// Tipos de ajuste, por magnitud de la diferencia.
const (
	AdjustmentCustomerConvenience = "CUSTOMER_CONVENIENCE" // redondeo menor a favor del cliente
	AdjustmentCashShortage        = "CASH_SHORTAGE"        // faltante/sobrante de caja tolerable
	AdjustmentSystemError         = "SYSTEM_ERROR"         // divergencia grande, posible error de cálculo
	AdjustmentManagerDiscretion   = "MANAGER_DISCRETION"   // zona intermedia, decide gerencia
)

// Umbrales en unidades de moneda y porcentaje del total.
var (
	amountConvenience = decimal.NewFromInt(5)
	amountShortage    = decimal.NewFromInt(20)
	pctConvenience    = decimal.NewFromInt(1)
	pctShortage       = decimal.NewFromInt(2)
	pctSystemError    = decimal.NewFromInt(5)
	hundred           = decimal.NewFromInt(100)
)

// Reconciliation es el resultado de clasificar un pago recibido.
type Reconciliation struct {
	Adjustment       decimal.Decimal // recibido - calculado (negativo = faltante)
	Percent          decimal.Decimal // |ajuste| como % del total calculado
	Type             string
	RequiresApproval bool
}

// Classify calcula el ajuste y lo clasifica por magnitud.
// Requiere aprobación cuando |ajuste| > 20 o el porcentaje > 2.
func Classify(calculatedTotal, amountReceived decimal.Decimal) Reconciliation {
	adjustment := amountReceived.Sub(calculatedTotal).Round(2)
	abs := adjustment.Abs()

	var pct decimal.Decimal
	switch {
	case !calculatedTotal.IsZero():
		pct = abs.Div(calculatedTotal.Abs()).Mul(hundred).Round(2)
	case abs.IsZero():
		pct = decimal.Zero
	default:
		// Total cero con diferencia: porcentualmente es una divergencia total.
		pct = hundred
	}

	var kind string
	switch {
	case abs.LessThanOrEqual(amountConvenience) || pct.LessThanOrEqual(pctConvenience):
		kind = AdjustmentCustomerConvenience
	case abs.LessThanOrEqual(amountShortage) || pct.LessThanOrEqual(pctShortage):
		kind = AdjustmentCashShortage
	case pct.GreaterThan(pctSystemError):
		kind = AdjustmentSystemError
	default:
		kind = AdjustmentManagerDiscretion
	}

	return Reconciliation{
		Adjustment:       adjustment,
		Percent:          pct,
		Type:             kind,
		RequiresApproval: abs.GreaterThan(amountShortage) || pct.GreaterThan(pctShortage),
	}
}
