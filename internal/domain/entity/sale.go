package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta.
const (
	SaleStatusPending         = "PENDING"          // transitorio, solo dentro de la transacción de creación
	SaleStatusCompleted       = "COMPLETED"        // venta cerrada
	SaleStatusPendingApproval = "PENDING_APPROVAL" // ajuste de pago requiere aprobación de gerencia
	SaleStatusCancelled       = "CANCELLED"        // anulada
)

// Sale representa la cabecera de una venta (factura).
// Inmutable tras la creación salvo estado y campos de ajuste de pago.
type Sale struct {
	ID                string
	Number            string // número de documento único (INV-YYYYMMDD-NNNN)
	Date              time.Time
	CustomerID        string // opcional: venta de mostrador sin cliente
	Status            string
	Subtotal          decimal.Decimal
	DiscountTotal     decimal.Decimal
	TaxTotal          decimal.Decimal
	Total             decimal.Decimal // Subtotal - DiscountTotal + TaxTotal
	PaymentMethod     string
	AmountReceived    decimal.Decimal
	PaymentAdjustment decimal.Decimal // AmountReceived - Total
	AdjustmentType    string          // clasificación del ajuste (ver domain/payment)
	ApprovedBy        string
	ApprovedAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
