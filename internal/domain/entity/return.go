package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una devolución. Pending -> Completed y Pending -> Cancelled son
// irreversibles; Completed y Cancelled son terminales.
const (
	ReturnStatusPending   = "PENDING"
	ReturnStatusCompleted = "COMPLETED"
	ReturnStatusCancelled = "CANCELLED"
)

// Return representa la cabecera de una devolución (parcial o total) sobre una venta.
// El stock NO se restaura al crearla, solo al pasar a Completed.
type Return struct {
	ID              string
	Number          string // número de documento único (RET-YYYYMMDD-NNNN)
	SaleID          string
	Date            time.Time
	Reason          string
	Status          string
	Subtotal        decimal.Decimal
	DiscountTotal   decimal.Decimal
	TaxTotal        decimal.Decimal
	RefundAmount    decimal.Decimal // suma de los totales de línea
	RefundMethod    string
	RefundReference string
	ProcessedBy     string
	ProcessedAt     *time.Time
	CancelReason    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
