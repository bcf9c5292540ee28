package dto

import "github.com/shopspring/decimal"

// ProcessPaymentRequest registra el monto recibido contra una venta.
type ProcessPaymentRequest struct {
	AmountReceived decimal.Decimal `json:"amount_received"`
}

// ApprovePaymentRequest aprueba un ajuste que superó los umbrales.
type ApprovePaymentRequest struct {
	Approver string `json:"approver"`
}

// PaymentResult resultado de conciliar el pago de una venta.
type PaymentResult struct {
	Success          bool            `json:"success"`
	SaleID           string          `json:"sale_id"`
	Status           string          `json:"status"`
	Adjustment       decimal.Decimal `json:"adjustment"`
	AdjustmentType   string          `json:"adjustment_type"`
	RequiresApproval bool            `json:"requires_approval"`
}
