package dto

import "github.com/shopspring/decimal"

// CreateSaleRequest crea una venta con sus líneas.
// El descuento por línea acepta porcentaje o monto absoluto; si vienen ambos,
// el monto manda. UnitPrice en cero toma el precio de catálogo.
type CreateSaleRequest struct {
	CustomerID    string                  `json:"customer_id"`
	PaymentMethod string                  `json:"payment_method"`
	Lines         []CreateSaleLineRequest `json:"lines"`
}

// CreateSaleLineRequest una línea de la venta.
type CreateSaleLineRequest struct {
	ProductID       string          `json:"product_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
}

// SaleResponse venta con líneas y totales calculados.
type SaleResponse struct {
	ID                string             `json:"id"`
	Number            string             `json:"number"`
	Date              string             `json:"date"`
	CustomerID        string             `json:"customer_id,omitempty"`
	Status            string             `json:"status"`
	PaymentMethod     string             `json:"payment_method"`
	Subtotal          decimal.Decimal    `json:"subtotal"`
	DiscountTotal     decimal.Decimal    `json:"discount_total"`
	TaxTotal          decimal.Decimal    `json:"tax_total"`
	Total             decimal.Decimal    `json:"total"`
	AmountReceived    decimal.Decimal    `json:"amount_received"`
	PaymentAdjustment decimal.Decimal    `json:"payment_adjustment"`
	AdjustmentType    string             `json:"adjustment_type,omitempty"`
	Lines             []SaleLineResponse `json:"lines"`
}

// SaleLineResponse una línea de la venta con sus montos.
type SaleLineResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	ProductName      string          `json:"product_name"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	DiscountPercent  decimal.Decimal `json:"discount_percent"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	Total            decimal.Decimal `json:"total"`
	ReturnedQuantity decimal.Decimal `json:"returned_quantity"`
}
