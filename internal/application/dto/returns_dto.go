package dto

import "github.com/shopspring/decimal"

// ReturnableLineResponse línea de venta con saldo devolvible, para armar la devolución.
type ReturnableLineResponse struct {
	SaleLineID      string          `json:"sale_line_id"`
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Quantity        decimal.Decimal `json:"quantity"`
	Returnable      decimal.Decimal `json:"returnable"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"` // para la prorrata
}

// CreateReturnRequest crea una devolución en estado Pending sobre una venta.
type CreateReturnRequest struct {
	SaleID string                    `json:"sale_id"`
	Reason string                    `json:"reason"`
	Lines  []CreateReturnLineRequest `json:"lines"`
}

// CreateReturnLineRequest cantidad a devolver de una línea de venta.
type CreateReturnLineRequest struct {
	SaleLineID    string          `json:"sale_line_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	ConditionNote string          `json:"condition_note"`
}

// ProcessReturnRequest completa una devolución Pending: restaura stock y
// registra el reembolso.
type ProcessReturnRequest struct {
	RefundMethod    string `json:"refund_method"`
	RefundReference string `json:"refund_reference"`
	ProcessedBy     string `json:"processed_by"`
}

// CancelReturnRequest cancela una devolución Pending.
type CancelReturnRequest struct {
	Reason string `json:"reason"`
}

// ReturnResponse devolución con líneas y desglose del reembolso.
type ReturnResponse struct {
	ID              string               `json:"id"`
	Number          string               `json:"number"`
	SaleID          string               `json:"sale_id"`
	Date            string               `json:"date"`
	Reason          string               `json:"reason,omitempty"`
	Status          string               `json:"status"`
	Subtotal        decimal.Decimal      `json:"subtotal"`
	DiscountTotal   decimal.Decimal      `json:"discount_total"`
	TaxTotal        decimal.Decimal      `json:"tax_total"`
	RefundAmount    decimal.Decimal      `json:"refund_amount"`
	RefundMethod    string               `json:"refund_method,omitempty"`
	RefundReference string               `json:"refund_reference,omitempty"`
	Lines           []ReturnLineResponse `json:"lines"`
}

// ReturnLineResponse una línea devuelta con su prorrata.
type ReturnLineResponse struct {
	ID             string          `json:"id"`
	SaleLineID     string          `json:"sale_line_id"`
	ProductID      string          `json:"product_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
	ConditionNote  string          `json:"condition_note,omitempty"`
}
