package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/application/payments"
)

// PaymentHandler maneja la conciliación de pagos y aprobaciones.
type PaymentHandler struct {
	uc *payments.Engine
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(uc *payments.Engine) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// Process registra el monto recibido contra una venta y clasifica el ajuste.
// POST /api/sales/:id/payment
func (h *PaymentHandler) Process(c *fiber.Ctx) error {
	saleID := c.Params("id")
	var in dto.ProcessPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.ProcessPayment(c.Context(), saleID, in.AmountReceived)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

// Approve aprueba un ajuste que superó los umbrales (venta en PENDING_APPROVAL).
// POST /api/sales/:id/approve
func (h *PaymentHandler) Approve(c *fiber.Ctx) error {
	saleID := c.Params("id")
	var in dto.ApprovePaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Approve(c.Context(), saleID, in.Approver)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}
