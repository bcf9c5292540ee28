package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/application/returns"
)

// ReturnHandler maneja las peticiones HTTP de devoluciones.
type ReturnHandler struct {
	uc *returns.Coordinator
}

// NewReturnHandler construye el handler.
func NewReturnHandler(uc *returns.Coordinator) *ReturnHandler {
	return &ReturnHandler{uc: uc}
}

// Returnable lista las líneas de una venta con saldo devolvible.
// GET /api/sales/:id/returnable
func (h *ReturnHandler) Returnable(c *fiber.Ctx) error {
	saleID := c.Params("id")
	if saleID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	lines, err := h.uc.ReturnableLines(c.Context(), saleID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(lines)
}

// Create crea una devolución en estado Pending (sin tocar stock).
// POST /api/returns
func (h *ReturnHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ret, err := h.uc.CreateReturn(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ret)
}

// GetByID obtiene el detalle completo de una devolución.
// GET /api/returns/:id
func (h *ReturnHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	ret, err := h.uc.GetReturn(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ret)
}

// Process completa una devolución Pending: restaura stock y registra el reembolso.
// POST /api/returns/:id/process
func (h *ReturnHandler) Process(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.ProcessReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ret, err := h.uc.ProcessReturn(c.Context(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ret)
}

// Cancel cancela una devolución Pending sin tocar stock.
// POST /api/returns/:id/cancel
func (h *ReturnHandler) Cancel(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.CancelReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ret, err := h.uc.CancelReturn(c.Context(), id, in.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ret)
}
