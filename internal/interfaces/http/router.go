package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-api/internal/application/payments"
	"github.com/jhoicas/ventas-api/internal/application/returns"
	"github.com/jhoicas/ventas-api/internal/application/sales"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Sales    *sales.Coordinator
	Returns  *returns.Coordinator
	Payments *payments.Engine
}

// Router registra las rutas de la API. La autenticación vive en la capa
// exterior de la aplicación, no en este núcleo.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	saleHandler := NewSaleHandler(deps.Sales)
	returnHandler := NewReturnHandler(deps.Returns)
	paymentHandler := NewPaymentHandler(deps.Payments)

	salesGroup := api.Group("/sales")
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/returnable", returnHandler.Returnable)
	salesGroup.Post("/:id/payment", paymentHandler.Process)
	salesGroup.Post("/:id/approve", paymentHandler.Approve)

	returnsGroup := api.Group("/returns")
	returnsGroup.Post("/", returnHandler.Create)
	returnsGroup.Get("/:id", returnHandler.GetByID)
	returnsGroup.Post("/:id/process", returnHandler.Process)
	returnsGroup.Post("/:id/cancel", returnHandler.Cancel)
}
