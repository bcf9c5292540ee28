package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/application/inventory"
	"github.com/jhoicas/ventas-api/internal/application/numbering"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/pricing"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// Config parámetros del coordinador de ventas.
type Config struct {
	DefaultPaymentMethod string // usado cuando el request no trae método de pago
	InvoicePrefix        string // prefijo de numeración (ej. INV)
}

// Coordinator orquesta la creación de una venta: reserva de stock por línea,
// cálculo de precios, numeración de documento, persistencia y agregados del
// cliente, todo dentro de una única transacción.
type Coordinator struct {
	txRunner  TxRunner
	ledger    *inventory.Ledger
	allocator *numbering.Allocator
	saleRepo  repository.SaleRepository // lecturas fuera de transacción
	cfg       Config
}

// NewCoordinator construye el coordinador.
func NewCoordinator(
	txRunner TxRunner,
	ledger *inventory.Ledger,
	allocator *numbering.Allocator,
	saleRepo repository.SaleRepository,
	cfg Config,
) *Coordinator {
	if cfg.DefaultPaymentMethod == "" {
		cfg.DefaultPaymentMethod = "CASH"
	}
	if cfg.InvoicePrefix == "" {
		cfg.InvoicePrefix = "INV"
	}
	return &Coordinator{
		txRunner:  txRunner,
		ledger:    ledger,
		allocator: allocator,
		saleRepo:  saleRepo,
		cfg:       cfg,
	}
}

// CreateSale crea la venta completa o no crea nada: cualquier error (stock
// insuficiente, producto inactivo, colisión de número, etc.) revierte la
// transacción entera, incluidas las reservas de líneas anteriores.
func (c *Coordinator) CreateSale(ctx context.Context, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("venta sin líneas: %w", domain.ErrInvalidInput)
	}
	paymentMethod := in.PaymentMethod
	if paymentMethod == "" {
		// Método ausente no es error: se asume el configurado por defecto.
		paymentMethod = c.cfg.DefaultPaymentMethod
	}

	now := time.Now()
	saleID := uuid.New().String()
	var sale *entity.Sale
	var lines []*entity.SaleLine

	err := c.txRunner.RunSale(ctx, func(
		products repository.ProductRepository,
		customers repository.CustomerRepository,
		sales repository.SaleRepository,
	) error {
		// Validar el cliente antes de tocar stock.
		if in.CustomerID != "" {
			customer, err := customers.GetByID(in.CustomerID)
			if err != nil {
				return err
			}
			if customer == nil {
				return fmt.Errorf("cliente %s: %w", in.CustomerID, domain.ErrNotFound)
			}
		}

		var subtotal, discountTotal, taxTotal, total decimal.Decimal
		for i, item := range in.Lines {
			if item.ProductID == "" || !item.Quantity.GreaterThan(decimal.Zero) {
				return fmt.Errorf("línea %d: %w", i+1, domain.ErrInvalidInput)
			}
			product, err := products.GetByID(item.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("producto %s: %w", item.ProductID, domain.ErrNotFound)
			}

			// Cantidad normalizada a 3 decimales una sola vez: la misma cifra
			// se reserva en stock y se persiste en la línea.
			qty := item.Quantity.Round(3)

			// Reserva: UPDATE condicional a nivel de fila. Si falla aquí, el
			// rollback de la transacción deshace las reservas ya hechas para
			// líneas anteriores de esta misma venta.
			if err := c.ledger.Reserve(products, item.ProductID, qty); err != nil {
				return err
			}

			unitPrice := item.UnitPrice
			if unitPrice.IsZero() {
				unitPrice = product.Price
			}
			amounts, err := pricing.ComputeLine(unitPrice, qty, pricing.Discount{
				Percent: item.DiscountPercent,
				Amount:  item.DiscountAmount,
			}, product.TaxRate)
			if err != nil {
				return fmt.Errorf("línea %d: %w", i+1, err)
			}

			lines = append(lines, &entity.SaleLine{
				ID:               uuid.New().String(),
				SaleID:           saleID,
				ProductID:        product.ID,
				ProductName:      product.Name,
				Quantity:         amounts.Quantity,
				UnitPrice:        unitPrice,
				DiscountAmount:   amounts.DiscountAmount,
				TaxAmount:        amounts.TaxAmount,
				Total:            amounts.Total,
				ReturnedQuantity: decimal.Zero,
				Position:         i + 1,
			})
			subtotal = subtotal.Add(amounts.Subtotal)
			discountTotal = discountTotal.Add(amounts.DiscountAmount)
			taxTotal = taxTotal.Add(amounts.TaxAmount)
			total = total.Add(amounts.Total)
		}

		number, err := c.allocator.Allocate(sales, c.cfg.InvoicePrefix)
		if err != nil {
			return err
		}

		sale = &entity.Sale{
			ID:                saleID,
			Number:            number,
			Date:              now,
			CustomerID:        in.CustomerID,
			Status:            entity.SaleStatusCompleted,
			Subtotal:          subtotal,
			DiscountTotal:     discountTotal,
			TaxTotal:          taxTotal,
			Total:             total,
			PaymentMethod:     paymentMethod,
			AmountReceived:    decimal.Zero,
			PaymentAdjustment: decimal.Zero,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := sales.Create(sale); err != nil {
			return err
		}
		for _, line := range lines {
			if err := sales.CreateLine(line); err != nil {
				return err
			}
		}

		// Agregados denormalizados del cliente, en la misma transacción.
		// No se recalculan si la venta se cancela o ajusta después.
		if in.CustomerID != "" {
			if err := customers.ApplySale(in.CustomerID, total, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		sale, lines = nil, nil
		return nil, err
	}

	return toSaleResponse(sale, lines), nil
}

// GetSale obtiene una venta por ID con sus líneas.
func (c *Coordinator) GetSale(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := c.saleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := c.saleRepo.GetLines(id)
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale, lines), nil
}

func toSaleResponse(sale *entity.Sale, lines []*entity.SaleLine) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:                sale.ID,
		Number:            sale.Number,
		Date:              sale.Date.Format(time.RFC3339),
		CustomerID:        sale.CustomerID,
		Status:            sale.Status,
		PaymentMethod:     sale.PaymentMethod,
		Subtotal:          sale.Subtotal,
		DiscountTotal:     sale.DiscountTotal,
		TaxTotal:          sale.TaxTotal,
		Total:             sale.Total,
		AmountReceived:    sale.AmountReceived,
		PaymentAdjustment: sale.PaymentAdjustment,
		AdjustmentType:    sale.AdjustmentType,
		Lines:             make([]dto.SaleLineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.SaleLineResponse{
			ID:               l.ID,
			ProductID:        l.ProductID,
			ProductName:      l.ProductName,
			Quantity:         l.Quantity,
			UnitPrice:        l.UnitPrice,
			DiscountPercent:  l.DiscountPercent(),
			DiscountAmount:   l.DiscountAmount,
			TaxAmount:        l.TaxAmount,
			Total:            l.Total,
			ReturnedQuantity: l.ReturnedQuantity,
		})
	}
	return resp
}
