package returns

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

// Coordinator orquesta las devoluciones: saldo devolvible, validación del lote,
// creación en Pending con prorrata del descuento, y la máquina de estados
// Pending -> Completed (restaura stock) o Pending -> Cancelled (revierte el
// derecho a devolver). El stock NO se toca al crear: así una devolución
// rechazada nunca movió inventario.
type Coordinator struct {
	txRunner   TxRunner
	ledger     *inventory.Ledger
	allocator  *numbering.Allocator
	saleRepo   repository.SaleRepository   // lecturas fuera de transacción
	returnRepo repository.ReturnRepository // lecturas fuera de transacción
	prefix     string
}

// NewCoordinator construye el coordinador de devoluciones.
func NewCoordinator(
	txRunner TxRunner,
	ledger *inventory.Ledger,
	allocator *numbering.Allocator,
	saleRepo repository.SaleRepository,
	returnRepo repository.ReturnRepository,
	prefix string,
) *Coordinator {
	if prefix == "" {
		prefix = "RET"
	}
	return &Coordinator{
		txRunner:   txRunner,
		ledger:     ledger,
		allocator:  allocator,
		saleRepo:   saleRepo,
		returnRepo: returnRepo,
		prefix:     prefix,
	}
}

// ReturnableLines devuelve las líneas de la venta con saldo devolvible
// (cantidad - ya devuelto > 0), con el porcentaje original para la prorrata.
func (c *Coordinator) ReturnableLines(ctx context.Context, saleID string) ([]dto.ReturnableLineResponse, error) {
	sale, err := c.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("venta %s: %w", saleID, domain.ErrNotFound)
	}
	lines, err := c.saleRepo.GetLines(saleID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReturnableLineResponse, 0, len(lines))
	for _, l := range lines {
		if !l.Returnable().GreaterThan(decimal.Zero) {
			continue
		}
		out = append(out, dto.ReturnableLineResponse{
			SaleLineID:      l.ID,
			ProductID:       l.ProductID,
			ProductName:     l.ProductName,
			Quantity:        l.Quantity,
			Returnable:      l.Returnable(),
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent(),
		})
	}
	return out, nil
}

// validateQuantities valida el lote completo contra el saldo devolvible actual.
// Cualquier línea inválida rechaza todo el lote con un mapa de errores por
// línea; no hay aceptación parcial.
func validateQuantities(byID map[string]*entity.SaleLine, selection []dto.CreateReturnLineRequest) error {
	errs := make(map[string]string)
	for _, sel := range selection {
		line, ok := byID[sel.SaleLineID]
		if !ok {
			errs[sel.SaleLineID] = "la línea no pertenece a la venta"
			continue
		}
		if !sel.Quantity.GreaterThan(decimal.Zero) {
			errs[sel.SaleLineID] = "la cantidad debe ser mayor que cero"
			continue
		}
		if sel.Quantity.GreaterThan(line.Returnable()) {
			errs[sel.SaleLineID] = fmt.Sprintf("cantidad %s supera el saldo devolvible %s",
				sel.Quantity.String(), line.Returnable().String())
		}
	}
	if len(errs) > 0 {
		return &domain.ValidationErrors{Lines: errs}
	}
	return nil
}

// CreateReturn crea la devolución en estado Pending dentro de una transacción:
// asigna número, prorratea descuento e impuesto por línea, persiste cabecera y
// líneas e incrementa returned_quantity en cada línea de venta referenciada.
func (c *Coordinator) CreateReturn(ctx context.Context, in dto.CreateReturnRequest) (*dto.ReturnResponse, error) {
	if in.SaleID == "" || len(in.Lines) == 0 {
		return nil, fmt.Errorf("devolución sin venta o sin líneas: %w", domain.ErrInvalidInput)
	}

	now := time.Now()
	retID := uuid.New().String()
	var ret *entity.Return
	var retLines []*entity.ReturnLine

	err := c.txRunner.RunReturn(ctx, func(
		_ repository.ProductRepository,
		sales repository.SaleRepository,
		returns repository.ReturnRepository,
	) error {
		sale, err := sales.GetByID(in.SaleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return fmt.Errorf("venta %s: %w", in.SaleID, domain.ErrNotFound)
		}
		if sale.Status == entity.SaleStatusCancelled {
			return &domain.StateError{Entity: "venta", ID: sale.ID, Status: sale.Status, Allowed: entity.SaleStatusCompleted}
		}

		saleLines, err := sales.GetLines(in.SaleID)
		if err != nil {
			return err
		}
		byID := make(map[string]*entity.SaleLine, len(saleLines))
		for _, l := range saleLines {
			byID[l.ID] = l
		}
		if err := validateQuantities(byID, in.Lines); err != nil {
			return err
		}

		number, err := c.allocator.Allocate(returns, c.prefix)
		if err != nil {
			return err
		}

		var subtotal, discountTotal, taxTotal, refund decimal.Decimal
		for i, sel := range in.Lines {
			orig := byID[sel.SaleLineID]

			// Prorrata lineal del descuento original; impuesto con la tarifa
			// efectiva de la venta, no la vigente del producto.
			prorated := pricing.ProportionalDiscount(orig.Quantity, sel.Quantity, orig.DiscountAmount)
			amounts, err := pricing.ComputeLine(orig.UnitPrice, sel.Quantity,
				pricing.Discount{Amount: prorated}, orig.EffectiveTaxRate())
			if err != nil {
				return fmt.Errorf("línea %d: %w", i+1, err)
			}

			retLines = append(retLines, &entity.ReturnLine{
				ID:             uuid.New().String(),
				ReturnID:       retID,
				SaleLineID:     orig.ID,
				ProductID:      orig.ProductID,
				Quantity:       amounts.Quantity,
				UnitPrice:      orig.UnitPrice,
				DiscountAmount: amounts.DiscountAmount,
				TaxAmount:      amounts.TaxAmount,
				Total:          amounts.Total,
				ConditionNote:  sel.ConditionNote,
				Position:       i + 1,
			})
			subtotal = subtotal.Add(amounts.Subtotal)
			discountTotal = discountTotal.Add(amounts.DiscountAmount)
			taxTotal = taxTotal.Add(amounts.TaxAmount)
			refund = refund.Add(amounts.Total)

			// Resguardo atómico del invariante: la suma de devoluciones jamás
			// supera la cantidad vendida, aun con devoluciones concurrentes.
			ok, err := sales.IncrementReturnedQuantity(orig.ID, sel.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &domain.ValidationErrors{Lines: map[string]string{
					orig.ID: "el saldo devolvible cambió durante la operación",
				}}
			}
		}

		ret = &entity.Return{
			ID:            retID,
			Number:        number,
			SaleID:        in.SaleID,
			Date:          now,
			Reason:        in.Reason,
			Status:        entity.ReturnStatusPending,
			Subtotal:      subtotal,
			DiscountTotal: discountTotal,
			TaxTotal:      taxTotal,
			RefundAmount:  refund,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := returns.Create(ret); err != nil {
			return err
		}
		for _, line := range retLines {
			if err := returns.CreateLine(line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toReturnResponse(ret, retLines), nil
}

// ProcessReturn completa una devolución Pending: restaura el stock de cada
// línea y registra método, referencia y responsable del reembolso.
// Transición irreversible.
func (c *Coordinator) ProcessReturn(ctx context.Context, id string, in dto.ProcessReturnRequest) (*dto.ReturnResponse, error) {
	if in.RefundMethod == "" {
		return nil, fmt.Errorf("método de reembolso requerido: %w", domain.ErrInvalidInput)
	}

	var ret *entity.Return
	var lines []*entity.ReturnLine

	err := c.txRunner.RunReturn(ctx, func(
		products repository.ProductRepository,
		_ repository.SaleRepository,
		returns repository.ReturnRepository,
	) error {
		var err error
		ret, err = returns.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if ret == nil {
			return fmt.Errorf("devolución %s: %w", id, domain.ErrNotFound)
		}
		if ret.Status != entity.ReturnStatusPending {
			return &domain.StateError{Entity: "devolución", ID: ret.ID, Status: ret.Status, Allowed: entity.ReturnStatusPending}
		}

		lines, err = returns.GetLines(id)
		if err != nil {
			return err
		}
		// Recién aquí vuelve el stock: no se movió nada al crear la devolución.
		for _, line := range lines {
			if err := c.ledger.Release(products, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		now := time.Now()
		ret.Status = entity.ReturnStatusCompleted
		ret.RefundMethod = in.RefundMethod
		ret.RefundReference = in.RefundReference
		ret.ProcessedBy = in.ProcessedBy
		ret.ProcessedAt = &now
		ret.UpdatedAt = now
		return returns.Update(ret)
	})
	if err != nil {
		return nil, err
	}

	return toReturnResponse(ret, lines), nil
}

// CancelReturn cancela una devolución Pending: revierte los incrementos de
// returned_quantity en las líneas de venta (libera el derecho a devolver) y no
// toca el stock, porque la creación tampoco lo tocó. Transición irreversible.
func (c *Coordinator) CancelReturn(ctx context.Context, id string, reason string) (*dto.ReturnResponse, error) {
	var ret *entity.Return
	var lines []*entity.ReturnLine

	err := c.txRunner.RunReturn(ctx, func(
		_ repository.ProductRepository,
		sales repository.SaleRepository,
		returns repository.ReturnRepository,
	) error {
		var err error
		ret, err = returns.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if ret == nil {
			return fmt.Errorf("devolución %s: %w", id, domain.ErrNotFound)
		}
		if ret.Status != entity.ReturnStatusPending {
			return &domain.StateError{Entity: "devolución", ID: ret.ID, Status: ret.Status, Allowed: entity.ReturnStatusPending}
		}

		lines, err = returns.GetLines(id)
		if err != nil {
			return err
		}
		for _, line := range lines {
			ok, err := sales.DecrementReturnedQuantity(line.SaleLineID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("revertir cantidad devuelta de la línea %s: %w", line.SaleLineID, domain.ErrConflict)
			}
		}

		now := time.Now()
		ret.Status = entity.ReturnStatusCancelled
		ret.CancelReason = reason
		ret.UpdatedAt = now
		return returns.Update(ret)
	})
	if err != nil {
		return nil, err
	}

	return toReturnResponse(ret, lines), nil
}

// GetReturn obtiene una devolución por ID con sus líneas.
func (c *Coordinator) GetReturn(ctx context.Context, id string) (*dto.ReturnResponse, error) {
	ret, err := c.returnRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := c.returnRepo.GetLines(id)
	if err != nil {
		return nil, err
	}
	return toReturnResponse(ret, lines), nil
}

func toReturnResponse(ret *entity.Return, lines []*entity.ReturnLine) *dto.ReturnResponse {
	resp := &dto.ReturnResponse{
		ID:              ret.ID,
		Number:          ret.Number,
		SaleID:          ret.SaleID,
		Date:            ret.Date.Format(time.RFC3339),
		Reason:          ret.Reason,
		Status:          ret.Status,
		Subtotal:        ret.Subtotal,
		DiscountTotal:   ret.DiscountTotal,
		TaxTotal:        ret.TaxTotal,
		RefundAmount:    ret.RefundAmount,
		RefundMethod:    ret.RefundMethod,
		RefundReference: ret.RefundReference,
		Lines:           make([]dto.ReturnLineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.ReturnLineResponse{
			ID:             l.ID,
			SaleLineID:     l.SaleLineID,
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			DiscountAmount: l.DiscountAmount,
			TaxAmount:      l.TaxAmount,
			Total:          l.Total,
			ConditionNote:  l.ConditionNote,
		})
	}
	return resp
}
