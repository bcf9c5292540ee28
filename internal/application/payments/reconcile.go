package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/payment"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// Engine concilia el pago recibido contra el total calculado de una venta ya
// persistida y aplica la compuerta de aprobación: un ajuste fuera de umbral
// deja la venta en PENDING_APPROVAL hasta que gerencia apruebe.
type Engine struct {
	txRunner TxRunner
}

// NewEngine construye el motor de conciliación.
func NewEngine(txRunner TxRunner) *Engine {
	return &Engine{txRunner: txRunner}
}

// ProcessPayment registra el monto recibido, clasifica la diferencia y decide
// el estado final. Reenviar un pago sobre una venta en PENDING_APPROVAL
// reclasifica con el monto nuevo; solo Approve despeja la compuerta.
func (e *Engine) ProcessPayment(ctx context.Context, saleID string, amountReceived decimal.Decimal) (*dto.PaymentResult, error) {
	if amountReceived.IsNegative() {
		return nil, fmt.Errorf("monto recibido negativo: %w", domain.ErrInvalidInput)
	}

	var result *dto.PaymentResult
	err := e.txRunner.RunPayment(ctx, func(sales repository.SaleRepository) error {
		sale, err := sales.GetByIDForUpdate(saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return fmt.Errorf("venta %s: %w", saleID, domain.ErrNotFound)
		}
		if sale.Status == entity.SaleStatusCancelled {
			return &domain.StateError{Entity: "venta", ID: sale.ID, Status: sale.Status, Allowed: entity.SaleStatusCompleted}
		}

		rec := payment.Classify(sale.Total, amountReceived)

		now := time.Now()
		sale.AmountReceived = amountReceived
		sale.PaymentAdjustment = rec.Adjustment
		sale.AdjustmentType = rec.Type
		sale.UpdatedAt = now
		if rec.RequiresApproval {
			// El total finalizado queda diferido hasta la aprobación.
			sale.Status = entity.SaleStatusPendingApproval
			sale.ApprovedBy = ""
			sale.ApprovedAt = nil
		} else {
			sale.Status = entity.SaleStatusCompleted
		}
		if err := sales.UpdatePayment(sale); err != nil {
			return err
		}

		result = &dto.PaymentResult{
			Success:          true,
			SaleID:           sale.ID,
			Status:           sale.Status,
			Adjustment:       rec.Adjustment,
			AdjustmentType:   rec.Type,
			RequiresApproval: rec.RequiresApproval,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Approve despeja la compuerta de aprobación: solo válido mientras la venta
// está en PENDING_APPROVAL. Completa la venta y estampa aprobador y fecha.
func (e *Engine) Approve(ctx context.Context, saleID, approver string) (*dto.PaymentResult, error) {
	if approver == "" {
		return nil, fmt.Errorf("aprobador requerido: %w", domain.ErrInvalidInput)
	}

	var result *dto.PaymentResult
	err := e.txRunner.RunPayment(ctx, func(sales repository.SaleRepository) error {
		sale, err := sales.GetByIDForUpdate(saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return fmt.Errorf("venta %s: %w", saleID, domain.ErrNotFound)
		}
		if sale.Status != entity.SaleStatusPendingApproval {
			return &domain.StateError{Entity: "venta", ID: sale.ID, Status: sale.Status, Allowed: entity.SaleStatusPendingApproval}
		}

		now := time.Now()
		sale.Status = entity.SaleStatusCompleted
		sale.ApprovedBy = approver
		sale.ApprovedAt = &now
		sale.UpdatedAt = now
		if err := sales.UpdatePayment(sale); err != nil {
			return err
		}

		result = &dto.PaymentResult{
			Success:          true,
			SaleID:           sale.ID,
			Status:           sale.Status,
			Adjustment:       sale.PaymentAdjustment,
			AdjustmentType:   sale.AdjustmentType,
			RequiresApproval: false,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
