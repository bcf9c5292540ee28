package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

// ReturnRepo implementación de ReturnRepository sobre PostgreSQL (usable con pool o tx).
type ReturnRepo struct {
	q Querier
}

// NewReturnRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReturnRepository(q Querier) *ReturnRepo {
	return &ReturnRepo{q: q}
}

const returnColumns = `
	id, number, sale_id, date, reason, status,
	subtotal, discount_total, tax_total, refund_amount,
	refund_method, refund_reference, processed_by, processed_at,
	cancel_reason, created_at, updated_at`

// Create persiste la cabecera de la devolución.
func (r *ReturnRepo) Create(ret *entity.Return) error {
	query := `
		INSERT INTO returns (` + returnColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(context.Background(), query,
		ret.ID, ret.Number, ret.SaleID, ret.Date, nullIfEmpty(ret.Reason), ret.Status,
		ret.Subtotal, ret.DiscountTotal, ret.TaxTotal, ret.RefundAmount,
		nullIfEmpty(ret.RefundMethod), nullIfEmpty(ret.RefundReference),
		nullIfEmpty(ret.ProcessedBy), ret.ProcessedAt,
		nullIfEmpty(ret.CancelReason), ret.CreatedAt, ret.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("número de devolución %s ya existe: %w", ret.Number, domain.ErrConflict)
		}
		return fmt.Errorf("insert return: %w", err)
	}
	return nil
}

// CreateLine persiste una línea de devolución.
func (r *ReturnRepo) CreateLine(line *entity.ReturnLine) error {
	query := `
		INSERT INTO return_lines (id, return_id, sale_line_id, product_id, quantity, unit_price,
		                          discount_amount, tax_amount, total, condition_note, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.ReturnID, line.SaleLineID, line.ProductID, line.Quantity, line.UnitPrice,
		line.DiscountAmount, line.TaxAmount, line.Total, nullIfEmpty(line.ConditionNote), line.Position,
	)
	if err != nil {
		return fmt.Errorf("insert return line: %w", err)
	}
	return nil
}

// GetByID obtiene una devolución por ID.
func (r *ReturnRepo) GetByID(id string) (*entity.Return, error) {
	query := `SELECT ` + returnColumns + ` FROM returns WHERE id = $1`
	return r.scanReturn(r.q.QueryRow(context.Background(), query, id))
}

// GetByIDForUpdate obtiene la devolución y bloquea la fila (SELECT FOR UPDATE).
func (r *ReturnRepo) GetByIDForUpdate(id string) (*entity.Return, error) {
	query := `SELECT ` + returnColumns + ` FROM returns WHERE id = $1 FOR UPDATE`
	return r.scanReturn(r.q.QueryRow(context.Background(), query, id))
}

func (r *ReturnRepo) scanReturn(row pgx.Row) (*entity.Return, error) {
	var ret entity.Return
	var reason, refundMethod, refundReference, processedBy, cancelReason *string
	err := row.Scan(
		&ret.ID, &ret.Number, &ret.SaleID, &ret.Date, &reason, &ret.Status,
		&ret.Subtotal, &ret.DiscountTotal, &ret.TaxTotal, &ret.RefundAmount,
		&refundMethod, &refundReference, &processedBy, &ret.ProcessedAt,
		&cancelReason, &ret.CreatedAt, &ret.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get return: %w", err)
	}
	ret.Reason = derefStr(reason)
	ret.RefundMethod = derefStr(refundMethod)
	ret.RefundReference = derefStr(refundReference)
	ret.ProcessedBy = derefStr(processedBy)
	ret.CancelReason = derefStr(cancelReason)
	return &ret, nil
}

// GetLines obtiene todas las líneas de una devolución en su orden original.
func (r *ReturnRepo) GetLines(returnID string) ([]*entity.ReturnLine, error) {
	query := `
		SELECT id, return_id, sale_line_id, product_id, quantity, unit_price,
		       discount_amount, tax_amount, total, condition_note, position
		FROM return_lines WHERE return_id = $1 ORDER BY position`
	rows, err := r.q.Query(context.Background(), query, returnID)
	if err != nil {
		return nil, fmt.Errorf("list return lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.ReturnLine
	for rows.Next() {
		var l entity.ReturnLine
		var note *string
		if err := rows.Scan(&l.ID, &l.ReturnID, &l.SaleLineID, &l.ProductID, &l.Quantity, &l.UnitPrice,
			&l.DiscountAmount, &l.TaxAmount, &l.Total, &note, &l.Position); err != nil {
			return nil, fmt.Errorf("scan return line: %w", err)
		}
		l.ConditionNote = derefStr(note)
		list = append(list, &l)
	}
	return list, rows.Err()
}

// Update persiste estado y campos de reembolso/cancelación.
func (r *ReturnRepo) Update(ret *entity.Return) error {
	query := `
		UPDATE returns
		SET status           = $2,
		    refund_method    = $3,
		    refund_reference = $4,
		    processed_by     = $5,
		    processed_at     = $6,
		    cancel_reason    = $7,
		    updated_at       = $8
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		ret.ID, ret.Status, nullIfEmpty(ret.RefundMethod), nullIfEmpty(ret.RefundReference),
		nullIfEmpty(ret.ProcessedBy), ret.ProcessedAt, nullIfEmpty(ret.CancelReason), ret.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update return: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("devolución %s: %w", ret.ID, domain.ErrNotFound)
	}
	return nil
}

// LastNumber devuelve el número de devolución más alto bajo el prefijo dado.
func (r *ReturnRepo) LastNumber(prefix string) (string, error) {
	query := `SELECT number FROM returns WHERE number LIKE $1 || '%' ORDER BY number DESC LIMIT 1`
	var number string
	err := r.q.QueryRow(context.Background(), query, prefix).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("last return number: %w", err)
	}
	return number, nil
}

// NumberExists verifica si un número de devolución ya está tomado.
func (r *ReturnRepo) NumberExists(number string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM returns WHERE number = $1)`
	var exists bool
	if err := r.q.QueryRow(context.Background(), query, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("return number exists: %w", err)
	}
	return exists, nil
}
