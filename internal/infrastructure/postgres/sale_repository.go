package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `
	id, number, date, customer_id, status,
	subtotal, discount_total, tax_total, total,
	payment_method, amount_received, payment_adjustment, adjustment_type,
	approved_by, approved_at, created_at, updated_at`

// Create persiste la cabecera de la venta.
func (r *SaleRepo) Create(sale *entity.Sale) error {
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.Number, sale.Date, nullIfEmpty(sale.CustomerID), sale.Status,
		sale.Subtotal, sale.DiscountTotal, sale.TaxTotal, sale.Total,
		sale.PaymentMethod, sale.AmountReceived, sale.PaymentAdjustment, nullIfEmpty(sale.AdjustmentType),
		nullIfEmpty(sale.ApprovedBy), sale.ApprovedAt, sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("número de venta %s ya existe: %w", sale.Number, domain.ErrConflict)
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateLine persiste una línea de venta.
func (r *SaleRepo) CreateLine(line *entity.SaleLine) error {
	query := `
		INSERT INTO sale_lines (id, sale_id, product_id, product_name, quantity, unit_price,
		                        discount_amount, tax_amount, total, returned_quantity, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.SaleID, line.ProductID, line.ProductName, line.Quantity, line.UnitPrice,
		line.DiscountAmount, line.TaxAmount, line.Total, line.ReturnedQuantity, line.Position,
	)
	if err != nil {
		return fmt.Errorf("insert sale line: %w", err)
	}
	return nil
}

// GetByID obtiene una venta por ID.
func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	return r.scanSale(r.q.QueryRow(context.Background(), query, id))
}

// GetByIDForUpdate obtiene la venta y bloquea la fila (SELECT FOR UPDATE).
func (r *SaleRepo) GetByIDForUpdate(id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1 FOR UPDATE`
	return r.scanSale(r.q.QueryRow(context.Background(), query, id))
}

func (r *SaleRepo) scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var customerID, adjustmentType, approvedBy *string
	err := row.Scan(
		&s.ID, &s.Number, &s.Date, &customerID, &s.Status,
		&s.Subtotal, &s.DiscountTotal, &s.TaxTotal, &s.Total,
		&s.PaymentMethod, &s.AmountReceived, &s.PaymentAdjustment, &adjustmentType,
		&approvedBy, &s.ApprovedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	s.CustomerID = derefStr(customerID)
	s.AdjustmentType = derefStr(adjustmentType)
	s.ApprovedBy = derefStr(approvedBy)
	return &s, nil
}

// GetLines obtiene todas las líneas de una venta en su orden original.
func (r *SaleRepo) GetLines(saleID string) ([]*entity.SaleLine, error) {
	query := `
		SELECT id, sale_id, product_id, product_name, quantity, unit_price,
		       discount_amount, tax_amount, total, returned_quantity, position
		FROM sale_lines WHERE sale_id = $1 ORDER BY position`
	rows, err := r.q.Query(context.Background(), query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.SaleLine
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice,
			&l.DiscountAmount, &l.TaxAmount, &l.Total, &l.ReturnedQuantity, &l.Position); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// UpdatePayment persiste estado, campos de pago/ajuste y aprobación.
func (r *SaleRepo) UpdatePayment(sale *entity.Sale) error {
	query := `
		UPDATE sales
		SET status             = $2,
		    amount_received    = $3,
		    payment_adjustment = $4,
		    adjustment_type    = $5,
		    approved_by        = $6,
		    approved_at        = $7,
		    updated_at         = $8
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.Status, sale.AmountReceived, sale.PaymentAdjustment,
		nullIfEmpty(sale.AdjustmentType), nullIfEmpty(sale.ApprovedBy), sale.ApprovedAt, sale.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sale payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("venta %s: %w", sale.ID, domain.ErrNotFound)
	}
	return nil
}

// IncrementReturnedQuantity suma qty a returned_quantity solo si no supera la
// cantidad vendida. El WHERE condicional es el resguardo atómico del
// invariante sum(devuelto) <= vendido.
func (r *SaleRepo) IncrementReturnedQuantity(lineID string, qty decimal.Decimal) (bool, error) {
	query := `
		UPDATE sale_lines
		SET returned_quantity = returned_quantity + $2
		WHERE id = $1 AND returned_quantity + $2 <= quantity`
	tag, err := r.q.Exec(context.Background(), query, lineID, qty)
	if err != nil {
		return false, fmt.Errorf("increment returned quantity: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DecrementReturnedQuantity revierte el incremento (cancelación de devolución).
func (r *SaleRepo) DecrementReturnedQuantity(lineID string, qty decimal.Decimal) (bool, error) {
	query := `
		UPDATE sale_lines
		SET returned_quantity = returned_quantity - $2
		WHERE id = $1 AND returned_quantity - $2 >= 0`
	tag, err := r.q.Exec(context.Background(), query, lineID, qty)
	if err != nil {
		return false, fmt.Errorf("decrement returned quantity: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// LastNumber devuelve el número de venta más alto bajo el prefijo dado.
func (r *SaleRepo) LastNumber(prefix string) (string, error) {
	query := `SELECT number FROM sales WHERE number LIKE $1 || '%' ORDER BY number DESC LIMIT 1`
	var number string
	err := r.q.QueryRow(context.Background(), query, prefix).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("last sale number: %w", err)
	}
	return number, nil
}

// NumberExists verifica si un número de venta ya está tomado.
func (r *SaleRepo) NumberExists(number string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM sales WHERE number = $1)`
	var exists bool
	if err := r.q.QueryRow(context.Background(), query, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("sale number exists: %w", err)
	}
	return exists, nil
}
