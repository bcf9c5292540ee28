package repository

import "github.com/jhoicas/ventas-api/internal/domain/entity"

// ReturnRepository define el puerto de persistencia para devoluciones y sus líneas.
type ReturnRepository interface {
	Create(ret *entity.Return) error
	CreateLine(line *entity.ReturnLine) error
	GetByID(id string) (*entity.Return, error)
	// GetByIDForUpdate bloquea la fila (SELECT FOR UPDATE) para la máquina de
	// estados Pending -> Completed/Cancelled.
	GetByIDForUpdate(id string) (*entity.Return, error)
	GetLines(returnID string) ([]*entity.ReturnLine, error)
	// Update persiste estado y campos de reembolso/cancelación.
	Update(ret *entity.Return) error

	// Fuente de numeración para el asignador de documentos (devoluciones).
	LastNumber(prefix string) (string, error)
	NumberExists(number string) (bool, error)
}
