package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidState      = errors.New("transición de estado no permitida")
)

// StockError describe una reserva de stock rechazada: qué producto y cuánto hay disponible.
// Envuelve ErrInsufficientStock para que errors.Is siga funcionando.
type StockError struct {
	ProductID   string
	ProductName string
	Requested   decimal.Decimal
	Available   decimal.Decimal
}

func (e *StockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %q: solicitado %s, disponible %s",
		e.ProductName, e.Requested.String(), e.Available.String())
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// StateError describe una transición rechazada, con el estado actual para el mensaje al usuario.
type StateError struct {
	Entity  string // "sale" o "return"
	ID      string
	Status  string // estado actual
	Allowed string // estado requerido para la operación
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s %s está en estado %s; la operación requiere %s",
		e.Entity, e.ID, e.Status, e.Allowed)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }

// ValidationErrors acumula errores por línea (clave = ID de la línea de venta).
// Rechaza el lote completo: no hay aceptación parcial.
type ValidationErrors struct {
	Lines map[string]string
}

func (e *ValidationErrors) Error() string {
	return fmt.Sprintf("validación fallida en %d línea(s)", len(e.Lines))
}

func (e *ValidationErrors) Unwrap() error { return ErrInvalidInput }
