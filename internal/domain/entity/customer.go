package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer representa un cliente con sus agregados denormalizados de compra.
// OrderCount, LifetimeSpend y LastPurchaseAt se actualizan solo al crear una
// venta; no se recalculan si la venta se cancela o ajusta después.
type Customer struct {
	ID             string
	Name           string
	Email          string
	Phone          string
	OrderCount     int
	LifetimeSpend  decimal.Decimal
	LastPurchaseAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
