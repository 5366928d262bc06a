package purchasing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variance compares forecast and actual procurement cost for one order
type Variance struct {
	PurchaseOrderID uuid.UUID
	EstimatedTotal  decimal.Decimal
	ActualTotal     decimal.Decimal
	Variance        decimal.Decimal
}

// NewVariance derives the variance as actual minus estimated
func NewVariance(orderID uuid.UUID, estimated, actual decimal.Decimal) Variance {
	return Variance{
		PurchaseOrderID: orderID,
		EstimatedTotal:  estimated,
		ActualTotal:     actual,
		Variance:        actual.Sub(estimated),
	}
}
