package purchasing

import (
	"time"

	"github.com/google/uuid"
)

// ItemOutcome is what happened to one line during reconciliation
type ItemOutcome string

const (
	OutcomeSuccess ItemOutcome = "success"
	OutcomeSkipped ItemOutcome = "skipped"
	OutcomeFailed  ItemOutcome = "failed"
)

// Skip reasons
const (
	SkipNoVariant         = "no_variant"
	SkipAlreadyReconciled = "already_reconciled"
)

// ItemResult records the reconciliation of a single line
type ItemResult struct {
	ItemID    uuid.UUID
	VariantID *uuid.UUID
	Quantity  int64
	Outcome   ItemOutcome
	Reason    string
}

// ReconciliationReport lists per-line results of one replay of an order
type ReconciliationReport struct {
	OrderID    uuid.UUID
	LocationID uuid.UUID
	Results    []ItemResult
	Succeeded  int
	Skipped    int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewReconciliationReport starts an empty report for order
func NewReconciliationReport(order *PurchaseOrder) *ReconciliationReport {
	return &ReconciliationReport{
		OrderID:    order.ID,
		LocationID: order.LocationID,
		Results:    make([]ItemResult, 0),
		StartedAt:  time.Now(),
	}
}

// Add appends a result and updates the counters
func (r *ReconciliationReport) Add(res ItemResult) {
	r.Results = append(r.Results, res)
	switch res.Outcome {
	case OutcomeSuccess:
		r.Succeeded++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
}

// Finish stamps the completion time
func (r *ReconciliationReport) Finish() {
	r.FinishedAt = time.Now()
}

// Duration returns how long the replay took
func (r *ReconciliationReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// HasFailures reports whether any line failed
func (r *ReconciliationReport) HasFailures() bool {
	return r.Failed > 0
}
