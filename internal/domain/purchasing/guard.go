package purchasing

import (
	"fmt"
	"slices"

	"github.com/erp/procurement/internal/domain/shared"
)

// GuardResult is the outcome of checking a child mutation against the owning order
type GuardResult struct {
	Allowed bool
	Reason  string
	Code    string
}

// Err returns nil when allowed, otherwise a DomainError carrying the reason
func (r GuardResult) Err() error {
	if r.Allowed {
		return nil
	}
	return shared.NewDomainError(r.Code, r.Reason)
}

// MutationRule restricts a child mutation by the owning order's status. When Allowed is
// set only those statuses pass; otherwise every status outside Forbidden passes.
type MutationRule struct {
	Allowed   []Status
	Forbidden []Status
	Reason    string
}

func (r MutationRule) permits(status Status) bool {
	if len(r.Allowed) > 0 {
		return slices.Contains(r.Allowed, status)
	}
	return !slices.Contains(r.Forbidden, status)
}

var (
	// EstimateRule freezes estimates once the order is received
	EstimateRule = MutationRule{
		Forbidden: []Status{StatusReceived},
		Reason:    "cannot modify estimate on a received order",
	}
	// ItemRule only lets items be recorded on received orders
	ItemRule = MutationRule{
		Allowed: []Status{StatusReceived},
		Reason:  "items can only be added once the order is received",
	}
)

// Guard checks whether a child of order may be mutated under rule. A nil order yields
// an ORDER_NOT_FOUND result so callers can pass a repository miss straight through.
func Guard(order *PurchaseOrder, rule MutationRule) GuardResult {
	if order == nil {
		return GuardResult{Code: shared.CodeOrderNotFound, Reason: "order not found"}
	}
	if !rule.permits(order.Status) {
		return GuardResult{
			Code:   shared.CodeInvalidState,
			Reason: fmt.Sprintf("%s (status: %s)", rule.Reason, order.Status),
		}
	}
	return GuardResult{Allowed: true}
}
