package purchasing

// Status is the lifecycle state of a purchase order
type Status string

const (
	StatusDraft     Status = "draft"
	StatusEstimated Status = "estimated"
	StatusOrdered   Status = "ordered"
	StatusReceived  Status = "received"
	StatusCancelled Status = "cancelled"
)

// AllStatuses lists statuses in their rank order
var AllStatuses = []Status{StatusDraft, StatusEstimated, StatusOrdered, StatusReceived, StatusCancelled}

// IsValid checks if the status is a known Status
func (s Status) IsValid() bool {
	return s.rank() >= 0
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

func (s Status) rank() int {
	for i, st := range AllStatuses {
		if st == s {
			return i
		}
	}
	return -1
}

// IsPreReceived reports whether no stock has moved yet for an order in this status
func (s Status) IsPreReceived() bool {
	return s == StatusDraft || s == StatusEstimated || s == StatusOrdered
}

// CanTransitionTo checks if the status can move to target.
// Pre-received statuses only move forward, may skip ahead to received and may be cancelled.
// Received and cancelled are terminal apart from repeating the same status.
func (s Status) CanTransitionTo(target Status) bool {
	if !s.IsValid() || !target.IsValid() {
		return false
	}
	if s == target {
		return true
	}
	if !s.IsPreReceived() {
		return false
	}
	return target.rank() > s.rank()
}
