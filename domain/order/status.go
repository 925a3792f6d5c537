package order

import "strings"

// Status is the closed set of order states. The zero value is not a valid
// status so an unset field can never pass for PENDING.
type Status uint8

const (
	statusUnknown Status = iota
	StatusPending
	StatusPaid
	StatusShipped
	StatusCancelled

	statusCount
)

var statusNames = [statusCount]string{
	statusUnknown:   "",
	StatusPending:   "PENDING",
	StatusPaid:      "PAID",
	StatusShipped:   "SHIPPED",
	StatusCancelled: "CANCELLED",
}

// AllStatuses lists every valid status in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusPaid, StatusShipped, StatusCancelled}
}

func (s Status) String() string {
	if s >= statusCount {
		return ""
	}
	return statusNames[s]
}

func (s Status) IsValid() bool {
	return s > statusUnknown && s < statusCount
}

// ParseStatus accepts exactly the four upper-case names. Surrounding
// whitespace is ignored, case is not.
func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)
	for _, s := range AllStatuses() {
		if statusNames[s] == raw {
			return s, nil
		}
	}
	return statusUnknown, NewInvalidStatusError(raw)
}

// TransitionTable decides which {from, to} edges are allowed.
type TransitionTable struct {
	name    string
	allowed [statusCount][statusCount]bool
}

func (t TransitionTable) Name() string { return t.name }

func (t TransitionTable) Allows(from, to Status) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	return t.allowed[from][to]
}

// PermissiveTransitions allows every edge between valid statuses. This is the
// store's historical behaviour: admins can move an order anywhere.
func PermissiveTransitions() TransitionTable {
	t := TransitionTable{name: "permissive"}
	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			t.allowed[from][to] = true
		}
	}
	return t
}

// StrictTransitions only allows forward edges plus cancellation of
// unshipped and shipped orders. Re-applying the current status is always
// allowed so retried requests stay harmless.
func StrictTransitions() TransitionTable {
	t := TransitionTable{name: "strict"}
	for _, s := range AllStatuses() {
		t.allowed[s][s] = true
	}
	t.allowed[StatusPending][StatusPaid] = true
	t.allowed[StatusPending][StatusCancelled] = true
	t.allowed[StatusPaid][StatusShipped] = true
	t.allowed[StatusPaid][StatusCancelled] = true
	t.allowed[StatusShipped][StatusCancelled] = true
	return t
}
