package order

// validTransitions is the status state machine. Any edge not listed is
// illegal. The map is never mutated after init, so it is safe to consult
// from concurrent requests.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition reports whether from -> to is an allowed edge.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// Terminal reports whether no further transition is allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Active reports whether s is an in-flight state: the order exists but the
// table has not been served yet.
func (s OrderStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusPreparing
}

// Statuses lists every valid status, for error messages and query validation.
func Statuses() []OrderStatus {
	return []OrderStatus{
		StatusPending, StatusConfirmed, StatusPreparing,
		StatusReady, StatusCompleted, StatusCancelled,
	}
}
