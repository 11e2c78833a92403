package core

// Outcome is the decision for a presented record. There are exactly two
// outcomes; the filter has no fault states.
type Outcome int

const (
	Admit Outcome = iota
	Reject
)

func (o Outcome) String() string {
	switch o {
	case Admit:
		return "admit"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

// Evaluate applies the risk predicate to a single record. Pure function of
// the current amount, the active limit, and the enable flag; re-evaluated
// every cycle with no memory. The limit is an inclusive ceiling: an amount
// equal to the active limit admits. When the filter is disabled every
// record admits regardless of amount.
func Evaluate(amount, activeLimit uint64, enable bool) Outcome {
	if enable && amount > activeLimit {
		return Reject
	}
	return Admit
}
