package services

type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeNotFound
	OutcomeDeclined
	// OutcomeRejected means the operation was not attempted; the error says why.
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeNotFound:
		return "not found"
	case OutcomeDeclined:
		return "declined"
	case OutcomeRejected:
		return "rejected"
	}
	return "unknown"
}
