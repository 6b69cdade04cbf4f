package wizard

type Step int

const (
	StepSelectRoom Step = iota + 1
	StepGuestDetails
	StepPayment
	StepConfirmed
)

func (s Step) String() string {
	switch s {
	case StepSelectRoom:
		return "select-room"
	case StepGuestDetails:
		return "guest-details"
	case StepPayment:
		return "payment"
	case StepConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}
