package checkout

// Step is the position in the linear checkout sequence.
type Step string

const (
	StepShipping     Step = "SHIPPING"
	StepPayment      Step = "PAYMENT"
	StepConfirmation Step = "CONFIRMATION"
)

func (s Step) IsTerminal() bool {
	return s == StepConfirmation
}

// String representation (for logging)
func (s Step) String() string {
	return string(s)
}
