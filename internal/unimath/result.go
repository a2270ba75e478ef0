package unimath

// Result is the outcome of transliterating one span: Rendered or Refused.
// The interface is sealed; callers type-switch on the two variants.
type Result interface {
	isResult()
}

// Rendered carries an exact Unicode rendering of the span.
type Rendered struct {
	Text string
}

// Refused explains why no exact Unicode rendering exists.
type Refused struct {
	Reason string
}

func (Rendered) isResult() {}
func (Refused) isResult()  {}

func (r Rendered) String() string { return "Rendered(" + r.Text + ")" }
func (r Refused) String() string  { return "Refused(" + r.Reason + ")" }
