// Package funnel tracks how far a visitor got through the booking flow
// (vehicle selected, booking form filled, checkout submitted) and guards the
// later steps from being opened directly.
package funnel

import "fmt"

type Step int

const (
	NoProgress Step = iota
	AtBooking
	AtCheckout
	Submitted
)

var stepNames = map[Step]string{
	NoProgress: "none",
	AtBooking:  "booking",
	AtCheckout: "checkout",
	Submitted:  "submitted",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Step) UnmarshalText(text []byte) error {
	for step, name := range stepNames {
		if name == string(text) {
			*s = step
			return nil
		}
	}
	return fmt.Errorf("funnel: unknown step %q", text)
}

// Requirement names the guarded stages of the flow.
type Requirement int

const (
	RequireBooking Requirement = iota + 1
	RequireCheckout
	RequireSubmitted
)

// MinStep is the least progress that opens the stage.
func (r Requirement) MinStep() Step {
	switch r {
	case RequireBooking:
		return AtBooking
	case RequireCheckout:
		return AtCheckout
	case RequireSubmitted:
		return Submitted
	}
	panic(fmt.Sprintf("funnel: unknown requirement %d", int(r)))
}

func (r Requirement) String() string {
	return r.MinStep().String()
}

// Satisfies applies the exact-or-later rule: a visitor at checkout may still
// open the booking form, but not the confirmation page.
func (s Step) Satisfies(r Requirement) bool {
	return s >= r.MinStep()
}
