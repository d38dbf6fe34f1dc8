package dispatch

import "fmt"

// Emission stages reported by EmissionError.
const (
	StagePage     = "page"
	StageDispatch = "dispatch"
	StageOffer    = "offer"
)

// EmissionError describes a contained failure of a single emission. It is only logged;
// callers of the dispatcher never see it.
type EmissionError struct {
	Event string
	Stage string
	Err   error
}

func (e *EmissionError) Error() string {
	return fmt.Sprintf("emission of %s failed at %s: %v", e.Event, e.Stage, e.Err)
}

func (e *EmissionError) Unwrap() error {
	return e.Err
}
