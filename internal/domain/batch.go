package domain

import "fmt"

// BatchOutcome is the result of one per-entrant write in a fan-out.
type BatchOutcome struct {
	EntrantID uint
	Err       error
}

// PartialBatchError reports a fan-out in which some of the per-entrant
// writes failed. Already-completed writes are not rolled back; callers
// reconcile using the per-entrant outcomes.
type PartialBatchError struct {
	Outcomes []BatchOutcome
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("%d of %d entrant writes failed", len(e.Failed()), len(e.Outcomes))
}

// Failed returns only the outcomes that carry an error.
func (e *PartialBatchError) Failed() []BatchOutcome {
	var failed []BatchOutcome
	for _, o := range e.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}

	return failed
}
