package pipeline

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/kensetsu/internal/acquire"
)

// UnresolvedReferenceError reports a spawn whose item was not built.
type UnresolvedReferenceError struct {
	Spawn  int // index in the recipe spawn list
	ItemID int
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("spawn %d: item %d not available", e.Spawn, e.ItemID)
}

// Report summarises a run.
type Report struct {
	Acquisition acquire.Result
	Built       []int // item ids, ascending
	Failed      error // per-item build errors combined with multierr
	Placed      int
	Unresolved  []*UnresolvedReferenceError
}

// BuildErrors returns the individual build errors.
func (r Report) BuildErrors() []error {
	return multierr.Errors(r.Failed)
}
