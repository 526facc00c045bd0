// Package pipeline replays a scene recipe: it acquires every item's
// payloads, builds the items and spawns their instances. A Run is a task
// that advances by one step per Update, so a host can drive it from its
// own tick.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/kensetsu/internal/acquire"
	"github.com/Faultbox/kensetsu/internal/assets"
	"github.com/Faultbox/kensetsu/internal/materialize"
	"github.com/Faultbox/kensetsu/internal/scene"
	"github.com/Faultbox/kensetsu/pkg/recipe"
)

// ErrAcquisition wraps the fetch error that aborted a run.
var ErrAcquisition = errors.New("asset acquisition failed")

// Materializer builds a placeable item from its fetched payloads.
type Materializer interface {
	Build(item recipe.Item) (*materialize.Placeable, error)
}

// Deps are the collaborators of a run.
type Deps struct {
	Fetcher acquire.Fetcher
	Store   *assets.Store
	Builder Materializer
	Placer  scene.Placer
	Workers int // parallel builds, 1 or less builds one item per step
	Log     *zap.Logger
}

// Run is one replay of a recipe.
type Run struct {
	recipe *recipe.Recipe
	deps   Deps
	log    *zap.Logger

	current Phase
	next    Phase
	done    bool
	err     error

	placeables map[int]*materialize.Placeable
	report     Report
}

// NewRun creates a run that starts with acquisition on its first Update.
func NewRun(rc *recipe.Recipe, deps Deps) *Run {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Workers < 1 {
		deps.Workers = 1
	}
	r := &Run{
		recipe:     rc,
		deps:       deps,
		log:        deps.Log,
		placeables: make(map[int]*materialize.Placeable),
	}
	r.Change(&acquirePhase{})
	return r
}

// Phase returns the name of the current phase.
func (r *Run) Phase() string {
	if r.done {
		return "done"
	}
	if r.current == nil {
		return "pending"
	}
	return r.current.Name()
}

// Change schedules a phase change for the next Update.
func (r *Run) Change(next Phase) {
	r.next = next
}

// Update processes a pending phase change, then advances the current phase
// by one step. It returns the error that ended the run, if any.
func (r *Run) Update(ctx context.Context) error {
	if r.done {
		return r.err
	}
	if err := ctx.Err(); err != nil {
		r.finish(err)
		return err
	}

	if r.next != nil {
		if r.current != nil {
			r.log.Debug("leaving phase", zap.String("phase", r.current.Name()))
		}
		r.current = r.next
		r.next = nil
		r.log.Debug("entering phase", zap.String("phase", r.current.Name()))
		if err := r.current.Enter(r); err != nil {
			r.finish(err)
			return err
		}
		if r.done {
			return r.err
		}
	}

	if err := r.current.Update(ctx, r); err != nil {
		r.finish(err)
	}
	return r.err
}

// Done reports whether the run has finished.
func (r *Run) Done() bool {
	return r.done
}

// Err returns the error that ended the run.
func (r *Run) Err() error {
	return r.err
}

// Report returns the outcome so far.
func (r *Run) Report() Report {
	return r.report
}

// Placeable returns the item built for itemID.
func (r *Run) Placeable(itemID int) (*materialize.Placeable, bool) {
	p, ok := r.placeables[itemID]
	return p, ok
}

// Wait drives the run to completion without pausing between steps.
func (r *Run) Wait(ctx context.Context) (Report, error) {
	for !r.done {
		r.Update(ctx)
	}
	return r.report, r.err
}

func (r *Run) finish(err error) {
	r.done = true
	r.err = err
	r.current = nil
	r.next = nil
	if err != nil {
		r.log.Error("run aborted", zap.Error(err))
		return
	}
	r.log.Info("run complete",
		zap.Int("built", len(r.report.Built)),
		zap.Int("failed", len(r.report.BuildErrors())),
		zap.Int("placed", r.report.Placed),
		zap.Int("skipped", len(r.report.Unresolved)))
}

// BuildAndSpawn replays rc to completion.
func BuildAndSpawn(ctx context.Context, rc *recipe.Recipe, deps Deps) (Report, error) {
	return NewRun(rc, deps).Wait(ctx)
}

func acquisitionError(err error) error {
	return fmt.Errorf("%w: %w", ErrAcquisition, err)
}
