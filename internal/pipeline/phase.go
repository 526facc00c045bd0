package pipeline

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/kensetsu/internal/acquire"
	"github.com/Faultbox/kensetsu/internal/materialize"
	"github.com/Faultbox/kensetsu/pkg/recipe"
)

// Phase is one stage of a run.
type Phase interface {
	Name() string

	// Enter is called once when the run switches to this phase.
	Enter(r *Run) error

	// Update advances the phase by one step. A finished phase schedules
	// the next one with Run.Change or ends the run.
	Update(ctx context.Context, r *Run) error
}

type acquirePhase struct {
	batch *acquire.Batch
}

func (p *acquirePhase) Name() string { return "acquire" }

func (p *acquirePhase) Enter(r *Run) error {
	ids := make([]int, len(r.recipe.Items))
	for i, it := range r.recipe.Items {
		ids[i] = it.ItemID
	}
	if err := r.deps.Store.Prepare(ids); err != nil {
		return err
	}
	p.batch = acquire.NewBatch(r.deps.Fetcher, r.deps.Store, r.recipe.Items, r.log)
	return nil
}

func (p *acquirePhase) Update(ctx context.Context, r *Run) error {
	if !p.batch.Step(ctx) {
		return nil
	}

	res := p.batch.Result()
	r.report.Acquisition = res
	if !res.OK() {
		return acquisitionError(res.Err)
	}
	r.log.Info("acquired all items", zap.Int("items", len(res.Completed)))
	r.Change(newBuildPhase(r))
	return nil
}

type buildPhase struct {
	items []recipe.Item
	next  int
	mu    sync.Mutex
}

// newBuildPhase queues each item id once, at its first position in the
// recipe. A later definition of the same id replaces the earlier one, as
// its payloads were fetched last into the shared item folder.
func newBuildPhase(r *Run) *buildPhase {
	p := &buildPhase{}
	at := make(map[int]int, len(r.recipe.Items))
	for _, it := range r.recipe.Items {
		if i, ok := at[it.ItemID]; ok {
			r.log.Warn("duplicate item id, using last definition", zap.Int("item", it.ItemID))
			p.items[i] = it
			continue
		}
		at[it.ItemID] = len(p.items)
		p.items = append(p.items, it)
	}
	return p
}

func (p *buildPhase) Name() string { return "build" }

func (p *buildPhase) Enter(r *Run) error { return nil }

func (p *buildPhase) Update(ctx context.Context, r *Run) error {
	if r.deps.Workers > 1 {
		if err := p.buildAll(ctx, r); err != nil {
			return err
		}
	} else if p.next < len(p.items) {
		it := p.items[p.next]
		p.next++
		pl, err := r.deps.Builder.Build(it)
		p.record(r, it, pl, err)
	}

	if p.next >= len(p.items) {
		slices.Sort(r.report.Built)
		r.Change(&spawnPhase{})
	}
	return nil
}

// buildAll builds every remaining item with up to Workers builds at once.
func (p *buildPhase) buildAll(ctx context.Context, r *Run) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.deps.Workers)

	for _, it := range p.items[p.next:] {
		it := it
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pl, err := r.deps.Builder.Build(it)
			p.record(r, it, pl, err)
			return nil
		})
	}
	p.next = len(p.items)
	return g.Wait()
}

func (p *buildPhase) record(r *Run, it recipe.Item, pl *materialize.Placeable, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		r.log.Error("item build failed", zap.Int("item", it.ItemID), zap.Error(err))
		r.report.Failed = multierr.Append(r.report.Failed, err)
		return
	}
	r.placeables[it.ItemID] = pl
	r.report.Built = append(r.report.Built, it.ItemID)
}

type spawnPhase struct {
	next int
}

func (p *spawnPhase) Name() string { return "spawn" }

func (p *spawnPhase) Enter(r *Run) error { return nil }

func (p *spawnPhase) Update(ctx context.Context, r *Run) error {
	spawns := r.recipe.Spawns
	if p.next < len(spawns) {
		i := p.next
		p.next++
		p.spawn(r, i, spawns[i])
	}
	if p.next >= len(spawns) {
		r.finish(nil)
	}
	return nil
}

func (p *spawnPhase) spawn(r *Run, i int, s recipe.Spawn) {
	pl, ok := r.placeables[s.ItemID]
	if !ok {
		ref := &UnresolvedReferenceError{Spawn: i, ItemID: s.ItemID}
		r.log.Warn("skipping spawn", zap.Error(ref))
		r.report.Unresolved = append(r.report.Unresolved, ref)
		return
	}

	inst, err := r.deps.Placer.Instantiate(pl, s.Transform())
	if err != nil {
		r.log.Error("instantiate failed", zap.Int("spawn", i), zap.Int("item", s.ItemID), zap.Error(err))
		return
	}
	r.report.Placed++
	r.log.Debug("placed", zap.String("name", inst.Name), zap.Int("item", s.ItemID))
}
