package acquire

import (
	"context"

	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"github.com/Faultbox/kensetsu/internal/assets"
	"github.com/Faultbox/kensetsu/pkg/recipe"
)

// Kind says which payload of an item a job fetches.
type Kind int

const (
	KindModel Kind = iota
	KindTexture
)

// String returns the payload name.
func (k Kind) String() string {
	if k == KindModel {
		return "model"
	}
	return "texture"
}

// Job is one fetch.
type Job struct {
	ItemID int
	Kind   Kind
	URL    string
	Dest   string
}

// Result is the outcome of a batch: the first error, if any, and the
// items whose payloads were all fetched.
type Result struct {
	Err       error
	Completed []int
	Fetches   int
}

// OK reports whether every fetch of the batch succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Batch fetches item payloads in recipe order, model before texture, one
// fetch per Step. The first failure ends the batch: no later fetch is
// started and nothing already fetched is removed.
type Batch struct {
	fetcher Fetcher
	store   *assets.Store
	log     *zap.Logger

	jobs   []Job
	next   int
	done   bool
	result Result
}

// NewBatch plans the fetches for items.
func NewBatch(f Fetcher, store *assets.Store, items []recipe.Item, log *zap.Logger) *Batch {
	if log == nil {
		log = zap.NewNop()
	}
	jobs := make([]Job, 0, 2*len(items))
	for _, it := range items {
		jobs = append(jobs,
			Job{ItemID: it.ItemID, Kind: KindModel, URL: it.ModelURL, Dest: store.ModelPath(it.ItemID)},
			Job{ItemID: it.ItemID, Kind: KindTexture, URL: it.TextureURL, Dest: store.TexturePath(it.ItemID)},
		)
	}
	return &Batch{
		fetcher: f,
		store:   store,
		log:     log,
		jobs:    jobs,
		done:    len(jobs) == 0,
	}
}

// Jobs returns the planned fetches.
func (b *Batch) Jobs() []Job {
	return b.jobs
}

// Done reports whether the batch has finished, successfully or not.
func (b *Batch) Done() bool {
	return b.done
}

// Result returns the outcome so far.
func (b *Batch) Result() Result {
	return b.result
}

// Step performs the next fetch and reports whether the batch is done.
func (b *Batch) Step(ctx context.Context) bool {
	if b.done {
		return true
	}
	if err := ctx.Err(); err != nil {
		b.result.Err = err
		b.done = true
		return true
	}

	job := b.jobs[b.next]
	b.next++
	b.result.Fetches++

	b.log.Info("downloading",
		zap.Int("item", job.ItemID),
		zap.Stringer("payload", job.Kind),
		zap.String("url", job.URL),
		zap.String("dest", job.Dest))

	err := b.fetcher.Fetch(ctx, job.URL, job.Dest)
	b.store.Invalidate(job.Dest)
	if err != nil {
		b.result.Err = err
		b.done = true
		b.log.Debug("download failed", zap.Int("item", job.ItemID), zap.Error(err))
		return true
	}

	if kind, err := filetype.MatchFile(job.Dest); err == nil {
		b.log.Debug("downloaded",
			zap.Int("item", job.ItemID),
			zap.Stringer("payload", job.Kind),
			zap.String("detected", kind.Extension))
	}

	if job.Kind == KindTexture {
		b.result.Completed = append(b.result.Completed, job.ItemID)
	}
	if b.next == len(b.jobs) {
		b.done = true
	}
	return b.done
}

// AcquireAll runs a whole batch and returns its result.
func AcquireAll(ctx context.Context, f Fetcher, store *assets.Store, items []recipe.Item, log *zap.Logger) Result {
	b := NewBatch(f, store, items, log)
	for !b.Step(ctx) {
	}
	return b.Result()
}
