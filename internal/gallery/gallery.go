// Package gallery runs the collage pipeline: discover covers, reuse cached
// colors, analyze the rest, then filter, order and lay out the result.
package gallery

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/llehouerou/albumgallery/internal/cache"
	"github.com/llehouerou/albumgallery/internal/cover"
	"github.com/llehouerou/albumgallery/internal/dominant"
	"github.com/llehouerou/albumgallery/internal/errmsg"
	"github.com/llehouerou/albumgallery/internal/imageio"
	"github.com/llehouerou/albumgallery/internal/layout"
	"github.com/llehouerou/albumgallery/internal/ordering"
)

// DefaultWorkers is the analysis pool size when none is configured.
const DefaultWorkers = 8

// Phase names a pipeline stage.
type Phase string

const (
	PhaseScanning  Phase = "scanning"
	PhaseAnalyzing Phase = "analyzing"
	PhaseOrdering  Phase = "ordering"
	PhaseDone      Phase = "done"
)

// Progress reports the state of a run.
type Progress struct {
	Phase   Phase
	Current int
	Total   int
}

// Failure is a per-cover error. The cover is skipped unless Op is
// errmsg.OpCoverTags, in which case it is kept without metadata.
type Failure struct {
	Path string
	Op   errmsg.Op
	Err  error
}

func (f Failure) Error() string {
	return errmsg.FormatWith(f.Op, f.Path, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Options configures a run.
type Options struct {
	Folders  []string
	Patterns []string
	Method   dominant.Method
	Size     uint
	Workers  int
	Filter   cover.Filter
	Sort     ordering.Options
	Height   int
}

// Result is the outcome of a run.
type Result struct {
	// Items are the covers in display order.
	Items     []cover.Item
	Criterion ordering.Criterion
	Excluded  []ordering.Exclusion
	Failures  []Failure
	Plan      layout.Plan

	Discovered int
	Cached     int
	Analyzed   int
	Filtered   int
}

// Gallery builds collages from a music library. A nil store disables the
// color cache.
type Gallery struct {
	store cache.Store
	opts  Options
}

// New creates a Gallery.
func New(store cache.Store, opts Options) *Gallery {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Size == 0 {
		opts.Size = imageio.DefaultSize
	}
	return &Gallery{store: store, opts: opts}
}

// Build runs the pipeline. progress may be nil; otherwise it receives
// updates and is closed when Build returns.
func (g *Gallery) Build(ctx context.Context, progress chan<- Progress) (Result, error) {
	if progress != nil {
		defer close(progress)
	}

	var res Result

	report(ctx, progress, Progress{Phase: PhaseScanning})
	paths, err := cover.Discover(g.opts.Folders, g.opts.Patterns)
	if err != nil {
		return res, err
	}
	res.Discovered = len(paths)
	log.WithField("covers", len(paths)).Debug("discovered covers")

	known, err := g.loadCache()
	if err != nil {
		return res, fmt.Errorf("%s: %w", errmsg.OpCacheLoad, err)
	}

	var pending []string
	for _, p := range paths {
		if _, ok := known[p]; !ok {
			pending = append(pending, p)
		}
	}
	res.Cached = len(paths) - len(pending)
	log.WithFields(log.Fields{
		"cached":  res.Cached,
		"pending": len(pending),
	}).Debug("color cache lookup")

	analyzed, failures := g.analyze(ctx, pending, progress)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	res.Failures = failures
	res.Analyzed = len(analyzed)

	fresh := make([]cover.Item, 0, len(analyzed))
	for _, p := range pending {
		if it, ok := analyzed[p]; ok {
			fresh = append(fresh, it)
		}
	}
	g.saveCache(fresh)

	// Discovery order keeps the run deterministic before sorting.
	items := make([]cover.Item, 0, len(paths))
	for _, p := range paths {
		if it, ok := known[p]; ok {
			items = append(items, it)
		} else if it, ok := analyzed[p]; ok {
			items = append(items, it)
		}
	}

	report(ctx, progress, Progress{Phase: PhaseOrdering, Current: 0, Total: len(items)})
	filtered := g.opts.Filter.Apply(items)
	res.Filtered = len(items) - len(filtered)

	sorted := ordering.Sort(filtered, g.opts.Sort)
	if sorted.Criterion != g.opts.Sort.Criterion {
		log.WithFields(log.Fields{
			"requested": g.opts.Sort.Criterion,
			"used":      sorted.Criterion,
		}).Warn("no cover has a usable release year, falling back")
	}
	for _, ex := range sorted.Excluded {
		log.Warn(errmsg.FormatWith(errmsg.OpCoverSort, ex.Item.Path, ex.Err))
	}

	res.Items = sorted.Items
	res.Criterion = sorted.Criterion
	res.Excluded = sorted.Excluded
	res.Plan = layout.NewPlan(len(res.Items), g.opts.Height)

	report(ctx, progress, Progress{Phase: PhaseDone, Current: len(res.Items), Total: len(res.Items)})
	return res, nil
}

func (g *Gallery) loadCache() (map[string]cover.Item, error) {
	if g.store == nil {
		return map[string]cover.Item{}, nil
	}
	items, err := g.store.Load()
	if err != nil {
		return nil, err
	}
	return cache.Index(items), nil
}

// saveCache merges fresh records. Errors are logged, not returned.
func (g *Gallery) saveCache(fresh []cover.Item) {
	if g.store == nil || len(fresh) == 0 {
		return
	}
	added, err := g.store.Merge(fresh)
	if err != nil {
		log.Warn(errmsg.Format(errmsg.OpCacheSave, err))
		return
	}
	log.WithField("added", added).Debug("color cache updated")
}

// report sends p unless progress is nil or ctx is done.
func report(ctx context.Context, progress chan<- Progress, p Progress) {
	if progress == nil {
		return
	}
	select {
	case progress <- p:
	case <-ctx.Done():
	}
}
