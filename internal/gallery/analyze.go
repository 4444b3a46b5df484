package gallery

import (
	"cmp"
	"context"
	"errors"
	"io/fs"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/llehouerou/albumgallery/internal/cover"
	"github.com/llehouerou/albumgallery/internal/dominant"
	"github.com/llehouerou/albumgallery/internal/errmsg"
	"github.com/llehouerou/albumgallery/internal/imageio"
)

// analysis holds the outcome of processing one cover.
type analysis struct {
	item     cover.Item
	ok       bool
	failures []Failure
}

// analyze computes colors and metadata for paths in parallel. Covers that
// cannot be decoded are left out of the returned map.
func (g *Gallery) analyze(
	ctx context.Context,
	paths []string,
	progress chan<- Progress,
) (map[string]cover.Item, []Failure) {
	total := len(paths)
	items := make(map[string]cover.Item, total)
	if total == 0 {
		return items, nil
	}

	var processed atomic.Int64

	workCh := make(chan string, total)
	resultCh := make(chan analysis, total)

	var wg sync.WaitGroup
	for range min(g.opts.Workers, total) {
		wg.Go(func() {
			for path := range workCh {
				if ctx.Err() != nil {
					processed.Add(1)
					continue
				}
				resultCh <- g.analyzeOne(path)
				processed.Add(1)
			}
		})
	}

	go func() {
		for _, p := range paths {
			workCh <- p
		}
		close(workCh)
	}()

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				report(ctx, progress, Progress{
					Phase:   PhaseAnalyzing,
					Current: int(processed.Load()),
					Total:   total,
				})
			case <-done:
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var failures []Failure
	for r := range resultCh {
		for _, f := range r.failures {
			log.WithFields(log.Fields{
				"path": f.Path,
				"op":   f.Op,
			}).Warn(f.Err)
		}
		failures = append(failures, r.failures...)
		if r.ok {
			items[r.item.Path] = r.item
		}
	}

	close(done)
	<-stopped
	report(ctx, progress, Progress{Phase: PhaseAnalyzing, Current: total, Total: total})

	slices.SortStableFunc(failures, func(a, b Failure) int {
		return cmp.Compare(a.Path, b.Path)
	})
	return items, failures
}

// analyzeOne decodes a cover, extracts its dominant color and reads the
// album tags next to it. A tag failure keeps the cover with empty metadata.
func (g *Gallery) analyzeOne(path string) analysis {
	img, err := imageio.Load(path, g.opts.Size)
	if err != nil {
		op := errmsg.OpCoverDecode
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			op = errmsg.OpCoverOpen
		}
		return analysis{failures: []Failure{{Path: path, Op: op, Err: err}}}
	}

	res := analysis{ok: true}
	res.item = cover.Item{
		Path:  path,
		Color: dominant.FromImage(img, g.opts.Method),
	}

	meta, err := cover.ReadMetadata(path)
	if err != nil {
		res.failures = append(res.failures, Failure{Path: path, Op: errmsg.OpCoverTags, Err: err})
	}
	res.item.Tags = meta
	return res
}
