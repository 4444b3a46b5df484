// Package compose renders a collage by running ImageMagick's montage.
package compose

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/llehouerou/albumgallery/internal/layout"
)

// Defaults for Options.
const (
	DefaultCommand    = "montage"
	DefaultBackground = "black"
	DefaultOutput     = "collage.jpg"
)

// ErrNoItems is returned when there is nothing to render.
var ErrNoItems = errors.New("no covers to render")

// Runner runs an external program and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs programs with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Options configures the montage invocation.
type Options struct {
	Command    string
	Background string
	Output     string
}

func (o Options) withDefaults() Options {
	if o.Command == "" {
		o.Command = DefaultCommand
	}
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	if o.Output == "" {
		o.Output = DefaultOutput
	}
	return o
}

// Result describes a rendered collage.
type Result struct {
	Output string
	Bytes  int64
}

// Compositor renders plans with a Runner.
type Compositor struct {
	runner Runner
	opts   Options
}

// New creates a Compositor. A nil runner uses ExecRunner.
func New(runner Runner, opts Options) *Compositor {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Compositor{runner: runner, opts: opts.withDefaults()}
}

// Args builds the montage arguments:
//
//	-background <bg> -tile <W>x<H> -geometry <G>x<G>+0+0 <files...> <output>
func Args(plan layout.Plan, files []string, opts Options) []string {
	opts = opts.withDefaults()
	g := strconv.Itoa(plan.Geometry)

	args := make([]string, 0, len(files)+7)
	args = append(args,
		"-background", opts.Background,
		"-tile", plan.Tile.String(),
		"-geometry", g+"x"+g+"+0+0",
	)
	args = append(args, files...)
	return append(args, opts.Output)
}

// Render composes files, already in display order, onto the plan's grid.
func (c *Compositor) Render(ctx context.Context, plan layout.Plan, files []string) (Result, error) {
	if len(files) == 0 || plan.Empty() {
		return Result{}, ErrNoItems
	}
	if plan.Tile.Cells() < len(files) {
		return Result{}, fmt.Errorf("grid %s cannot hold %d covers", plan.Tile, len(files))
	}

	if dir := filepath.Dir(c.opts.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Result{}, fmt.Errorf("create directory: %w", err)
		}
	}

	output, err := c.runner.Run(ctx, c.opts.Command, Args(plan, files, c.opts)...)
	if err != nil {
		return Result{}, fmt.Errorf("%s failed: %w\n%s", c.opts.Command, err, strings.TrimSpace(string(output)))
	}

	res := Result{Output: c.opts.Output}
	if info, err := os.Stat(c.opts.Output); err == nil {
		res.Bytes = info.Size()
	}
	return res, nil
}
