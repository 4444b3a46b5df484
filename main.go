package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/llehouerou/albumgallery/internal/cache"
	"github.com/llehouerou/albumgallery/internal/compose"
	"github.com/llehouerou/albumgallery/internal/config"
	"github.com/llehouerou/albumgallery/internal/cover"
	"github.com/llehouerou/albumgallery/internal/dominant"
	"github.com/llehouerou/albumgallery/internal/errmsg"
	"github.com/llehouerou/albumgallery/internal/gallery"
	"github.com/llehouerou/albumgallery/internal/ordering"
	"github.com/llehouerou/albumgallery/internal/report"
)

type options struct {
	asc     string
	desc    string
	genre   string
	artist  string
	year    int
	decade  int
	list    bool
	output  string
	height  int
	method  string
	backend string
	noCache bool
	quiet   bool
	verbose bool
}

func parseFlags(args []string) (options, []string, error) {
	var o options
	fs := flag.NewFlagSet("albumgallery", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: albumgallery [flags] [folder...]\n\n")
		fmt.Fprintf(fs.Output(), "Orders album covers by color and renders them as a collage.\n")
		fmt.Fprintf(fs.Output(), "Criteria: step (default), rgb, year, lum.\n\n")
		fs.PrintDefaults()
	}

	fs.StringVar(&o.asc, "s", "", "sort ascending by `criterion`")
	fs.StringVar(&o.asc, "asc", "", "sort ascending by `criterion`")
	fs.StringVar(&o.desc, "S", "", "sort descending by `criterion` (wins over -s)")
	fs.StringVar(&o.desc, "desc", "", "sort descending by `criterion` (wins over -asc)")
	fs.StringVar(&o.genre, "g", "", "keep albums of any of these `genres` (semicolon-separated)")
	fs.StringVar(&o.genre, "genre", "", "keep albums of any of these `genres` (semicolon-separated)")
	fs.StringVar(&o.artist, "a", "", "keep albums whose artist contains `name`")
	fs.StringVar(&o.artist, "artist", "", "keep albums whose artist contains `name`")
	fs.IntVar(&o.year, "y", 0, "keep albums released in `year`")
	fs.IntVar(&o.year, "year", 0, "keep albums released in `year`")
	fs.IntVar(&o.decade, "decade", 0, "keep albums released in the decade starting at `year`")
	fs.BoolVar(&o.list, "list", false, "print the ordered covers")
	fs.StringVar(&o.output, "o", "", "render the collage to `file`")
	fs.StringVar(&o.output, "output", "", "render the collage to `file`")
	fs.IntVar(&o.height, "height", 0, "collage height in `pixels`")
	fs.StringVar(&o.method, "method", "", "color extraction `method`: histogram, dominantcolor, kmeans, mediancut")
	fs.StringVar(&o.backend, "cache", "", "cache `backend`: json or sqlite")
	fs.BoolVar(&o.noCache, "no-cache", false, "ignore and do not update the color cache")
	fs.BoolVar(&o.quiet, "q", false, "no progress bar or summary")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return o, nil, err
	}
	return o, fs.Args(), nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, folders, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}

	setupLogging(cfg.GetLogLevel(), opts.verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sortOpts := resolveSort(opts, cfg.GetSortConfig())

	extract := cfg.GetExtractConfig()
	methodName := extract.Method
	if opts.method != "" {
		methodName = opts.method
	}
	method, err := dominant.ParseMethod(methodName)
	if err != nil {
		return err
	}

	if len(folders) == 0 {
		folders = cfg.GetFolders()
	}

	collage := cfg.GetCollageConfig()
	if opts.height > 0 {
		collage.Height = opts.height
	}
	if opts.output != "" {
		collage.Output = opts.output
	}

	var store cache.Store
	if !opts.noCache {
		cc := cfg.GetCacheConfig()
		if opts.backend != "" {
			cc.Backend = opts.backend
		}
		store, err = cache.Open(cc.Backend, cc.Path)
		if err != nil {
			return errors.New(errmsg.Format(errmsg.OpCacheOpen, err))
		}
		defer store.Close()
	}

	g := gallery.New(store, gallery.Options{
		Folders:  folders,
		Patterns: cfg.GetCoverPatterns(),
		Method:   method,
		Size:     uint(extract.Size), //nolint:gosec // bounded by GetExtractConfig
		Workers:  extract.Workers,
		Filter: cover.Filter{
			Genres: cover.ParseGenres(opts.genre),
			Artist: opts.artist,
			Year:   opts.year,
			Decade: opts.decade,
		},
		Sort:   sortOpts,
		Height: collage.Height,
	})

	res, err := build(ctx, g, opts.quiet)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpCoverScan, err))
	}

	if !opts.quiet {
		_ = report.Summary(os.Stderr, res)
	}

	render := shouldRender(opts, cfg)
	if opts.list || !render {
		if err := report.List(os.Stdout, res.Items, report.IsTerminal(os.Stdout)); err != nil {
			return err
		}
	}
	if !render {
		return nil
	}

	c := compose.New(nil, compose.Options{
		Command:    collage.Command,
		Background: collage.Background,
		Output:     collage.Output,
	})
	out, err := c.Render(ctx, res.Plan, cover.Paths(res.Items))
	if errors.Is(err, compose.ErrNoItems) {
		log.Warn("no covers to render")
		return nil
	}
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpCollageRender, collage.Output, err))
	}
	if !opts.quiet {
		fmt.Fprintln(os.Stderr, report.Written(out.Output, out.Bytes))
	}
	return nil
}

// build runs the pipeline, drawing a progress bar when stderr is a terminal.
func build(ctx context.Context, g *gallery.Gallery, quiet bool) (gallery.Result, error) {
	if quiet || !report.IsTerminal(os.Stderr) {
		return g.Build(ctx, nil)
	}

	progress := make(chan gallery.Progress)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		report.NewBar(os.Stderr).Drain(progress)
	}()

	res, err := g.Build(ctx, progress)
	<-drained
	return res, err
}

// shouldRender reports whether a collage is wanted: -o or collage.output.
func shouldRender(opts options, cfg *config.Config) bool {
	return opts.output != "" || cfg.RendersCollage()
}

// resolveSort picks the criterion and direction. -S wins over -s, and both
// win over the config file.
func resolveSort(opts options, sc config.SortConfig) ordering.Options {
	name := sc.Criterion
	dir := ordering.ResolveDirection(false, sc.Descending)
	if opts.asc != "" || opts.desc != "" {
		dir = ordering.ResolveDirection(opts.asc != "", opts.desc != "")
		name = opts.asc
		if opts.desc != "" {
			name = opts.desc
		}
	}

	criterion, ok := ordering.ParseCriterion(name)
	if !ok {
		log.WithField("criterion", name).Warn("unknown sort criterion, using step")
	}
	return ordering.Options{Criterion: criterion, Direction: dir}
}

func setupLogging(level string, verbose bool) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("unknown log level, using info")
		lvl = log.InfoLevel
	}
	if verbose {
		lvl = log.DebugLevel
	}
	log.SetLevel(lvl)
}
