package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"time"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/activity"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/chart"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/cluster"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/domain"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/ingest"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/pipeline"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/stats"
	spg "github.com/NYU-MSDSE-SWG/dark-web/internal/storage/postgres"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/text"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/topics"
)

// sourceFlags are shared by every command that reads posts.
type sourceFlags struct {
	input  string
	fromDB bool
	flush  bool
}

func (a *app) flagSet(name string, sf *sourceFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	fs.StringVar(&sf.input, "input", a.cfg.Input, "forum dump, one JSON post per line")
	fs.BoolVar(&sf.fromDB, "from-db", false, "read imported posts from Postgres instead of -input")
	fs.BoolVar(&sf.flush, "flush", a.cfg.FlushTrailingWeek, "keep the trailing, unclosed week")
	return fs
}

// pipeline builds a run over the selected source. The returned close func
// releases the database pool when one was opened.
func (a *app) pipeline(ctx context.Context, sf sourceFlags) (*pipeline.Pipeline, func(), error) {
	var src pipeline.Source = pipeline.FileSource{Path: sf.input}
	closeFn := func() {}
	if sf.fromDB {
		db, err := spg.Connect(ctx, a.cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("db connect: %w", err)
		}
		src = pipeline.StoreSource{Store: db, Filter: spg.Filter{From: 0, To: math.MaxInt64}}
		closeFn = db.Close
	}
	return &pipeline.Pipeline{
		Log:       a.log,
		Metrics:   a.metrics,
		Tokenizer: text.NewTokenizer(text.DefaultStopwords()),
		Source:    src,
		Options: pipeline.Options{
			Transform:     activity.TransformKind(a.cfg.Transform),
			Clusters:      a.cfg.Clusters,
			FlushTrailing: sf.flush,
			LDA: topics.Options{
				Topics:     a.cfg.LDATopics,
				Workers:    a.cfg.LDAWorkers,
				Iterations: a.cfg.LDAIterations,
			},
			WeeklyTopics: a.cfg.LDAWeeklyTopics,
			TopicWords:   a.cfg.LDAWords,
			Keywords:     topics.DefaultKeywords,
		},
	}, closeFn, nil
}

func (a *app) printChart(cfg chart.ChartConfig) error {
	url, err := chart.GetChartImageUrlForConfig(cfg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, url)
	return err
}

func (a *app) stats(ctx context.Context, args []string) error {
	var sf sourceFlags
	fs := a.flagSet("stats", &sf)
	asJSON := fs.Bool("json", false, "print the summary as JSON")
	top := fs.Int("top", 10, "rows per value-count listing")
	plot := fs.Bool("plot", false, "print chart URLs for the time histograms")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, done, err := a.pipeline(ctx, sf)
	if err != nil {
		return err
	}
	defer done()

	s, err := p.Stats(ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	if err := writeSummary(a.out, s, *top); err != nil {
		return err
	}
	if *plot {
		for _, h := range []stats.Histogram{s.Times.Hour, s.Times.Weekday, s.Times.Year, s.Times.Month} {
			if err := a.printChart(chart.Histogram(h)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *app) daily(ctx context.Context, args []string) error {
	var sf sourceFlags
	fs := a.flagSet("daily", &sf)
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, done, err := a.pipeline(ctx, sf)
	if err != nil {
		return err
	}
	defer done()

	daily, err := p.DailyCounts(ctx)
	if err != nil {
		return err
	}
	return writeCSV(a.out, daily, formatCount)
}

func (a *app) weekly(ctx context.Context, args []string) error {
	var sf sourceFlags
	fs := a.flagSet("weekly", &sf)
	author := fs.String("plot-author", "", "print a chart URL for this author's weekly series")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, done, err := a.pipeline(ctx, sf)
	if err != nil {
		return err
	}
	defer done()

	weekly, err := p.Weekly(ctx)
	if err != nil {
		return err
	}
	if *author != "" {
		cfg, err := chart.AuthorSeries(weekly, *author)
		if err != nil {
			return err
		}
		return a.printChart(cfg)
	}
	return writeCSV(a.out, weekly, formatCount)
}

func (a *app) cluster(ctx context.Context, args []string) error {
	var sf sourceFlags
	fs := a.flagSet("cluster", &sf)
	k := fs.Int("k", a.cfg.Clusters, "number of clusters")
	transform := fs.String("transform", a.cfg.Transform, "identity, log, row_norm or log_diff")
	plotLabel := fs.Int("plot-label", -1, "print a chart URL for the members of this cluster")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, done, err := a.pipeline(ctx, sf)
	if err != nil {
		return err
	}
	defer done()
	p.Options.Clusters = *k
	p.Options.Transform = activity.TransformKind(*transform)

	res, err := p.Cluster(ctx)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(a.out, "Cluster sizes:", res.Sizes); err != nil {
		return err
	}
	if *plotLabel >= 0 {
		members := cluster.Members(res.Labels, *plotLabel)
		return a.printChart(chart.ClusterSeries(res.Series, members, *plotLabel))
	}
	return nil
}

func (a *app) topics(ctx context.Context, args []string) error {
	var sf sourceFlags
	fs := a.flagSet("topics", &sf)
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, done, err := a.pipeline(ctx, sf)
	if err != nil {
		return err
	}
	defer done()

	_, err = p.Topics(ctx, a.out)
	return err
}

func (a *app) weeklyTopics(ctx context.Context, args []string) error {
	var sf sourceFlags
	fs := a.flagSet("weekly-topics", &sf)
	n := fs.Int("keywords", topics.DefaultKeywords, "keyword budget per author-week")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, done, err := a.pipeline(ctx, sf)
	if err != nil {
		return err
	}
	defer done()
	p.Options.Keywords = *n

	kw, err := p.WeeklyTopics(ctx)
	if err != nil {
		return err
	}
	return writeCSV(a.out, kw, func(s string) string { return s })
}

func (a *app) importPosts(ctx context.Context, args []string) error {
	var sf sourceFlags
	fs := a.flagSet("import", &sf)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if sf.fromDB {
		return fmt.Errorf("%w: import reads -input only", errUsage)
	}
	p, done, err := a.pipeline(ctx, sf)
	if err != nil {
		return err
	}
	defer done()

	db, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	return a.runImport(ctx, p, spg.NewWriter(db))
}

// runImport queues every valid post for w and fails if any batch insert did.
func (a *app) runImport(ctx context.Context, p *pipeline.Pipeline, w ingest.BatchWriter) error {
	ig := ingest.NewIngestor(w, a.cfg.QueueMaxSize, a.cfg.BatchMaxSize, a.cfg.BatchMaxWait,
		a.log.Component("import"), a.metrics)
	ig.Start(ctx)

	now := time.Now().UTC()
	validate := func(post *domain.Post) []domain.FieldError {
		return domain.ValidatePost(post, now, a.cfg.ClockSkew)
	}
	submitted, skipped, err := p.Import(ctx, ig, validate)
	ig.Close()
	if werr := ig.Wait(); err == nil {
		err = werr
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "submitted=%d skipped=%d\n", submitted, skipped)
	return err
}

// openStore connects and applies the schema.
func (a *app) openStore(ctx context.Context) (*spg.DB, error) {
	db, err := spg.Connect(ctx, a.cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration: %w", err)
	}
	a.log.Component("db").Info("migration applied")
	return db, nil
}
