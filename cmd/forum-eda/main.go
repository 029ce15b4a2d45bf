package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/config"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/logger"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/metrics"
)

const usage = `usage: forum-eda <command> [flags]

commands:
  stats          value counts and posting-time histograms
  daily          author x day post counts (CSV)
  weekly         author x week post counts (CSV)
  cluster        spectral clustering of daily activity
  topics         LDA topics over every post
  weekly-topics  per-author keywords for every week (CSV)
  import         load the dump into Postgres
  serve          HTTP API over the Postgres store

run "forum-eda <command> -h" for the flags of a command.
`

var errUsage = errors.New("usage")

type app struct {
	cfg     config.Config
	log     *logger.Logger
	metrics *metrics.Metrics
	reg     *prometheus.Registry
	out     io.Writer
}

func main() {
	// .env is optional
	_ = godotenv.Load()
	cfg := config.Parse()
	log := logger.NewLogger("forum-eda", cfg.LogLevel)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	a := &app{cfg: cfg, log: log, metrics: metrics.New(reg), reg: reg, out: os.Stdout}

	err := a.run(ctx, os.Args[1], os.Args[2:])
	switch {
	case errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	case err != nil:
		log.WithError(err).WithField("command", os.Args[1]).Error("command failed")
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "stats":
		return a.stats(ctx, args)
	case "daily":
		return a.daily(ctx, args)
	case "weekly":
		return a.weekly(ctx, args)
	case "cluster":
		return a.cluster(ctx, args)
	case "topics":
		return a.topics(ctx, args)
	case "weekly-topics":
		return a.weeklyTopics(ctx, args)
	case "import":
		return a.importPosts(ctx, args)
	case "serve":
		return a.serve(ctx, args)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}
