// Package pipeline runs the analyses end to end: load posts, build the
// activity matrices and hand them to the statistics, clustering and topic
// steps.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/activity"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/cluster"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/domain"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/logger"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/metrics"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/records"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/stats"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/table"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/text"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/topics"
)

// DefaultWeeklyTopics is the per-week model size when Options.WeeklyTopics
// is unset. A single week holds far fewer documents than the whole crawl.
const DefaultWeeklyTopics = 5

type Options struct {
	Transform     activity.TransformKind
	Clusters      int
	FlushTrailing bool
	LDA           topics.Options
	WeeklyTopics  int // topics per week model; LDA.Topics is for the corpus model
	TopicWords    int // words printed per topic
	Keywords      int // keyword budget per author-week
}

// weeklyLDA is LDA with the topic count swapped for the per-week one.
func (o Options) weeklyLDA() topics.Options {
	lda := o.LDA
	lda.Topics = o.WeeklyTopics
	if lda.Topics <= 0 {
		lda.Topics = DefaultWeeklyTopics
	}
	return lda
}

type Pipeline struct {
	Log       *logger.Logger
	Metrics   *metrics.Metrics
	Tokenizer text.Tokenizer
	Source    Source
	Options   Options
}

// ClusterResult labels every author of the transformed daily matrix.
type ClusterResult struct {
	Series *table.Table[float64]
	Labels []int
	Sizes  []int
}

// start tags every entry of one run with a fresh run id.
func (p *Pipeline) start(command string) *logrus.Entry {
	return p.Log.WithRunID(uuid.NewString()).WithField("command", command)
}

func (p *Pipeline) load(ctx context.Context, log *logrus.Entry) ([]records.Record, []domain.Post, error) {
	recs, posts, err := p.Source.Load(ctx)
	if err != nil {
		var mre *records.MalformedRecordError
		if errors.As(err, &mre) {
			p.Metrics.MalformedRecords.Inc()
		}
		return nil, nil, fmt.Errorf("load posts: %w", err)
	}
	p.Metrics.RecordsLoaded.Add(float64(len(posts)))
	log.WithField("posts", len(posts)).Info("posts loaded")
	return recs, posts, nil
}

func (p *Pipeline) weeklyOptions(log *logrus.Entry) []activity.WeeklyOption {
	opts := []activity.WeeklyOption{activity.WithObserver(func(closed []activity.Window, dropped int) {
		p.Metrics.ObserveWeekly(len(closed), dropped)
		entry := log.WithFields(logrus.Fields{"windows": len(closed), "dropped_days": dropped})
		if dropped > 0 {
			entry.Warn("trailing window dropped")
			return
		}
		entry.Debug("weekly windows closed")
	})}
	if p.Options.FlushTrailing {
		opts = append(opts, activity.WithTrailingWindow())
	}
	return opts
}

func (p *Pipeline) Stats(ctx context.Context) (stats.Summary, error) {
	log := p.start("stats")
	recs, posts, err := p.load(ctx, log)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Summarize(recs, posts), nil
}

func (p *Pipeline) DailyCounts(ctx context.Context) (*table.Table[float64], error) {
	log := p.start("daily")
	_, posts, err := p.load(ctx, log)
	if err != nil {
		return nil, err
	}
	daily := activity.DailyCounts(posts)
	log.WithFields(logrus.Fields{"authors": daily.NumRows(), "days": daily.NumColumns()}).Info("daily matrix built")
	return daily, nil
}

func (p *Pipeline) Weekly(ctx context.Context) (*table.Table[float64], error) {
	log := p.start("weekly")
	_, posts, err := p.load(ctx, log)
	if err != nil {
		return nil, err
	}
	weekly, err := activity.WeeklyCounts(activity.DailyCounts(posts), p.weeklyOptions(log)...)
	if err != nil {
		return nil, fmt.Errorf("weekly counts: %w", err)
	}
	log.WithFields(logrus.Fields{"authors": weekly.NumRows(), "weeks": weekly.NumColumns()}).Info("weekly matrix built")
	return weekly, nil
}

func (p *Pipeline) Cluster(ctx context.Context) (ClusterResult, error) {
	log := p.start("cluster")
	_, posts, err := p.load(ctx, log)
	if err != nil {
		return ClusterResult{}, err
	}
	kind := p.Options.Transform
	if kind == "" {
		kind = activity.Log
	}
	series, err := activity.Transform(activity.DailyCounts(posts), kind)
	if err != nil {
		return ClusterResult{}, err
	}
	labels, err := cluster.NewSpectral(p.Options.Clusters).FitPredict(series.Matrix())
	if err != nil {
		return ClusterResult{}, fmt.Errorf("spectral clustering: %w", err)
	}
	sizes := cluster.Sizes(labels)
	log.WithFields(logrus.Fields{"transform": kind, "sizes": sizes}).Info("authors clustered")
	return ClusterResult{Series: series, Labels: labels, Sizes: sizes}, nil
}

// Topics fits one model over every post and prints its topics to w.
func (p *Pipeline) Topics(ctx context.Context, w io.Writer) (*topics.Model, error) {
	log := p.start("topics")
	_, posts, err := p.load(ctx, log)
	if err != nil {
		return nil, err
	}
	docs := make([]string, len(posts))
	for i, post := range posts {
		docs[i] = post.Content
	}
	corpus, dict := text.BuildCorpus(docs, p.Tokenizer)
	log.WithFields(logrus.Fields{"documents": len(corpus), "vocabulary": dict.Len()}).Info("corpus built")

	model, err := topics.Fit(ctx, corpus, dict, p.Options.LDA)
	if err != nil {
		return nil, fmt.Errorf("fit lda: %w", err)
	}
	if err := model.Print(w, model.NumTopics(), p.Options.TopicWords); err != nil {
		return nil, err
	}
	return model, nil
}

// WeeklyTopics concatenates each author's posts per week and replaces every
// non-empty cell with keywords from that week's model.
func (p *Pipeline) WeeklyTopics(ctx context.Context) (*table.Table[string], error) {
	log := p.start("weekly-topics")
	_, posts, err := p.load(ctx, log)
	if err != nil {
		return nil, err
	}
	weekly, err := activity.WeeklyContents(activity.DailyContents(posts), p.weeklyOptions(log)...)
	if err != nil {
		return nil, fmt.Errorf("weekly contents: %w", err)
	}
	keywords, err := topics.WeeklyKeywords(ctx, weekly, p.Tokenizer, p.Options.weeklyLDA(), p.Options.Keywords)
	if err != nil {
		return nil, fmt.Errorf("weekly keywords: %w", err)
	}
	log.WithField("weeks", keywords.NumColumns()).Info("weekly keywords extracted")
	return keywords, nil
}

// Submitter queues posts for storage, blocking when the queue is full.
type Submitter interface {
	Submit(ctx context.Context, p domain.Post) error
}

// Import validates every post from the source and submits the valid ones.
// It returns how many were submitted and how many were skipped.
func (p *Pipeline) Import(ctx context.Context, q Submitter, validate func(*domain.Post) []domain.FieldError) (submitted, skipped int, err error) {
	log := p.start("import")
	_, posts, err := p.load(ctx, log)
	if err != nil {
		return 0, 0, err
	}
	for i := range posts {
		if fe := validate(&posts[i]); len(fe) > 0 {
			skipped++
			log.WithFields(logrus.Fields{"index": i, "errors": fe}).Debug("post skipped")
			continue
		}
		if err := q.Submit(ctx, posts[i]); err != nil {
			return submitted, skipped, fmt.Errorf("submit post: %w", err)
		}
		submitted++
	}
	log.WithFields(logrus.Fields{"submitted": submitted, "skipped": skipped}).Info("import queued")
	return submitted, skipped, nil
}
