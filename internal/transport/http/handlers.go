package transporthttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/activity"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/config"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/domain"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/metrics"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/records"
	spg "github.com/NYU-MSDSE-SWG/dark-web/internal/storage/postgres"
)

// Store is the read side of the post store.
type Store interface {
	Ready(ctx context.Context) error
	QueryTotals(ctx context.Context, f spg.Filter) (spg.Totals, error)
	QueryBucketsDaily(ctx context.Context, f spg.Filter) ([]spg.Bucket, error)
	Posts(ctx context.Context, f spg.Filter) ([]domain.Post, error)
}

// Queue accepts posts for asynchronous writing.
type Queue interface {
	Enqueue(p domain.Post) bool
}

type ServerDeps struct {
	Cfg      config.Config
	Ingestor Queue
	Store    Store
	Metrics  *metrics.Metrics
	Log      *logrus.Entry
	Now      func() time.Time
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// --- Health ---

func (d *ServerDeps) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (d *ServerDeps) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := d.Store.Ready(r.Context()); err != nil {
		WriteProblem(w, http.StatusServiceUnavailable, "not ready", "database not reachable", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// --- Posts ---

// HandlePostPosts accepts the crawl's own line format: one JSON object per
// line with a nested author object.
func (d *ServerDeps) HandlePostPosts(w http.ResponseWriter, r *http.Request) {
	defer DrainBody(r)

	recs, err := records.Load(r.Body)
	if err != nil {
		var mre *records.MalformedRecordError
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			WriteProblem(w, http.StatusRequestEntityTooLarge, "body too large", err.Error(), nil)
		case errors.As(err, &mre):
			d.Metrics.MalformedRecords.Inc()
			WriteProblem(w, http.StatusBadRequest, "malformed record", err.Error(),
				map[string][]string{"line[" + strconv.Itoa(mre.Line) + "]": {mre.Reason}})
		default:
			WriteProblem(w, http.StatusBadRequest, "invalid body", err.Error(), nil)
		}
		return
	}
	posts, err := records.Posts(recs)
	if err != nil {
		var mre *records.MalformedRecordError
		var fields map[string][]string
		if errors.As(err, &mre) {
			d.Metrics.MalformedRecords.Inc()
			fields = map[string][]string{"record[" + strconv.Itoa(mre.Record) + "]": {mre.Reason}}
		}
		WriteProblem(w, http.StatusBadRequest, "malformed record", err.Error(), fields)
		return
	}

	all, top := domain.ValidateBatch(posts, d.Cfg.MaxBatchPosts, d.Now(), d.Cfg.ClockSkew)
	if top != nil {
		prob := map[string][]string{}
		for i, arr := range all {
			k := "posts[" + strconv.Itoa(i) + "]"
			for _, fe := range arr {
				prob[k+"."+fe.Field] = append(prob[k+"."+fe.Field], fe.Msg)
			}
		}
		WriteProblem(w, http.StatusBadRequest, "validation failed", top.Error(), prob)
		return
	}

	for i, p := range posts {
		if ok := d.Ingestor.Enqueue(p); !ok {
			d.Log.WithFields(logrus.Fields{"queued": i, "rejected": len(posts) - i}).Warn("ingest queue full")
			WriteProblem(w, http.StatusServiceUnavailable, "overloaded", "ingest queue is full, please retry", nil)
			return
		}
	}
	d.Metrics.RecordsLoaded.Add(float64(len(posts)))
	d.Log.WithField("count", len(posts)).Info("queued posts")

	writeJSON(w, http.StatusAccepted, map[string]int{"accepted_count": len(posts)})
}

// --- Weekly series for one author ---

type weekPoint struct {
	WeekStart string  `json:"week_start"`
	Count     float64 `json:"count"`
}

type authorWeeklyResp struct {
	AuthorID string      `json:"author_id"`
	Weeks    []weekPoint `json:"weeks"`
}

func (d *ServerDeps) HandleAuthorWeekly(w http.ResponseWriter, r *http.Request) {
	authorID := strings.TrimSpace(r.PathValue("id"))
	if authorID == "" {
		WriteProblem(w, http.StatusBadRequest, "invalid parameters", "author id is required", nil)
		return
	}
	q := r.URL.Query()
	from, to, err := parseRange(q.Get("from"), q.Get("to"), d.Now(), 0)
	if err != nil {
		WriteProblem(w, http.StatusBadRequest, "invalid parameters", err.Error(), nil)
		return
	}
	flush, _ := strconv.ParseBool(q.Get("flush"))

	posts, err := d.Store.Posts(r.Context(), spg.Filter{AuthorID: authorID, From: from, To: to})
	if err != nil {
		d.Log.WithError(err).Error("query posts")
		WriteProblem(w, http.StatusInternalServerError, "query error", err.Error(), nil)
		return
	}

	resp := authorWeeklyResp{AuthorID: authorID, Weeks: []weekPoint{}}
	opts := []activity.WeeklyOption{activity.WithObserver(func(closed []activity.Window, dropped int) {
		d.Metrics.ObserveWeekly(len(closed), dropped)
	})}
	if flush {
		opts = append(opts, activity.WithTrailingWindow())
	}
	weekly, err := activity.WeeklyCounts(activity.DailyCounts(posts), opts...)
	switch {
	case errors.Is(err, activity.ErrEmptyInput):
		writeJSON(w, http.StatusOK, resp)
		return
	case err != nil:
		WriteProblem(w, http.StatusInternalServerError, "aggregation error", err.Error(), nil)
		return
	}

	row, _ := weekly.Row(authorID)
	for i, c := range weekly.Columns() {
		resp.Weeks = append(resp.Weeks, weekPoint{WeekStart: c.String(), Count: row[i]})
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Activity totals ---

type activityResp struct {
	Totals  spg.Totals   `json:"totals"`
	Buckets []spg.Bucket `json:"buckets,omitempty"`
}

const (
	defaultWindowMillis = int64(30 * 24 * 60 * 60 * 1000)  // last 30 days
	maxWindowMillis     = int64(366 * 24 * 60 * 60 * 1000) // cap for daily buckets
)

// parseRange reads inclusive epoch-millisecond bounds. A zero window means an
// absent from is the start of time.
func parseRange(fromStr, toStr string, now time.Time, window int64) (from, to int64, err error) {
	to = now.UnixMilli()
	if toStr != "" {
		if to, err = strconv.ParseInt(toStr, 10, 64); err != nil {
			return 0, 0, errors.New("to must be epoch milliseconds")
		}
	}
	if fromStr == "" {
		if window > 0 {
			from = to - window
		}
		return from, to, nil
	}
	if from, err = strconv.ParseInt(fromStr, 10, 64); err != nil {
		return 0, 0, errors.New("from must be epoch milliseconds")
	}
	if from > to {
		return 0, 0, errors.New("from must not be after to")
	}
	return from, to, nil
}

func (d *ServerDeps) HandleGetActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := parseRange(q.Get("from"), q.Get("to"), d.Now(), defaultWindowMillis)
	if err != nil {
		WriteProblem(w, http.StatusBadRequest, "invalid parameters", err.Error(), nil)
		return
	}
	groupBy := q.Get("group_by")
	if groupBy != "" && groupBy != "day" {
		WriteProblem(w, http.StatusBadRequest, "invalid parameters", "group_by must be day", nil)
		return
	}

	// guardrail: cap excessively large ranges
	if to-from > maxWindowMillis {
		from = to - maxWindowMillis
	}
	f := spg.Filter{AuthorID: strings.TrimSpace(q.Get("author_id")), From: from, To: to}

	ctx := r.Context()
	tot, err := d.Store.QueryTotals(ctx, f)
	if err != nil {
		WriteProblem(w, http.StatusInternalServerError, "query error", err.Error(), nil)
		return
	}
	resp := activityResp{Totals: tot}

	if groupBy == "day" {
		resp.Buckets, err = d.Store.QueryBucketsDaily(ctx, f)
		if err != nil {
			WriteProblem(w, http.StatusInternalServerError, "query error", err.Error(), nil)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Router ---

func (d *ServerDeps) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", d.HandleHealthz)
	mux.HandleFunc("GET /readyz", d.HandleReadyz)
	mux.Handle("GET /metrics/prometheus", d.Metrics.Handler())

	var postPosts http.Handler = http.HandlerFunc(d.HandlePostPosts)
	postPosts = BodyLimit(d.Cfg.MaxBodyBytes)(postPosts)
	postPosts = RequireContentType("application/x-ndjson", "application/json")(postPosts)
	postPosts = APIKeyAuth(d.Cfg.APIKeys)(postPosts)
	mux.Handle("POST /posts", d.Metrics.Middleware("/posts", postPosts))

	var weekly http.Handler = http.HandlerFunc(d.HandleAuthorWeekly)
	weekly = APIKeyAuth(d.Cfg.APIKeys)(weekly)
	mux.Handle("GET /authors/{id}/weekly", d.Metrics.Middleware("/authors/{id}/weekly", weekly))

	var getActivity http.Handler = http.HandlerFunc(d.HandleGetActivity)
	getActivity = RateLimitPerMinute(d.Cfg.RateLimitPerMin, d.Now)(getActivity)
	getActivity = APIKeyAuth(d.Cfg.APIKeys)(getActivity)
	mux.Handle("GET /activity", d.Metrics.Middleware("/activity", getActivity))

	return mux
}
