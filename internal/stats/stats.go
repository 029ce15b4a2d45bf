// Package stats summarises a post dump: who posts, from where and when.
package stats

import (
	"sort"
	"strconv"
	"time"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/domain"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/records"
)

// Count is one row of a value-count listing.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ValueCounts counts the distinct values of a record column, most frequent
// first; ties are ordered by value. Records missing the column are skipped.
func ValueCounts(recs []records.Record, column string) []Count {
	m := make(map[string]int)
	for _, r := range recs {
		if v, ok := r.String(column); ok {
			m[v]++
		}
	}
	return sorted(m)
}

// PairCounts counts (a, b) pairs, skipping records missing either column.
// Values are joined with a tab.
func PairCounts(recs []records.Record, a, b string) []Count {
	m := make(map[string]int)
	for _, r := range recs {
		va, okA := r.String(a)
		vb, okB := r.String(b)
		if okA && okB {
			m[va+"\t"+vb]++
		}
	}
	return sorted(m)
}

func sorted(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for v, n := range m {
		out = append(out, Count{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// Histogram is a dense count over consecutive integer buckets starting at Min.
type Histogram struct {
	Name   string `json:"name"`
	Min    int    `json:"min"`
	Counts []int  `json:"counts"`
}

// Labels names each bucket.
func (h Histogram) Labels() []string {
	out := make([]string, len(h.Counts))
	for i := range h.Counts {
		out[i] = strconv.Itoa(h.Min + i)
	}
	return out
}

func (h *Histogram) add(v int) {
	if len(h.Counts) == 0 {
		h.Min = v
	}
	for v < h.Min {
		h.Counts = append([]int{0}, h.Counts...)
		h.Min--
	}
	for v >= h.Min+len(h.Counts) {
		h.Counts = append(h.Counts, 0)
	}
	h.Counts[v-h.Min]++
}

// TimeProfile holds the posting-time histograms of a dump.
type TimeProfile struct {
	Hour    Histogram `json:"hour"`
	Weekday Histogram `json:"weekday"` // Monday = 0
	Year    Histogram `json:"year"`
	Month   Histogram `json:"month"`
}

// Profile buckets post timestamps (UTC) by hour, weekday, year and month.
// Hour and weekday always cover their full range.
func Profile(posts []domain.Post) TimeProfile {
	p := TimeProfile{
		Hour:    Histogram{Name: "hour", Counts: make([]int, 24)},
		Weekday: Histogram{Name: "weekday", Counts: make([]int, 7)},
		Year:    Histogram{Name: "year"},
		Month:   Histogram{Name: "month", Min: 1, Counts: make([]int, 12)},
	}
	for _, post := range posts {
		t := time.UnixMilli(post.CreatedAt).UTC()
		p.Hour.Counts[t.Hour()]++
		p.Weekday.Counts[(int(t.Weekday())+6)%7]++
		p.Year.add(t.Year())
		p.Month.Counts[int(t.Month())-1]++
	}
	return p
}

// Summary is everything the stats command prints.
type Summary struct {
	Posts           int         `json:"posts"`
	Authors         []Count     `json:"authors"`
	Usernames       []Count     `json:"usernames"`
	Locations       []Count     `json:"locations"`
	AuthorLocations []Count     `json:"author_locations"`
	Times           TimeProfile `json:"times"`
}

func Summarize(recs []records.Record, posts []domain.Post) Summary {
	return Summary{
		Posts:           len(posts),
		Authors:         ValueCounts(recs, "author_id"),
		Usernames:       ValueCounts(recs, "author_username"),
		Locations:       ValueCounts(recs, "author_location"),
		AuthorLocations: PairCounts(recs, "author_id", "author_location"),
		Times:           Profile(posts),
	}
}
