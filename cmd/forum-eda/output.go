package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/stats"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/table"
)

func formatCount(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// writeCSV writes one header row of column dates, then one row per author.
func writeCSV[T any](w io.Writer, t *table.Table[T], format func(T) string) error {
	cw := csv.NewWriter(w)
	cols := t.Columns()

	header := make([]string, 0, len(cols)+1)
	header = append(header, "author_id")
	for _, c := range cols {
		header = append(header, c.String())
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	rec := make([]string, len(cols)+1)
	for r, key := range t.Rows() {
		rec[0] = key
		for c := range cols {
			rec[c+1] = format(t.At(r, c))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeCounts(tw *tabwriter.Writer, title string, counts []stats.Count, top int) {
	fmt.Fprintf(tw, "%s (%d distinct)\n", title, len(counts))
	if top > 0 && len(counts) > top {
		counts = counts[:top]
	}
	for _, c := range counts {
		fmt.Fprintf(tw, "  %s\t%d\n", strings.ReplaceAll(c.Value, "\t", " / "), c.Count)
	}
}

func writeHistogram(tw *tabwriter.Writer, h stats.Histogram) {
	fmt.Fprintf(tw, "%s\n", h.Name)
	for i, l := range h.Labels() {
		fmt.Fprintf(tw, "  %s\t%d\n", l, h.Counts[i])
	}
}

// writeSummary prints the stats report, truncating each listing to top rows.
func writeSummary(w io.Writer, s stats.Summary, top int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "posts\t%d\n", s.Posts)
	writeCounts(tw, "authors", s.Authors, top)
	writeCounts(tw, "usernames", s.Usernames, top)
	writeCounts(tw, "locations", s.Locations, top)
	writeCounts(tw, "author locations", s.AuthorLocations, top)
	for _, h := range []stats.Histogram{s.Times.Hour, s.Times.Weekday, s.Times.Year, s.Times.Month} {
		writeHistogram(tw, h)
	}
	return tw.Flush()
}
