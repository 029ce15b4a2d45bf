package chart

import (
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	quickchartgo "github.com/henomis/quickchart-go"
	log "github.com/sirupsen/logrus"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/stats"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/table"
)

type ChartConfig struct {
	Type    string         `json:"type"`
	Data    ChartData      `json:"data"`
	Options map[string]any `json:"options,omitempty"`
}
type ChartData struct {
	Labels   []interface{} `json:"labels"`
	DataSets []Dataset     `json:"datasets"`
}
type Dataset struct {
	Label       string        `json:"label"`
	Data        []interface{} `json:"data"`
	Fill        bool          `json:"fill"`
	LineTension float32       `json:"lineTension"`
}

var ErrUnknownAuthor = errors.New("chart: author not in matrix")

func dateLabels(cols []civil.Date) []interface{} {
	out := make([]interface{}, len(cols))
	for i, c := range cols {
		out[i] = c.String()
	}
	return out
}

func values(row []float64) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

func titled(title string) map[string]any {
	return map[string]any{"title": map[string]any{"display": true, "text": title}}
}

// AuthorSeries is a line chart of one author's activity over time.
func AuthorSeries(t *table.Table[float64], authorID string) (ChartConfig, error) {
	row, ok := t.Row(authorID)
	if !ok {
		return ChartConfig{}, fmt.Errorf("%w: %s", ErrUnknownAuthor, authorID)
	}
	return ChartConfig{
		Type: "line",
		Data: ChartData{
			Labels:   dateLabels(t.Columns()),
			DataSets: []Dataset{{Label: "count", Data: values(row)}},
		},
		Options: titled(fmt.Sprintf("Weekly activity count for author ID %s", authorID)),
	}, nil
}

// ClusterSeries overlays the series of every member row.
func ClusterSeries(t *table.Table[float64], members []int, label int) ChartConfig {
	rows := t.Rows()
	matrix := t.Matrix()
	sets := make([]Dataset, 0, len(members))
	for _, i := range members {
		sets = append(sets, Dataset{Label: rows[i], Data: values(matrix[i])})
	}
	return ChartConfig{
		Type:    "line",
		Data:    ChartData{Labels: dateLabels(t.Columns()), DataSets: sets},
		Options: titled(fmt.Sprintf("Cluster %d (%d authors)", label, len(members))),
	}
}

// Histogram is a bar chart of a stats histogram.
func Histogram(h stats.Histogram) ChartConfig {
	labels := make([]interface{}, len(h.Counts))
	data := make([]interface{}, len(h.Counts))
	for i, l := range h.Labels() {
		labels[i] = l
		data[i] = h.Counts[i]
	}
	return ChartConfig{
		Type: "bar",
		Data: ChartData{Labels: labels, DataSets: []Dataset{{Label: h.Name, Data: data}}},
	}
}

func GetChartImageUrlForConfig(config ChartConfig) (url string, err error) {
	bytes, err := json.Marshal(config)
	if err != nil {
		log.WithError(err).Error("failed to marshal chart config")
		return "", errors.New("failed to get chart url from quickchart")
	}
	qc := quickchartgo.New()
	qc.Config = string(bytes)
	url, err = qc.GetUrl()
	if err != nil {
		log.WithError(err).Error("failed to get chart url from quickchart")
		return "", errors.New("failed to get chart url from quickchart")
	}
	return url, nil
}
