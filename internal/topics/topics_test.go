package topics

import (
	"bytes"
	"context"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/table"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/text"
)

var docs = []string{
	"rifle scope rifle brass scope rifle",
	"brass powder primer brass powder",
	"rifle scope mount scope",
	"powder primer brass reload",
}

func fit(t *testing.T, k int) (*Model, text.Corpus) {
	t.Helper()
	corpus, dict := text.BuildCorpus(docs, text.NewTokenizer(text.DefaultStopwords()))
	m, err := Fit(context.Background(), corpus, dict, Options{Topics: k, Workers: 1, Iterations: 20})
	require.NoError(t, err)
	return m, corpus
}

func TestFit_Distributions(t *testing.T) {
	m, corpus := fit(t, 2)
	assert.Equal(t, 2, m.NumTopics())

	for i := range corpus {
		var sum float64
		for _, tp := range m.DocumentTopics(i) {
			assert.GreaterOrEqual(t, tp.Prob, MinimumProbability)
			sum += tp.Prob
		}
		assert.InDelta(t, 1.0, sum, 0.05)
	}

	words := m.TopicWords(0, 3)
	require.Len(t, words, 3)
	assert.GreaterOrEqual(t, words[0].Prob, words[1].Prob)
	assert.GreaterOrEqual(t, words[1].Prob, words[2].Prob)

	all := m.TopicWords(1, 0)
	var sum float64
	for _, wp := range all {
		sum += wp.Prob
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestFit_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Fit(ctx, text.Corpus{{}}, text.NewDictionary(), Options{Topics: 2})
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	corpus, dict := text.BuildCorpus(docs, text.NewTokenizer(text.DefaultStopwords()))
	_, err = Fit(ctx, corpus, dict, Options{})
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Fit(cancelled, corpus, dict, Options{Topics: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInfer(t *testing.T) {
	m, corpus := fit(t, 2)

	dist, err := m.Infer(corpus[0])
	require.NoError(t, err)
	var sum float64
	for _, tp := range dist {
		sum += tp.Prob
	}
	assert.InDelta(t, 1.0, sum, 0.05)
}

func TestPrint(t *testing.T) {
	m, _ := fit(t, 2)

	var buf bytes.Buffer
	require.NoError(t, m.Print(&buf, 5, 2))

	out := buf.String()
	assert.Contains(t, out, "topic 0:")
	assert.Contains(t, out, "topic 1:")
	assert.NotContains(t, out, "topic 2:")
}

func TestKeywordsFrom(t *testing.T) {
	words := func(topic int) []WordProb {
		if topic == 0 {
			return []WordProb{{"rifle", .5}, {"scope", .3}, {"mount", .2}}
		}
		return []WordProb{{"brass", .6}, {"powder", .4}}
	}

	// 0.25/0.1 -> 2 words, 0.7/0.1 -> 7 words capped at 2, 0.05 -> none
	got := keywordsFrom([]TopicProb{{0, 0.25}, {1, 0.7}, {2, 0.05}}, words, 10)
	assert.Equal(t, "rifle scope brass powder", got)

	assert.Equal(t, "", keywordsFrom(nil, words, 10))
	assert.Equal(t, "rifle", keywordsFrom([]TopicProb{{0, 0.15}}, words, 0))
}

func TestWeeklyKeywords(t *testing.T) {
	week := civil.Date{Year: 2016, Month: 1, Day: 4}
	weekly, err := table.NewFromColumns(
		[]string{"a", "b", "c"},
		[]civil.Date{week, week.AddDays(7)},
		[][]string{
			{docs[0], docs[1], ""},
			{"", "", "the and of"},
		})
	require.NoError(t, err)

	kw, err := WeeklyKeywords(context.Background(), weekly, text.NewTokenizer(text.DefaultStopwords()),
		Options{Topics: 2, Workers: 1, Iterations: 10}, 10)
	require.NoError(t, err)

	assert.Equal(t, weekly.Rows(), kw.Rows())
	assert.Equal(t, weekly.Columns(), kw.Columns())

	v, _ := kw.Value("c", week)
	assert.Equal(t, "", v)
	// only stopwords that week: nothing to model
	v, _ = kw.Value("c", week.AddDays(7))
	assert.Equal(t, "", v)
	v, _ = kw.Value("a", week.AddDays(7))
	assert.Equal(t, "", v)
}
