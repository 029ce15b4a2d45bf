package topics

import (
	"context"
	"fmt"
	"strings"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/table"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/text"
)

// DefaultKeywords is the keyword budget per document.
const DefaultKeywords = 10

// topWordsPerTopic bounds how many words a single topic can contribute.
const topWordsPerTopic = 10

// Keywords picks words for the i-th training document: each topic with share p
// contributes its int(p*n) most probable words.
func (m *Model) Keywords(i, n int) string {
	return keywordsFrom(m.DocumentTopics(i), func(topic int) []WordProb {
		return m.TopicWords(topic, topWordsPerTopic)
	}, n)
}

func keywordsFrom(dist []TopicProb, words func(topic int) []WordProb, n int) string {
	if n <= 0 {
		n = DefaultKeywords
	}
	step := 1.0 / float64(n)
	var out []string
	for _, tp := range dist {
		take := int(tp.Prob / step)
		if take <= 0 {
			continue
		}
		top := words(tp.Topic)
		if take > len(top) {
			take = len(top)
		}
		for _, wp := range top[:take] {
			out = append(out, wp.Word)
		}
	}
	return strings.Join(out, " ")
}

// WeeklyKeywords fits one model per week column over every author's text for
// that week and returns each author's keywords. Authors silent that week get
// "".
func WeeklyKeywords(ctx context.Context, weekly *table.Table[string], tok text.Tokenizer, opts Options, n int) (*table.Table[string], error) {
	rows := weekly.Rows()
	cols := weekly.Columns()
	vectors := make([][]string, len(cols))

	for c := range cols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		docs := weekly.Column(c)
		out := make([]string, len(docs))
		vectors[c] = out

		var idx []int
		var present []string
		for i, d := range docs {
			if d != "" {
				idx = append(idx, i)
				present = append(present, d)
			}
		}
		if len(present) == 0 {
			continue
		}

		corpus, dict := text.BuildCorpus(present, tok)
		model, err := Fit(ctx, corpus, dict, opts)
		if err == ErrEmptyCorpus {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("week %s: %w", cols[c], err)
		}
		for j, i := range idx {
			if len(corpus[j]) == 0 {
				continue
			}
			out[i] = model.Keywords(j, n)
		}
	}
	return table.NewFromColumns(rows, cols, vectors)
}
