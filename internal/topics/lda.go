// Package topics fits LDA topic models over bag-of-words corpora.
package topics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/james-bowman/nlp"
	"gonum.org/v1/gonum/mat"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/text"
)

// MinimumProbability hides topics with a smaller share of a document.
const MinimumProbability = 0.01

// ErrEmptyCorpus is returned when there is nothing to model.
var ErrEmptyCorpus = errors.New("topics: corpus has no tokens")

// Options configures a fit. Zero fields fall back to the library defaults.
type Options struct {
	Topics     int
	Workers    int
	Iterations int
}

// TopicProb is one entry of a document's topic distribution.
type TopicProb struct {
	Topic int
	Prob  float64
}

// WordProb is one entry of a topic's word distribution.
type WordProb struct {
	Word string
	Prob float64
}

// Model is a fitted LDA model together with the dictionary it was fitted on.
type Model struct {
	lda    *nlp.LatentDirichletAllocation
	dict   *text.Dictionary
	k      int
	docs   mat.Matrix // topics x documents
	topics mat.Matrix // topics x words
}

// Fit trains a model on corpus. Documents are columns of a terms x docs count
// matrix, as the nlp package expects.
func Fit(ctx context.Context, corpus text.Corpus, dict *text.Dictionary, opts Options) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if dict.Len() == 0 || len(corpus) == 0 {
		return nil, ErrEmptyCorpus
	}
	k := opts.Topics
	if k <= 0 {
		return nil, fmt.Errorf("topics: need at least one topic, got %d", k)
	}

	lda := nlp.NewLatentDirichletAllocation(k)
	if opts.Workers > 0 {
		lda.Processes = opts.Workers
	}
	if opts.Iterations > 0 {
		lda.Iterations = opts.Iterations
		lda.TransformationPasses = max(opts.Iterations/2, 1)
	}

	docsOverTopics, err := lda.FitTransform(termMatrix(corpus, dict.Len()))
	if err != nil {
		return nil, fmt.Errorf("fit lda: %w", err)
	}
	return &Model{lda: lda, dict: dict, k: k, docs: docsOverTopics, topics: lda.Components()}, nil
}

func termMatrix(corpus text.Corpus, vocab int) *mat.Dense {
	m := mat.NewDense(vocab, len(corpus), nil)
	for j, doc := range corpus {
		for _, e := range doc {
			m.Set(e.ID, j, float64(e.Count))
		}
	}
	return m
}

func (m *Model) NumTopics() int { return m.k }

// TopicWords returns the n most probable words of a topic, most probable first.
func (m *Model) TopicWords(topic, n int) []WordProb {
	_, vocab := m.topics.Dims()
	var total float64
	for w := 0; w < vocab; w++ {
		total += m.topics.At(topic, w)
	}
	out := make([]WordProb, vocab)
	for w := 0; w < vocab; w++ {
		p := m.topics.At(topic, w)
		if total > 0 {
			p /= total
		}
		out[w] = WordProb{Word: m.dict.Token(w), Prob: p}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Prob > out[j].Prob })
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// DocumentTopics is the topic distribution of the i-th training document.
func (m *Model) DocumentTopics(i int) []TopicProb {
	col := make([]float64, m.k)
	for t := 0; t < m.k; t++ {
		col[t] = m.docs.At(t, i)
	}
	return distribution(col)
}

// Infer estimates the topic distribution of an unseen document.
func (m *Model) Infer(doc text.Document) ([]TopicProb, error) {
	if m.dict.Len() == 0 {
		return nil, ErrEmptyCorpus
	}
	res, err := m.lda.Transform(termMatrix(text.Corpus{doc}, m.dict.Len()))
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	col := make([]float64, m.k)
	for t := 0; t < m.k; t++ {
		col[t] = res.At(t, 0)
	}
	return distribution(col), nil
}

func distribution(weights []float64) []TopicProb {
	var total float64
	for _, w := range weights {
		total += w
	}
	var out []TopicProb
	for t, w := range weights {
		p := w
		if total > 0 {
			p = w / total
		}
		if p >= MinimumProbability {
			out = append(out, TopicProb{Topic: t, Prob: p})
		}
	}
	return out
}

// Print writes the top words of the first n topics, one topic per line.
func (m *Model) Print(w io.Writer, n, words int) error {
	if n <= 0 || n > m.k {
		n = m.k
	}
	for t := 0; t < n; t++ {
		if _, err := fmt.Fprintf(w, "topic %d:", t); err != nil {
			return err
		}
		for i, wp := range m.TopicWords(t, words) {
			sep := " + "
			if i == 0 {
				sep = " "
			}
			if _, err := fmt.Fprintf(w, "%s%.3f*%q", sep, wp.Prob, wp.Word); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
