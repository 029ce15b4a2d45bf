package text

import "sort"

// BowEntry is one (token id, count) pair of a bag-of-words document.
type BowEntry struct {
	ID    int
	Count int
}

// Document is a sparse bag of words sorted by token id.
type Document []BowEntry

// Corpus is one Document per input text, in input order.
type Corpus []Document

// Dictionary maps tokens to dense integer ids.
type Dictionary struct {
	ids     map[string]int
	tokens  []string
	docFreq []int
}

func NewDictionary() *Dictionary {
	return &Dictionary{ids: make(map[string]int)}
}

// Add registers the tokens of one document. Tokens unseen so far get the next
// ids in sorted order.
func (d *Dictionary) Add(tokens []string) {
	seen := make(map[string]struct{}, len(tokens))
	var fresh []string
	for _, tok := range tokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		if id, ok := d.ids[tok]; ok {
			d.docFreq[id]++
			continue
		}
		fresh = append(fresh, tok)
	}
	sort.Strings(fresh)
	for _, tok := range fresh {
		d.ids[tok] = len(d.tokens)
		d.tokens = append(d.tokens, tok)
		d.docFreq = append(d.docFreq, 1)
	}
}

func (d *Dictionary) Len() int { return len(d.tokens) }

func (d *Dictionary) ID(token string) (int, bool) {
	id, ok := d.ids[token]
	return id, ok
}

func (d *Dictionary) Token(id int) string { return d.tokens[id] }

// DocFreq is the number of added documents containing the token.
func (d *Dictionary) DocFreq(id int) int { return d.docFreq[id] }

// Doc2Bow counts the known tokens of a document. Unknown tokens are ignored.
func (d *Dictionary) Doc2Bow(tokens []string) Document {
	counts := make(map[int]int)
	for _, tok := range tokens {
		if id, ok := d.ids[tok]; ok {
			counts[id]++
		}
	}
	doc := make(Document, 0, len(counts))
	for id, n := range counts {
		doc = append(doc, BowEntry{ID: id, Count: n})
	}
	sort.Slice(doc, func(i, j int) bool { return doc[i].ID < doc[j].ID })
	return doc
}

// Len is the total token count of the document.
func (doc Document) Len() int {
	n := 0
	for _, e := range doc {
		n += e.Count
	}
	return n
}

// BuildCorpus tokenizes docs, builds the dictionary over all of them and
// encodes each one.
func BuildCorpus(docs []string, tok Tokenizer) (Corpus, *Dictionary) {
	texts := make([][]string, len(docs))
	dict := NewDictionary()
	for i, doc := range docs {
		texts[i] = tok.Tokenize(doc)
		dict.Add(texts[i])
	}
	corpus := make(Corpus, len(texts))
	for i, words := range texts {
		corpus[i] = dict.Doc2Bow(words)
	}
	return corpus, dict
}
