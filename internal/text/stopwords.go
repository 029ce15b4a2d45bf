package text

import "sort"

// StopSet is an immutable set of lowercase stopwords. The zero value is empty.
type StopSet struct {
	words map[string]struct{}
}

// NewStopSet builds a set from one or more word lists.
func NewStopSet(lists ...[]string) StopSet {
	m := make(map[string]struct{})
	for _, l := range lists {
		for _, w := range l {
			m[w] = struct{}{}
		}
	}
	return StopSet{words: m}
}

// With returns a new set holding s plus words; s is unchanged.
func (s StopSet) With(words ...string) StopSet {
	return NewStopSet(s.Words(), words)
}

func (s StopSet) Contains(w string) bool {
	_, ok := s.words[w]
	return ok
}

func (s StopSet) Len() int { return len(s.words) }

// Words returns the members in sorted order.
func (s StopSet) Words() []string {
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// forumNoise are tokens left behind by image hosting links and smiley markup.
var forumNoise = []string{
	"photobucket", "http", "com", "gif", "jpg",
	"image", "images", "www", "albums", "smilies",
}

// english is the standard stopword list (gensim's STOPWORDS).
var english = []string{
	"a", "about", "above", "across", "after", "afterwards", "again", "against",
	"all", "almost", "alone", "along", "already", "also", "although", "always",
	"am", "among", "amongst", "amoungst", "amount", "an", "and", "another",
	"any", "anyhow", "anyone", "anything", "anyway", "anywhere", "are",
	"around", "as", "at", "back", "be", "became", "because", "become",
	"becomes", "becoming", "been", "before", "beforehand", "behind", "being",
	"below", "beside", "besides", "between", "beyond", "bill", "both",
	"bottom", "but", "by", "call", "can", "cannot", "cant", "co", "computer",
	"con", "could", "couldnt", "cry", "de", "describe", "detail", "did",
	"didn", "do", "does", "doesn", "doing", "don", "done", "down", "due",
	"during", "each", "eg", "eight", "either", "eleven", "else", "elsewhere",
	"empty", "enough", "etc", "even", "ever", "every", "everyone",
	"everything", "everywhere", "except", "few", "fifteen", "fifty", "fill",
	"find", "fire", "first", "five", "for", "former", "formerly", "forty",
	"found", "four", "from", "front", "full", "further", "get", "give", "go",
	"had", "has", "hasnt", "have", "he", "hence", "her", "here", "hereafter",
	"hereby", "herein", "hereupon", "hers", "herself", "him", "himself",
	"his", "how", "however", "hundred", "i", "ie", "if", "in", "inc",
	"indeed", "interest", "into", "is", "it", "its", "itself", "just", "keep",
	"kg", "km", "last", "latter", "latterly", "least", "less", "ltd", "made",
	"make", "many", "may", "me", "meanwhile", "might", "mill", "mine",
	"more", "moreover", "most", "mostly", "move", "much", "must", "my",
	"myself", "name", "namely", "neither", "never", "nevertheless", "next",
	"nine", "no", "nobody", "none", "noone", "nor", "not", "nothing", "now",
	"nowhere", "of", "off", "often", "on", "once", "one", "only", "onto",
	"or", "other", "others", "otherwise", "our", "ours", "ourselves", "out",
	"over", "own", "part", "per", "perhaps", "please", "put", "quite",
	"rather", "re", "really", "regarding", "same", "say", "see", "seem",
	"seemed", "seeming", "seems", "serious", "several", "she", "should",
	"show", "side", "since", "sincere", "six", "sixty", "so", "some",
	"somehow", "someone", "something", "sometime", "sometimes", "somewhere",
	"still", "such", "system", "take", "ten", "than", "that", "the", "their",
	"them", "themselves", "then", "thence", "there", "thereafter", "thereby",
	"therefore", "therein", "thereupon", "these", "they", "thick", "thin",
	"third", "this", "those", "though", "three", "through", "throughout",
	"thru", "thus", "to", "together", "too", "top", "toward", "towards",
	"twelve", "twenty", "two", "un", "under", "unless", "until", "up", "upon",
	"us", "used", "using", "various", "very", "via", "was", "we", "well",
	"were", "what", "whatever", "when", "whence", "whenever", "where",
	"whereafter", "whereas", "whereby", "wherein", "whereupon", "wherever",
	"whether", "which", "while", "whither", "who", "whoever", "whole", "whom",
	"whose", "why", "will", "with", "within", "without", "would", "yet",
	"you", "your", "yours", "yourself", "yourselves",
}

// EnglishStopwords is the standard list on its own.
func EnglishStopwords() StopSet { return NewStopSet(english) }

// DefaultStopwords is the standard list plus forum noise terms.
func DefaultStopwords() StopSet { return NewStopSet(english, forumNoise) }
