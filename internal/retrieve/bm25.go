// Package retrieve ranks claims against each other with BM25 so that large
// corpora only send likely-related pairs to the detector.
package retrieve

import (
	"math"
	"sort"

	"github.com/ppiankov/contradicta/internal/model"
	"github.com/ppiankov/contradicta/internal/textutil"
)

// Hit is a scored candidate for a query claim
type Hit struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Pair is an unordered candidate pair with I < J
type Pair struct {
	I int
	J int
}

// QueryOptions tunes a single query
type QueryOptions struct {
	TopK         int
	MinScore     float64
	CrossDocOnly bool
}

// Index is an in-memory BM25 index over claim texts
type Index struct {
	k1, b    float64
	docIDs   []string
	tf       []map[string]int
	lengths  []int
	avgLen   float64
	df       map[string]int
	postings map[string][]int
}

// NewIndex builds an index over claims. Claim order defines the index numbering.
func NewIndex(claims []model.Claim, cfg model.RetrievalConfig) *Index {
	k1, b := cfg.K1, cfg.B
	if k1 <= 0 {
		k1 = 1.5
	}
	if b < 0 || b > 1 {
		b = 0.75
	}

	ix := &Index{
		k1:       k1,
		b:        b,
		docIDs:   make([]string, len(claims)),
		tf:       make([]map[string]int, len(claims)),
		lengths:  make([]int, len(claims)),
		df:       make(map[string]int),
		postings: make(map[string][]int),
	}

	total := 0
	for i, c := range claims {
		ix.docIDs[i] = c.Locator.DocID
		tokens := textutil.ContentTokens(c.Text)
		freq := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			freq[tok]++
		}
		for tok := range freq {
			ix.df[tok]++
			ix.postings[tok] = append(ix.postings[tok], i)
		}
		ix.tf[i] = freq
		ix.lengths[i] = len(tokens)
		total += len(tokens)
	}
	if len(claims) > 0 {
		ix.avgLen = float64(total) / float64(len(claims))
	}

	return ix
}

// Len returns the number of indexed claims
func (ix *Index) Len() int {
	return len(ix.tf)
}

// IDF is the smoothed inverse document frequency: ln(1 + (N - df + 0.5) / (df + 0.5))
func (ix *Index) IDF(term string) float64 {
	n := float64(len(ix.tf))
	df := float64(ix.df[term])
	return math.Log(1 + (n-df+0.5)/(df+0.5))
}

// Score computes the BM25 score of indexed claim j for the query terms
func (ix *Index) Score(terms map[string]int, j int) float64 {
	if j < 0 || j >= len(ix.tf) || ix.avgLen == 0 {
		return 0
	}
	norm := ix.k1 * (1 - ix.b + ix.b*float64(ix.lengths[j])/ix.avgLen)
	score := 0.0
	for term := range terms {
		tf := float64(ix.tf[j][term])
		if tf == 0 {
			continue
		}
		score += ix.IDF(term) * tf * (ix.k1 + 1) / (tf + norm)
	}
	return score
}

// Query ranks every other claim against claim i. Results are sorted by score
// descending, then index ascending, and never include i itself.
func (ix *Index) Query(i int, opts QueryOptions) []Hit {
	if i < 0 || i >= len(ix.tf) {
		return nil
	}

	// Only claims sharing at least one term can score above zero
	seen := make(map[int]bool)
	for term := range ix.tf[i] {
		for _, j := range ix.postings[term] {
			seen[j] = true
		}
	}

	var hits []Hit
	for j := range seen {
		if j == i {
			continue
		}
		if opts.CrossDocOnly && ix.docIDs[j] == ix.docIDs[i] {
			continue
		}
		score := ix.Score(ix.tf[i], j)
		if score < opts.MinScore || score <= 0 {
			continue
		}
		hits = append(hits, Hit{Index: j, Score: score})
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].Index < hits[b].Index
	})

	if opts.TopK > 0 && len(hits) > opts.TopK {
		hits = hits[:opts.TopK]
	}
	return hits
}

// CandidatePairs queries every claim and returns the union of hits as
// de-duplicated pairs in ascending (I, J) order.
func (ix *Index) CandidatePairs(opts QueryOptions) []Pair {
	set := make(map[Pair]bool)
	for i := range ix.tf {
		for _, h := range ix.Query(i, opts) {
			p := Pair{I: i, J: h.Index}
			if p.J < p.I {
				p.I, p.J = p.J, p.I
			}
			set[p] = true
		}
	}

	pairs := make([]Pair, 0, len(set))
	for p := range set {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].I != pairs[b].I {
			return pairs[a].I < pairs[b].I
		}
		return pairs[a].J < pairs[b].J
	})
	return pairs
}

// AllPairs returns every (i, j) with i < j, optionally skipping same-document pairs
func AllPairs(claims []model.Claim, crossDocOnly bool) []Pair {
	var pairs []Pair
	for i := 0; i < len(claims); i++ {
		for j := i + 1; j < len(claims); j++ {
			if crossDocOnly && claims[i].Locator.DocID == claims[j].Locator.DocID {
				continue
			}
			pairs = append(pairs, Pair{I: i, J: j})
		}
	}
	return pairs
}

// Pairs picks exhaustive comparison for small inputs and BM25 candidates above
// cfg.FullPairwiseLimit claims. The second result reports whether the index was used.
func Pairs(claims []model.Claim, cfg model.RetrievalConfig) ([]Pair, bool) {
	if cfg.FullPairwiseLimit <= 0 || len(claims) <= cfg.FullPairwiseLimit {
		return AllPairs(claims, cfg.CrossDocOnly), false
	}

	ix := NewIndex(claims, cfg)
	return ix.CandidatePairs(QueryOptions{
		TopK:         cfg.TopK,
		MinScore:     cfg.MinScore,
		CrossDocOnly: cfg.CrossDocOnly,
	}), true
}
