// Package lexical provides an in-memory BM25 term index over a corpus
// snapshot.
//
// The index is built once per retrieval pipeline construction from the
// documents present in the collection at that moment. Scores are
// resolved by corpus position, not by ID: the caller keeps a parallel
// ID slice in the same order as the corpus it passed to New. Documents
// ingested after the build are not visible until the owning pipeline
// is rebuilt; that staleness boundary is deliberate.
package lexical

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/custodia-labs/curio/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.LexicalIndex = (*Index)(nil)

// BM25 parameters. Standard values; k1 controls term-frequency
// saturation, b controls length normalisation.
const (
	k1 = 1.5
	b  = 0.75
)

// Index scores documents against term queries using BM25.
type Index struct {
	termFreqs []map[string]int
	docLens   []int
	docFreq   map[string]int
	avgLen    float64
}

// New builds an index from the corpus snapshot. The snapshot's order
// is the positional contract for all Hit values.
func New(corpus []string) *Index {
	idx := &Index{
		termFreqs: make([]map[string]int, len(corpus)),
		docLens:   make([]int, len(corpus)),
		docFreq:   make(map[string]int),
	}

	var totalLen int
	for i, doc := range corpus {
		terms := Tokenize(doc)
		freqs := make(map[string]int, len(terms))
		for _, term := range terms {
			freqs[term]++
		}
		idx.termFreqs[i] = freqs
		idx.docLens[i] = len(terms)
		totalLen += len(terms)
		for term := range freqs {
			idx.docFreq[term]++
		}
	}

	if len(corpus) > 0 {
		idx.avgLen = float64(totalLen) / float64(len(corpus))
	}
	return idx
}

// Size returns the number of documents in the snapshot.
func (idx *Index) Size() int {
	return len(idx.termFreqs)
}

// Search returns up to k documents matching the query, ordered by
// descending BM25 score. Ties break by ascending position so repeated
// identical queries return identical orderings. Zero-score documents
// are never returned.
func (idx *Index) Search(query string, k int) []driven.LexicalHit {
	queryTerms := Tokenize(query)
	if len(queryTerms) == 0 || idx.Size() == 0 || k <= 0 {
		return nil
	}

	n := float64(idx.Size())
	var hits []driven.LexicalHit
	for pos := range idx.termFreqs {
		var score float64
		for _, term := range queryTerms {
			tf := float64(idx.termFreqs[pos][term])
			if tf == 0 {
				continue
			}
			df := float64(idx.docFreq[term])
			idf := math.Log(1 + (n-df+0.5)/(df+0.5))
			norm := tf * (k1 + 1) / (tf + k1*(1-b+b*float64(idx.docLens[pos])/idx.avgLen))
			score += idf * norm
		}
		if score > 0 {
			hits = append(hits, driven.LexicalHit{Position: pos, Score: score})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Position < hits[j].Position
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// Tokenize lowercases text and splits it on any non-alphanumeric rune.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
