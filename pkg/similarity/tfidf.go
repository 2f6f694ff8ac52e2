// Package similarity holds the scoring policy used to compare two extracted texts.
//
// The default policy is TF-IDF cosine similarity computed over the two texts
// being compared: the pair itself is the corpus, so a term that appears in
// both documents weighs less than one unique to either.
package similarity

import (
	"math"
	"sort"

	"github.com/xhad/docsim/internal/types"
	"github.com/xhad/docsim/pkg/processor"
)

type TFIDF struct {
	tokenizer types.Tokenizer
}

func NewTFIDF(tokenizer types.Tokenizer) *TFIDF {
	if tokenizer == nil {
		tokenizer = processor.New()
	}
	return &TFIDF{tokenizer: tokenizer}
}

// Score returns the cosine similarity of the smoothed TF-IDF vectors of a and b.
// It is 0 when either text has no tokens.
func (s *TFIDF) Score(a, b string) float64 {
	tfA := termCounts(s.tokenizer.Tokenize(a))
	tfB := termCounts(s.tokenizer.Tokenize(b))
	if len(tfA) == 0 || len(tfB) == 0 {
		return 0
	}

	vocab := make([]string, 0, len(tfA)+len(tfB))
	for term := range tfA {
		vocab = append(vocab, term)
	}
	for term := range tfB {
		if _, ok := tfA[term]; !ok {
			vocab = append(vocab, term)
		}
	}
	// Fixed summation order keeps Score(a,b) and Score(b,a) bit-identical.
	sort.Strings(vocab)

	const docs = 2
	var dot, normA, normB float64
	for _, term := range vocab {
		ca, cb := tfA[term], tfB[term]
		df := 0
		if ca > 0 {
			df++
		}
		if cb > 0 {
			df++
		}
		idf := math.Log(float64(1+docs)/float64(1+df)) + 1

		wa := float64(ca) * idf
		wb := float64(cb) * idf
		dot += wa * wb
		normA += wa * wa
		normB += wb * wb
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return clamp(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

func termCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
