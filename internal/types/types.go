package types

import (
	"iter"

	"github.com/xhad/docsim/internal/models"
)

// Core interfaces
type Extractor interface {
	Extract(doc models.DocumentRef) (string, error)
}

// Scorer is the similarity policy. Implementations must be symmetric and
// return a value in [0,1].
type Scorer interface {
	Score(a, b string) float64
}

type TaskSource interface {
	Len() int
	All() iter.Seq2[int, models.ComparisonTask]
}

type Tokenizer interface {
	Tokenize(text string) []string
}
