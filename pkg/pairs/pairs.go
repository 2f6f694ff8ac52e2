package pairs

import (
	"iter"
	"slices"

	"github.com/xhad/docsim/internal/models"
)

// Pairs is the cross product of two document collections.
type Pairs struct {
	left  []models.DocumentRef
	right []models.DocumentRef
}

// New snapshots left and right; later changes to the caller's slices are not observed.
func New(left, right []models.DocumentRef) *Pairs {
	return &Pairs{
		left:  slices.Clone(left),
		right: slices.Clone(right),
	}
}

func (p *Pairs) Len() int {
	return len(p.left) * len(p.right)
}

// All yields every task in row-major order: all of right against left[0],
// then all of right against left[1], and so on. It can be ranged over any
// number of times.
func (p *Pairs) All() iter.Seq2[int, models.ComparisonTask] {
	return func(yield func(int, models.ComparisonTask) bool) {
		seq := 0
		for _, l := range p.left {
			for _, r := range p.right {
				task := models.ComparisonTask{Seq: seq, Left: l, Right: r}
				if !yield(seq, task) {
					return
				}
				seq++
			}
		}
	}
}
