package pairs_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/docsim/internal/models"
	"github.com/xhad/docsim/pkg/pairs"
)

func refs(prefix string, n int) []models.DocumentRef {
	out := make([]models.DocumentRef, n)
	for i := range out {
		out[i] = models.NewDocumentRef(fmt.Sprintf("/docs/%s%d.pdf", prefix, i))
	}
	return out
}

func TestPairs_RowMajor(t *testing.T) {
	p := pairs.New(refs("l", 2), refs("r", 3))
	require.Equal(t, 6, p.Len())

	var got []string
	for i, task := range p.All() {
		assert.Equal(t, i, task.Seq)
		got = append(got, task.Left.Name+"|"+task.Right.Name)
	}

	assert.Equal(t, []string{
		"l0.pdf|r0.pdf", "l0.pdf|r1.pdf", "l0.pdf|r2.pdf",
		"l1.pdf|r0.pdf", "l1.pdf|r1.pdf", "l1.pdf|r2.pdf",
	}, got)
}

func TestPairs_Count(t *testing.T) {
	for m := 0; m <= 4; m++ {
		for n := 0; n <= 4; n++ {
			p := pairs.New(refs("l", m), refs("r", n))
			count := 0
			for range p.All() {
				count++
			}
			assert.Equal(t, m*n, count, "m=%d n=%d", m, n)
			assert.Equal(t, m*n, p.Len())
		}
	}
}

func TestPairs_Restartable(t *testing.T) {
	p := pairs.New(refs("l", 3), refs("r", 2))

	collect := func() []models.ComparisonTask {
		var out []models.ComparisonTask
		for _, task := range p.All() {
			out = append(out, task)
		}
		return out
	}

	first := collect()
	assert.Equal(t, first, collect())
}

func TestPairs_EarlyStop(t *testing.T) {
	p := pairs.New(refs("l", 3), refs("r", 3))

	count := 0
	for range p.All() {
		count++
		if count == 4 {
			break
		}
	}
	assert.Equal(t, 4, count)
}

func TestPairs_Snapshot(t *testing.T) {
	left := refs("l", 1)
	p := pairs.New(left, refs("r", 1))
	left[0].Name = "changed"

	for _, task := range p.All() {
		assert.Equal(t, "l0.pdf", task.Left.Name)
	}
}
