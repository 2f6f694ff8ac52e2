package extractor

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/xhad/docsim/internal/models"
	"github.com/xhad/docsim/internal/types"
	"golang.org/x/sync/singleflight"
)

// Cached remembers the text of recently extracted documents so a document
// paired with many others is read once. Concurrent requests for the same
// path share one extraction. Failures are not cached.
type Cached struct {
	next  types.Extractor
	cache *lru.Cache[string, string]
	group singleflight.Group
}

func NewCached(next types.Extractor, size int) (*Cached, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) Extract(doc models.DocumentRef) (string, error) {
	if text, ok := c.cache.Get(doc.Path); ok {
		return text, nil
	}

	v, err, _ := c.group.Do(doc.Path, func() (interface{}, error) {
		text, err := c.next.Extract(doc)
		if err != nil {
			return "", err
		}
		c.cache.Add(doc.Path, text)
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Cached) Len() int {
	return c.cache.Len()
}
