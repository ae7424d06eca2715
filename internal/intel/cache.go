package intel

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of memoized messages.
const DefaultCacheSize = 1024

// Extractor memoizes Extract by message text. Scammers paste the same
// script into many sessions, and transcript reconstruction re-extracts
// every prior message.
type Extractor struct {
	cache *lru.Cache[string, Intel]
}

// NewExtractor returns an Extractor holding up to size results. A
// non-positive size falls back to DefaultCacheSize.
func NewExtractor(size int) (*Extractor, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, Intel](size)
	if err != nil {
		return nil, fmt.Errorf("create extraction cache: %w", err)
	}
	return &Extractor{cache: cache}, nil
}

// Extract behaves exactly like the package-level Extract. The returned value
// is a copy the caller may modify freely.
func (e *Extractor) Extract(text string) Intel {
	if e == nil || e.cache == nil {
		return Extract(text)
	}
	if in, ok := e.cache.Get(text); ok {
		return in.Clone()
	}
	in := Extract(text)
	e.cache.Add(text, in.Clone())
	return in
}

// Len reports the number of cached results.
func (e *Extractor) Len() int {
	if e == nil || e.cache == nil {
		return 0
	}
	return e.cache.Len()
}
