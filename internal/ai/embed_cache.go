package ai

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"pdf-rag-chatbot/utils"
)

// CachingEmbedder memoises vectors of an inner Embedder in a bounded LRU keyed
// by a HighwayHash of provider name and text.
type CachingEmbedder struct {
	next  Embedder
	mu    sync.Mutex
	cap   int
	ll    *list.List
	items map[uint64]*list.Element

	hits   int64
	misses int64
}

type embedEntry struct {
	key uint64
	vec []float32
}

func NewCachingEmbedder(next Embedder, capacity int) *CachingEmbedder {
	if capacity <= 0 {
		capacity = 1
	}
	return &CachingEmbedder{
		next:  next,
		cap:   capacity,
		ll:    list.New(),
		items: make(map[uint64]*list.Element, capacity),
	}
}

func (c *CachingEmbedder) Name() string { return c.next.Name() }

// Close closes the wrapped embedder if it holds resources.
func (c *CachingEmbedder) Close() error { return Close(c.next) }

func (c *CachingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)
	if vec, ok := c.get(key); ok {
		return vec, nil
	}
	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.add(key, vec)
	return cloneVec(vec), nil
}

func (c *CachingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	keys := make([]uint64, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		keys[i] = c.key(text)
		if vec, ok := c.get(keys[i]); ok {
			out[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.next.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(missTexts))
	}
	for j, i := range missIdx {
		c.add(keys[i], vecs[j])
		out[i] = cloneVec(vecs[j])
	}
	return out, nil
}

// Stats returns cache hits and misses.
func (c *CachingEmbedder) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *CachingEmbedder) key(text string) uint64 {
	return utils.TextKey(c.next.Name() + "\n" + text)
}

func (c *CachingEmbedder) get(key uint64) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		c.hits++
		return cloneVec(el.Value.(*embedEntry).vec), true
	}
	c.misses++
	return nil, false
}

func (c *CachingEmbedder) add(key uint64, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		el.Value.(*embedEntry).vec = cloneVec(vec)
		c.ll.MoveToFront(el)
		return
	}
	c.items[key] = c.ll.PushFront(&embedEntry{key: key, vec: cloneVec(vec)})
	if c.ll.Len() > c.cap {
		back := c.ll.Back()
		if back != nil {
			c.ll.Remove(back)
			delete(c.items, back.Value.(*embedEntry).key)
		}
	}
}

func cloneVec(vec []float32) []float32 {
	if len(vec) == 0 {
		return nil
	}
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
