package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachingClient memoriza generaciones exitosas por prompt.
type CachingClient struct {
	next  LLMClient
	cache *lru.Cache[string, Generation]
}

// NewCachingClient envuelve next con una cache LRU. size <= 0 desactiva la cache y devuelve next.
func NewCachingClient(next LLMClient, size int) (LLMClient, error) {
	if size <= 0 {
		return next, nil
	}
	cache, err := lru.New[string, Generation](size)
	if err != nil {
		return nil, err
	}
	return &CachingClient{next: next, cache: cache}, nil
}

func (c *CachingClient) Generate(ctx context.Context, prompt string) (Generation, error) {
	key := promptKey(prompt)
	if gen, ok := c.cache.Get(key); ok {
		return gen, nil
	}
	gen, err := c.next.Generate(ctx, prompt)
	if err != nil {
		return Generation{}, err
	}
	c.cache.Add(key, gen)
	return gen, nil
}

// Len devuelve la cantidad de entradas en cache.
func (c *CachingClient) Len() int {
	return c.cache.Len()
}

func promptKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
