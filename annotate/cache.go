package annotate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/revelaction/syncomp/corpus"
	sent "github.com/revelaction/syncomp/sentence"
)

const cachePrefix = "syncomp:ann:"

// Cache stores the annotation of each document text in Redis, so that
// re-runs only send unseen texts to the inner annotator.
type Cache struct {
	client *redis.Client
	inner  Annotator
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

func NewCache(client *redis.Client, inner Annotator, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		inner:  inner,
		ttl:    ttl,
	}
}

// Key returns the cache key of a document text.
func (c *Cache) Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return cachePrefix + hex.EncodeToString(sum[:])
}

// Stats returns the hits and misses since creation.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) Annotate(ctx context.Context, docs []corpus.Document) ([]sent.Row, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(docs))
	for i, d := range docs {
		keys[i] = c.Key(d.Text)
	}

	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("cache lookup: %w", err)
	}

	byDoc := make(map[int][]sent.Row, len(docs))
	var missing []corpus.Document
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			missing = append(missing, docs[i])
			continue
		}

		var rows []sent.Row
		if err := json.Unmarshal([]byte(s), &rows); err != nil {
			// a corrupt entry is re-annotated
			missing = append(missing, docs[i])
			continue
		}
		for j := range rows {
			rows[j].DocId = docs[i].Id
		}
		byDoc[docs[i].Id] = rows
	}

	c.hits.Add(int64(len(docs) - len(missing)))
	c.misses.Add(int64(len(missing)))

	if len(missing) > 0 {
		fresh, err := c.inner.Annotate(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, r := range fresh {
			byDoc[r.DocId] = append(byDoc[r.DocId], r)
		}
		if err := c.store(ctx, missing, byDoc); err != nil {
			return nil, err
		}
	}

	var rows []sent.Row
	for _, d := range docs {
		rows = append(rows, byDoc[d.Id]...)
	}
	return rows, nil
}

func (c *Cache) store(ctx context.Context, docs []corpus.Document, byDoc map[int][]sent.Row) error {
	pipe := c.client.Pipeline()
	for _, d := range docs {
		rows := byDoc[d.Id]
		if len(rows) == 0 {
			continue
		}
		data, err := json.Marshal(rows)
		if err != nil {
			return err
		}
		pipe.Set(ctx, c.Key(d.Text), data, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}
