// Package cache keeps rendered-from-store items in Redis so repeated reads
// of the same item skip the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/menu-api/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "menu:item:"

// ItemCache stores items as JSON under menu:item:<id>.
//
// Every invalidation bumps a generation counter under menu:item:<id>:gen.
// A read-through fill captures the generation before reading the store and
// is only written while that generation is still current, so a row read
// before a concurrent write cannot be cached after the write's
// invalidation.
//
// Redis failures are logged and treated as misses: the store stays the
// source of truth.
type ItemCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

func NewItemCache(client *redis.Client, ttl time.Duration, logger *zerolog.Logger) *ItemCache {
	return &ItemCache{client: client, ttl: ttl, logger: logger}
}

func key(id int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, id)
}

func genKey(id int64) string {
	return key(id) + ":gen"
}

// NoGeneration is returned by Generation when Redis cannot be read. Fills
// made with it are skipped.
const NoGeneration int64 = -1

func (c *ItemCache) Get(ctx context.Context, id int64) (*model.Item, bool) {
	raw, err := c.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Int64("item_id", id).Msg("item cache read failed")
		}
		return nil, false
	}

	var item model.Item
	if err := json.Unmarshal(raw, &item); err != nil {
		c.logger.Warn().Err(err).Int64("item_id", id).Msg("discarding corrupt cached item")
		c.Delete(ctx, id)
		return nil, false
	}
	return &item, true
}

// Generation returns the current invalidation generation of item id.
func (c *ItemCache) Generation(ctx context.Context, id int64) int64 {
	gen, err := currentGeneration(ctx, c.client, id)
	if err != nil {
		c.logger.Warn().Err(err).Int64("item_id", id).Msg("item cache generation read failed")
		return NoGeneration
	}
	return gen
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func currentGeneration(ctx context.Context, cmd getter, id int64) (int64, error) {
	gen, err := cmd.Get(ctx, genKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetIfCurrent caches item unless it was invalidated since gen was read.
func (c *ItemCache) SetIfCurrent(ctx context.Context, item *model.Item, gen int64) {
	if gen == NoGeneration {
		return
	}

	raw, err := json.Marshal(item)
	if err != nil {
		c.logger.Warn().Err(err).Int64("item_id", item.ID).Msg("item cache encode failed")
		return
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := currentGeneration(ctx, tx, item.ID)
		if err != nil {
			return err
		}
		if current != gen {
			return redis.TxFailedErr
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(item.ID), raw, c.ttl)
			return nil
		})
		return err
	}, genKey(item.ID))

	switch {
	case err == nil:
	case errors.Is(err, redis.TxFailedErr):
		c.logger.Debug().Int64("item_id", item.ID).Msg("item changed while loading, not cached")
	default:
		c.logger.Warn().Err(err).Int64("item_id", item.ID).Msg("item cache write failed")
	}
}

// Delete drops the cached item and bumps its generation.
func (c *ItemCache) Delete(ctx context.Context, id int64) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key(id))
		pipe.Incr(ctx, genKey(id))
		if c.ttl > 0 {
			pipe.Expire(ctx, genKey(id), 2*c.ttl)
		}
		return nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Int64("item_id", id).Msg("item cache invalidation failed")
	}
}
