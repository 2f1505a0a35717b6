package fieldcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jacksonlee411/people-console/modules/personnel/domain/fieldmeta"
	"go.uber.org/zap"
)

const (
	DefaultKey = "people-console:field-definitions"
	DefaultTTL = 60 * time.Second
)

type Source interface {
	FieldDefinitions(ctx context.Context) ([]fieldmeta.FieldDefinition, error)
}

// Cache keeps the field definition list in Redis. A nil *Cache passes every
// load through to the source. Redis failures never fail a load.
//
// Every Invalidate bumps a generation counter. A Load stores its result only
// when the generation it observed before calling the source is still current,
// so a list fetched across a concurrent write is never cached.
type Cache struct {
	rdb    *redis.Client
	key    string
	genKey string
	ttl    time.Duration
	logger *zap.Logger
}

var errStaleGeneration = errors.New("fieldcache: generation changed during load")

func New(rdb *redis.Client, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{rdb: rdb, key: DefaultKey, genKey: DefaultKey + ":gen", ttl: DefaultTTL, logger: logger}
}

func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

func (c *Cache) Load(ctx context.Context, src Source) ([]fieldmeta.FieldDefinition, error) {
	if c == nil {
		return src.FieldDefinitions(ctx)
	}

	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	switch {
	case err == nil:
		var defs []fieldmeta.FieldDefinition
		if uerr := json.Unmarshal(raw, &defs); uerr == nil {
			return defs, nil
		}
		c.logger.Warn("field definition cache entry unreadable", zap.String("key", c.key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("field definition cache get failed", zap.Error(err))
	}

	gen, genErr := c.generation(ctx, c.rdb)
	defs, err := src.FieldDefinitions(ctx)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		c.logger.Warn("field definition cache generation read failed", zap.Error(genErr))
		return defs, nil
	}
	if b, merr := json.Marshal(defs); merr == nil {
		if serr := c.store(ctx, gen, b); serr != nil {
			c.logger.Warn("field definition cache set skipped", zap.Error(serr))
		}
	}
	return defs, nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *Cache) generation(ctx context.Context, cmd getter) (int64, error) {
	gen, err := cmd.Get(ctx, c.genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// store writes b only if no Invalidate ran since gen was read.
func (c *Cache) store(ctx context.Context, gen int64, b []byte) error {
	err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := c.generation(ctx, tx)
		if err != nil {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key, b, c.ttl)
			return nil
		})
		return err
	}, c.genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return errStaleGeneration
	}
	return err
}

// Invalidate drops the cached list; callers run it after every write.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey)
		pipe.Del(ctx, c.key)
		return nil
	})
	return err
}

func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}
