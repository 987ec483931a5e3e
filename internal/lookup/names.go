package lookup

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sojus/helpdesk/internal/repository"
)

// Kinds of display names a ticket projection needs.
const (
	KindCourt    = "court"
	KindUser     = "user"
	KindHardware = "hardware"
)

// NameResolver returns display names for referenced records. Unlike Gateway it does not
// fail closed: a retired record still has a name. ok is false when the record is absent.
type NameResolver interface {
	Name(ctx context.Context, kind, id string) (name string, ok bool, err error)
}

// DirectoryNames reads names straight from the directory tables.
type DirectoryNames struct {
	dir repository.DirectoryRepository
}

func NewDirectoryNames(dir repository.DirectoryRepository) *DirectoryNames {
	return &DirectoryNames{dir: dir}
}

// Name returns the court name, the user's full name or the hardware inventory tag.
func (d *DirectoryNames) Name(ctx context.Context, kind, id string) (string, bool, error) {
	name, err := d.lookup(ctx, kind, id)
	if errors.Is(err, repository.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return name, true, nil
}

func (d *DirectoryNames) lookup(ctx context.Context, kind, id string) (string, error) {
	switch kind {
	case KindCourt:
		court, err := d.dir.CourtByID(ctx, id)
		if err != nil {
			return "", err
		}
		return court.Name, nil
	case KindUser:
		user, err := d.dir.UserByID(ctx, id)
		if err != nil {
			return "", err
		}
		return user.FullName, nil
	case KindHardware:
		hw, err := d.dir.HardwareByID(ctx, id)
		if err != nil {
			return "", err
		}
		return hw.InventoryTag, nil
	default:
		return "", repository.ErrNotFound
	}
}

const keyPrefix = "helpdesk:name:"

// missingMarker caches negative lookups so absent ids do not hit the database on every read.
const missingMarker = "\x00"

// CachedNames fronts a NameResolver with Redis. Concurrent misses for the same key collapse
// into one load, and Redis failures fall back to the wrapped resolver.
type CachedNames struct {
	client *redis.Client
	next   NameResolver
	ttl    time.Duration
	logger *zap.Logger
	group  singleflight.Group
}

func NewCachedNames(client *redis.Client, next NameResolver, ttl time.Duration, logger *zap.Logger) *CachedNames {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedNames{client: client, next: next, ttl: ttl, logger: logger}
}

type cachedName struct {
	name string
	ok   bool
}

func (c *CachedNames) Name(ctx context.Context, kind, id string) (string, bool, error) {
	key := keyPrefix + kind + ":" + id

	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if cached == missingMarker {
			return "", false, nil
		}
		return cached, true, nil
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("name cache read failed", zap.String("key", key), zap.Error(err))
		return c.next.Name(ctx, kind, id)
	}

	// The shared load outlives any single waiter's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(key, func() (any, error) {
		name, ok, err := c.next.Name(loadCtx, kind, id)
		if err != nil {
			return nil, err
		}
		value := name
		if !ok {
			value = missingMarker
		}
		if err := c.client.Set(loadCtx, key, value, c.ttl).Err(); err != nil {
			c.logger.Warn("name cache write failed", zap.String("key", key), zap.Error(err))
		}
		return cachedName{name: name, ok: ok}, nil
	})
	if err != nil {
		return "", false, err
	}
	result := v.(cachedName)
	return result.name, result.ok, nil
}
