package observations

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const minCacheSizeBytes = 512 * 1024

// CachedRepo keeps recent ListAll snapshots in memory. Any Add clears the whole cache,
// so reads never return a snapshot older than the last write done through it.
type CachedRepo struct {
	repo  Store
	cache *freecache.Cache
	// freecache takes whole seconds and reads 0 as "never expire"
	expireSeconds int
}

func NewCachedRepo(repo Store, sizeBytes int, ttl time.Duration) *CachedRepo {
	if sizeBytes < minCacheSizeBytes {
		sizeBytes = minCacheSizeBytes
	}
	return &CachedRepo{
		repo:          repo,
		cache:         freecache.NewCache(sizeBytes),
		expireSeconds: cacheExpireSeconds(ttl),
	}
}

// cacheExpireSeconds rounds ttl up to whole seconds, never below one.
func cacheExpireSeconds(ttl time.Duration) int {
	seconds := int(math.Ceil(ttl.Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}

func (r *CachedRepo) Add(ctx context.Context, list []Observation) ([]Observation, error) {
	added, err := r.repo.Add(ctx, list)
	// clear on failure too, the backend may have written a part of the list
	r.cache.Clear()
	return added, err
}

func (r *CachedRepo) ListAll(ctx context.Context, params ListParams) (_ []Observation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.hoopstats.cached.listAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	key := params.cacheKey()
	if cached, err := r.cache.Get(key); err == nil {
		var list []Observation
		if err := json.Unmarshal(cached, &list); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return list, nil
		}
		log.Warnf("cached repo: corrupt entry for [%s], dropping it", key)
		r.cache.Del(key)
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	list, err := r.repo.ListAll(ctx, params)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(list)
	if err != nil {
		// e.g. a NaN value in storage, let the caller deal with it
		log.Debugf("cached repo: not caching [%s]: %s", key, err)
		return list, nil
	}
	if err := r.cache.Set(key, encoded, r.expireSeconds); err != nil {
		log.Warnf("cached repo: set [%s]: %s", key, err)
	}

	return list, nil
}

func (r *CachedRepo) EntryCount() int64 {
	return r.cache.EntryCount()
}
