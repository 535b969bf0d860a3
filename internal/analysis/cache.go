package analysis

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/2beens/repscore/internal/exercise"

	"github.com/coocood/freecache"
	"github.com/prometheus/client_golang/prometheus"
)

// ResultCache keeps recent analysis results keyed by the uploaded video
// content, so a client retrying the same upload does not trigger a second
// pose extraction. Results bigger than 1/1024 of the cache size are rejected
// by freecache and simply not cached.
type ResultCache struct {
	cache      *freecache.Cache
	ttlSeconds int
}

func NewResultCache(sizeMB, ttlSeconds int) *ResultCache {
	return &ResultCache{
		cache:      freecache.NewCache(sizeMB * 1024 * 1024),
		ttlSeconds: ttlSeconds,
	}
}

// CacheKey identifies a result by video checksum and the effective profile.
func CacheKey(videoSHA256 string, profile exercise.Profile) string {
	return fmt.Sprintf("%s|%s|%.2f|%.2f",
		videoSHA256, profile.ID, profile.UpThreshold, profile.DownThreshold)
}

func (c *ResultCache) Get(key string) (*Result, bool, error) {
	raw, err := c.cache.Get([]byte(key))
	if errors.Is(err, freecache.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached result: %w", err)
	}
	return &res, true, nil
}

func (c *ResultCache) Set(key string, res *Result) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return c.cache.Set([]byte(key), raw, c.ttlSeconds)
}

// Collectors exposes the cache counters to prometheus.
func (c *ResultCache) Collectors(namespace string) []prometheus.Collector {
	return []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "result_cache",
			Name:      "entries",
			Help:      "Number of cached analysis results",
		}, func() float64 {
			return float64(c.cache.EntryCount())
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "result_cache",
			Name:      "hits",
			Help:      "Number of result cache hits",
		}, func() float64 {
			return float64(c.cache.HitCount())
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "result_cache",
			Name:      "misses",
			Help:      "Number of result cache misses",
		}, func() float64 {
			return float64(c.cache.MissCount())
		}),
	}
}
