package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/donamatch/donamatch/internal/core/ports"
	"github.com/donamatch/donamatch/internal/core/proximity"
	"github.com/donamatch/donamatch/internal/pkg/metrics"
	"github.com/donamatch/donamatch/internal/pkg/telemetry"
)

// DefaultNearbyTTL is how long, in seconds, a proximity result stays cached.
// Writes invalidate the cache, so this only bounds staleness from other
// writers.
const DefaultNearbyTTL = 60

// nearbyKey encodes every query field exactly.
func nearbyKey(prefix string, q proximity.Query) string {
	return fmt.Sprintf("%s%s:%s:%s:%s:%d:%s", prefix,
		exactFloat(q.Center.Lat), exactFloat(q.Center.Lon), exactFloat(q.RadiusMeters),
		q.Availability, q.Limit, q.Unit)
}

func exactFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// nearby answers q over a fresh snapshot, read-through cached under prefix.
func nearby[E proximity.Entity](
	ctx context.Context,
	cache ports.CacheService,
	ttl int,
	kind, prefix, span string,
	q proximity.Query,
	snapshot func(context.Context) ([]E, error),
) (proximity.Result[E], error) {
	if err := q.Validate(); err != nil {
		metrics.ProximitySearches.WithLabelValues(kind, "invalid").Inc()
		return proximity.Result[E]{Unit: q.Unit}, err
	}

	ctx, sp := telemetry.StartSpan(ctx, span, telemetry.AttrRadiusMeters.Float64(q.RadiusMeters))
	defer sp.End()

	key := nearbyKey(prefix, q)
	if cache != nil && ttl > 0 {
		if data, err := cache.Get(ctx, key); err == nil {
			var res proximity.Result[E]
			if err := json.Unmarshal(data, &res); err == nil {
				metrics.CacheHits.WithLabelValues(kind + "_nearby").Inc()
				sp.SetAttributes(telemetry.AttrCacheHit.Bool(true), telemetry.AttrMatches.Int(res.Len()))
				return res, nil
			}
		}
		metrics.CacheMisses.WithLabelValues(kind + "_nearby").Inc()
	}

	start := time.Now()
	entities, err := snapshot(ctx)
	if err != nil {
		metrics.ProximitySearches.WithLabelValues(kind, "error").Inc()
		sp.RecordError(err)
		return proximity.Result[E]{Unit: q.Unit}, fmt.Errorf("snapshot %s: %w", kind, err)
	}

	res, err := proximity.Search(proximity.NewIndex(entities), q)
	if err != nil {
		metrics.ProximitySearches.WithLabelValues(kind, "invalid").Inc()
		return res, err
	}

	metrics.ProximitySearches.WithLabelValues(kind, "ok").Inc()
	metrics.ProximitySnapshotSize.WithLabelValues(kind).Observe(float64(len(entities)))
	metrics.ProximityMatches.WithLabelValues(kind).Observe(float64(res.Len()))
	metrics.ProximityDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	sp.SetAttributes(
		telemetry.AttrCacheHit.Bool(false),
		telemetry.AttrSnapshotSize.Int(len(entities)),
		telemetry.AttrMatches.Int(res.Len()),
	)

	if cache != nil && ttl > 0 {
		if data, err := json.Marshal(res); err == nil {
			_ = cache.Set(ctx, key, data, ttl)
		}
	}

	return res, nil
}
