package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span names.
const (
	SpanNGONearby       = "ngo.nearby"
	SpanDonationNearby  = "donation.nearby"
	SpanDonationMatches = "donation.matches"
	SpanDonationAssign  = "donation.assign"
	SpanReverseGeocode  = "geocode.reverse"
)

// Span attribute keys.
const (
	AttrRadiusMeters = attribute.Key("proximity.radius_m")
	AttrSnapshotSize = attribute.Key("proximity.snapshot_size")
	AttrMatches      = attribute.Key("proximity.matches")
	AttrCacheHit     = attribute.Key("cache.hit")
	AttrDonationID   = attribute.Key("donation.id")
	AttrNGOID        = attribute.Key("ngo.id")
)
