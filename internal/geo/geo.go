package geo

import "math"

const earthRadiusKm = 6371.0

// BoundingBox delimits a latitude/longitude rectangle around a center point.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// Distance returns the great-circle distance between two points in kilometers.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// WithinRadius reports whether a point lies within radiusKm of a center.
func WithinRadius(centerLat, centerLng, lat, lng, radiusKm float64) bool {
	return Distance(centerLat, centerLng, lat, lng) <= radiusKm
}

// Box returns the bounding box enclosing a circle of radiusKm around a
// center. Used to pre-filter candidate sets before exact distance checks.
func Box(centerLat, centerLng, radiusKm float64) BoundingBox {
	latDelta := radiusKm / earthRadiusKm * 180 / math.Pi
	lngDelta := latDelta / math.Cos(centerLat*math.Pi/180)
	return BoundingBox{
		MinLat: centerLat - latDelta,
		MaxLat: centerLat + latDelta,
		MinLng: centerLng - lngDelta,
		MaxLng: centerLng + lngDelta,
	}
}

// Contains reports whether the point lies inside the box.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

const geohashBase32 = "0123456789bcdefghjkmnpqrstuvwxyz"

// Encode returns the standard base32 geohash of a point at the given
// precision (characters). Precision 7 resolves to roughly 150 m cells,
// which is finer than any matching cutoff the engine uses.
func Encode(lat, lng float64, precision int) string {
	if precision <= 0 {
		precision = 7
	}
	latLo, latHi := -90.0, 90.0
	lngLo, lngHi := -180.0, 180.0

	buf := make([]byte, 0, precision)
	bit := 0
	ch := 0
	even := true

	for len(buf) < precision {
		if even {
			mid := (lngLo + lngHi) / 2
			if lng >= mid {
				ch |= 1 << (4 - bit)
				lngLo = mid
			} else {
				lngHi = mid
			}
		} else {
			mid := (latLo + latHi) / 2
			if lat >= mid {
				ch |= 1 << (4 - bit)
				latLo = mid
			} else {
				latHi = mid
			}
		}
		even = !even
		if bit < 4 {
			bit++
		} else {
			buf = append(buf, geohashBase32[ch])
			bit = 0
			ch = 0
		}
	}
	return string(buf)
}
