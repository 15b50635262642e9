// internal/geo/distance.go

package geo

import "math"

const earthRadiusKm = 6371

// Point is a coordinate pair in decimal degrees. The zero value means
// "location not set". Lat/lng (0,0) is treated as unset, matching how
// profiles default before the client ever reports a location.
type Point struct {
    Lat float64 `json:"lat" db:"lat"`
    Lng float64 `json:"lng" db:"lng"`
}

// HasCoordinates reports whether the point carries a usable location.
func (p Point) HasCoordinates() bool {
    return p.Lat != 0 || p.Lng != 0
}

// Distance returns the great-circle distance in kilometers between two
// points, or nil when either side has no coordinates. Callers must treat
// nil as "unknown", never as zero.
func Distance(a, b Point) *float64 {
    if !a.HasCoordinates() || !b.HasCoordinates() {
        return nil
    }

    dLat := (b.Lat - a.Lat) * math.Pi / 180
    dLng := (b.Lng - a.Lng) * math.Pi / 180

    h := math.Sin(dLat/2)*math.Sin(dLat/2) +
        math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*
            math.Sin(dLng/2)*math.Sin(dLng/2)

    c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

    km := earthRadiusKm * c
    return &km
}
