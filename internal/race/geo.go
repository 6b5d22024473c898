package race

import "math"

const earthRadiusM = 6371000.0

// Validator decides whether a reported coordinate is close enough to a
// challenge site for its answer to count.
type Validator struct {
	// Enabled turns geofencing on globally. When false every check passes.
	Enabled bool
}

// Within reports whether (lat, lon) lies inside the challenge's fence.
// Challenges without a fence, or a disabled validator, accept any point.
func (v Validator) Within(ch Challenge, lat, lon float64) bool {
	if !v.Enabled || ch.Geofence == nil {
		return true
	}
	g := ch.Geofence
	return haversineM(lat, lon, g.Lat, g.Lon) <= g.RadiusM
}

// haversineM is the great-circle distance between two points in meters.
func haversineM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(a))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
