package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

const MetresPerMile = 1609.344

// Polyline is an ordered route geometry of lon/lat points
type Polyline = orb.LineString

// Position is where a vehicle sits along a polyline
type Position struct {
	Point        orb.Point `json:"point" groups:"basic"`
	Bearing      float64   `json:"bearing" groups:"basic"`
	SegmentIndex int       `json:"segment_index" groups:"detailed"`
}

// PointAtProgress interpolates the point at percent (0-100) along the line.
// An empty line returns the origin (0,0) so callers must check for that before displaying it.
func PointAtProgress(line Polyline, percent float64) Position {
	if len(line) == 0 {
		return Position{}
	}

	percent = clamp(percent, 0, 100)

	if len(line) == 1 {
		return Position{Point: line[0]}
	}

	lastIndex := len(line) - 1

	if percent == 0 {
		return Position{
			Point:   line[0],
			Bearing: BearingBetween(line[0], line[1]),
		}
	}
	if percent == 100 {
		return Position{
			Point:        line[lastIndex],
			Bearing:      BearingBetween(line[lastIndex-1], line[lastIndex]),
			SegmentIndex: lastIndex - 1,
		}
	}

	fractionalIndex := (percent / 100) * float64(lastIndex)
	segmentIndex := int(math.Floor(fractionalIndex))
	if segmentIndex >= lastIndex {
		segmentIndex = lastIndex - 1
	}

	start := line[segmentIndex]
	end := line[segmentIndex+1]

	return Position{
		Point:        Lerp(start, end, fractionalIndex-float64(segmentIndex)),
		Bearing:      BearingBetween(start, end),
		SegmentIndex: segmentIndex,
	}
}

// BearingBetween returns the initial great-circle bearing from a to b in degrees [0,360).
// Only suitable for heading display, not for distance claims.
func BearingBetween(a orb.Point, b orb.Point) float64 {
	if a.Equal(b) {
		return 0
	}

	bearing := math.Mod(orbgeo.Bearing(a, b)+360, 360)
	if bearing >= 360 {
		bearing = 0
	}

	return bearing
}

// DistanceMiles is the straight line (haversine) distance between two points
func DistanceMiles(a orb.Point, b orb.Point) float64 {
	return orbgeo.Distance(a, b) / MetresPerMile
}

// Lerp linearly interpolates between two points
func Lerp(start orb.Point, end orb.Point, fraction float64) orb.Point {
	return orb.Point{
		start[0] + (end[0]-start[0])*fraction,
		start[1] + (end[1]-start[1])*fraction,
	}
}

// ClosestPoint finds the segment of the line nearest to p and returns the index of the
// vertex on that segment closest to the projection along with the distance to the line in miles.
// An empty line returns an index of -1.
func ClosestPoint(line Polyline, p orb.Point) (int, float64) {
	switch len(line) {
	case 0:
		return -1, math.Inf(1)
	case 1:
		return 0, DistanceMiles(line[0], p)
	}

	closestIndex := -1
	closestDistance := math.Inf(1)

	for i := 0; i < len(line)-1; i++ {
		a := line[i]
		b := line[i+1]

		t := projectOntoSegment(a, b, p)
		distance := DistanceMiles(Lerp(a, b, t), p)

		if distance < closestDistance {
			closestDistance = distance
			if t < 0.5 {
				closestIndex = i
			} else {
				closestIndex = i + 1
			}
		}
	}

	return closestIndex, closestDistance
}

// projectOntoSegment returns the clamped fraction along a->b of the foot of the
// perpendicular from p, worked out in a local equirectangular frame around a
func projectOntoSegment(a orb.Point, b orb.Point, p orb.Point) float64 {
	scale := math.Cos(a.Lat() * math.Pi / 180)

	C := (b.Lon() - a.Lon()) * scale
	D := b.Lat() - a.Lat()
	A := (p.Lon() - a.Lon()) * scale
	B := p.Lat() - a.Lat()

	lenSq := C*C + D*D
	if lenSq == 0 {
		return 0
	}

	return clamp((A*C+B*D)/lenSq, 0, 1)
}

// Length returns the total length of the line in miles
func Length(line Polyline) float64 {
	var total float64
	for i := 1; i < len(line); i++ {
		total += DistanceMiles(line[i-1], line[i])
	}
	return total
}

func clamp(value float64, min float64, max float64) float64 {
	if math.IsNaN(value) {
		return min
	}
	return math.Max(min, math.Min(max, value))
}
