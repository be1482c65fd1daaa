package geo

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-polyline"
)

var ErrEmptyPolyline = errors.New("polyline has no points")

// Decode turns a Google encoded polyline into lon/lat points
func Decode(encoded string) (Polyline, error) {
	if encoded == "" {
		return nil, ErrEmptyPolyline
	}

	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}

	line := make(Polyline, 0, len(coords))
	for _, coord := range coords {
		// encoded polylines are lat,lng ordered
		line = append(line, orb.Point{coord[1], coord[0]})
	}

	return line, nil
}

// Encode is the inverse of Decode
func Encode(line Polyline) string {
	coords := make([][]float64, 0, len(line))
	for _, point := range line {
		coords = append(coords, []float64{point.Lat(), point.Lon()})
	}

	return string(polyline.EncodeCoords(coords))
}
