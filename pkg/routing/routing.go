package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
)

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func FromPoint(point orb.Point) LatLng {
	return LatLng{Lat: point.Lat(), Lng: point.Lon()}
}

func (l LatLng) Point() orb.Point {
	return orb.Point{l.Lng, l.Lat}
}

type Request struct {
	Origin        LatLng    `json:"origin"`
	Destination   LatLng    `json:"destination"`
	DepartureTime time.Time `json:"departureTime"`
}

type Traffic struct {
	DelayMinutes float64 `json:"delayMinutes" groups:"basic"`
	Level        string  `json:"level,omitempty" groups:"basic"`
}

type Tolls struct {
	HasTolls      bool    `json:"hasTolls" groups:"basic"`
	EstimatedCost float64 `json:"estimatedCost,omitempty" groups:"basic"`
	Currency      string  `json:"currency,omitempty" groups:"basic"`
}

type Route struct {
	DistanceMiles         float64 `json:"distanceMiles"`
	DurationSeconds       float64 `json:"durationSeconds"`
	StaticDurationSeconds float64 `json:"staticDurationSeconds"`
	ETAFormatted          string  `json:"etaFormatted"`
	Traffic               Traffic `json:"traffic"`
	Tolls                 Tolls   `json:"tolls"`
	Polyline              string  `json:"polyline"`
}

// Response mirrors the routing service payload. Fallback and NoRoute are not errors.
type Response struct {
	Success  bool   `json:"success"`
	Fallback bool   `json:"fallback,omitempty"`
	NoRoute  bool   `json:"noRoute,omitempty"`
	Error    string `json:"error,omitempty"`
	Route    *Route `json:"route,omitempty"`
}

// Usable reports whether the response carries a route that should replace the current one
func (r *Response) Usable() bool {
	return r != nil && r.Success && !r.Fallback && !r.NoRoute && r.Route != nil
}

// Service is the external traffic aware routing/ETA provider
type Service interface {
	Route(ctx context.Context, request Request) (*Response, error)
}

type HTTPClient struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Route(ctx context.Context, request Request) (*Response, error) {
	requestBytes, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/route", bytes.NewReader(requestBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("routing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read routing response: %w", err)
	}

	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("decode routing response (status %d): %w", resp.StatusCode, err)
	}

	// fallback and no route are reported with whatever status the service picks
	if response.Fallback || response.NoRoute {
		return &response, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("routing service returned %d: %s", resp.StatusCode, response.Error)
	}

	log.Debug().
		Float64("distance", routeDistance(&response)).
		Str("origin", fmt.Sprintf("%f,%f", request.Origin.Lat, request.Origin.Lng)).
		Msg("Routing response")

	return &response, nil
}

func routeDistance(response *Response) float64 {
	if response.Route == nil {
		return 0
	}
	return response.Route.DistanceMiles
}
