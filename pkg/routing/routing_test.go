package routing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientRoute(t *testing.T) {
	var received Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/route", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Write([]byte(`{"success":true,"route":{"distanceMiles":120.5,"durationSeconds":7200,"staticDurationSeconds":6900,"etaFormatted":"2h","traffic":{"delayMinutes":5},"tolls":{"hasTolls":true,"estimatedCost":4.5,"currency":"USD"},"polyline":"_p~iF~ps|U"}}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	response, err := client.Route(context.Background(), Request{
		Origin:      LatLng{Lat: 33.4, Lng: -112.0},
		Destination: LatLng{Lat: 32.2, Lng: -110.9},
	})
	require.NoError(t, err)

	assert.True(t, response.Usable())
	assert.Equal(t, 120.5, response.Route.DistanceMiles)
	assert.Equal(t, 5.0, response.Route.Traffic.DelayMinutes)
	assert.True(t, response.Route.Tolls.HasTolls)
	assert.Equal(t, 33.4, received.Origin.Lat)
}

func TestHTTPClientSentinels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"noRoute":true}`))
	}))
	defer server.Close()

	response, err := NewHTTPClient(server.URL, time.Second).Route(context.Background(), Request{})
	require.NoError(t, err)
	assert.True(t, response.NoRoute)
	assert.False(t, response.Usable())
}

func TestHTTPClientFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"success":false,"error":"upstream timeout"}`))
	}))
	defer server.Close()

	_, err := NewHTTPClient(server.URL, time.Second).Route(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream timeout")
}
