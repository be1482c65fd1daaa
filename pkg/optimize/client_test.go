package optimize

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bluele/gcache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingOptimizer struct {
	mutex  sync.Mutex
	calls  int
	result *Result
	err    error
}

func (c *countingOptimizer) Optimize(ctx context.Context, request Request) (*Result, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.result, nil
}

func sampleResult() *Result {
	return &Result{
		OptimizedOrder:       []int{0, 2, 1, 3},
		TotalDistanceMeters:  48280.32,
		TotalDurationSeconds: 3600,
		Savings:              Savings{DistancePercent: 12.5, DurationPercent: 20},
		Legs: []Leg{
			{From: 0, To: 2, DistanceMeters: 16093.44, DurationSeconds: 1200},
		},
	}
}

func waypoints(count int) []Waypoint {
	var list []Waypoint
	for i := 0; i < count; i++ {
		list = append(list, Waypoint{Lat: 33.4 + float64(i)/10, Lng: -112.0 - float64(i)/10})
	}
	return list
}

func TestValidation(t *testing.T) {
	service := &countingOptimizer{result: sampleResult()}
	client := NewClient(service, nil)

	for _, count := range []int{0, 1, 11} {
		result, err := client.Optimize(context.Background(), waypoints(count), ProfileDriving)
		assert.Nil(t, result)

		var validationError *ValidationError
		require.ErrorAs(t, err, &validationError)
		assert.Equal(t, count, validationError.Count)
	}
	assert.Equal(t, 0, service.calls)

	for _, count := range []int{2, 10} {
		_, err := client.Optimize(context.Background(), waypoints(count), ProfileDriving)
		assert.NoError(t, err)
	}
}

func TestIdempotentByRoundedKey(t *testing.T) {
	service := &countingOptimizer{result: sampleResult()}
	client := NewClient(service, nil)

	first, err := client.Optimize(context.Background(), waypoints(4), ProfileDriving)
	require.NoError(t, err)

	nudged := waypoints(4)
	nudged[0].Lat += 0.000001
	second, err := client.Optimize(context.Background(), nudged, ProfileDriving)
	require.NoError(t, err)

	assert.Equal(t, 1, service.calls)
	assert.Equal(t, first, second)

	_, err = client.Optimize(context.Background(), waypoints(4), ProfileDrivingHGV)
	require.NoError(t, err)
	assert.Equal(t, 2, service.calls)
}

func TestKey(t *testing.T) {
	key := Key([]Waypoint{{Lat: 33.123456, Lng: -112.000004}, {Lat: -0.000001, Lng: 1}}, ProfileDriving)
	assert.Equal(t, "driving:33.12346,-112.00000|0.00000,1.00000", key)

	reversed := Key([]Waypoint{{Lat: -0.000001, Lng: 1}, {Lat: 33.123456, Lng: -112.000004}}, ProfileDriving)
	assert.NotEqual(t, key, reversed)
}

func TestServiceErrorTranslation(t *testing.T) {
	tests := []struct {
		err     error
		message string
	}{
		{&ServiceError{Code: CodeNotConfigured}, "route optimization is not configured"},
		{&ServiceError{Code: CodeTooManyWaypoints}, "too many waypoints for optimization"},
		{&ServiceError{Code: "SOMETHING_ELSE"}, "route optimization failed"},
		{errors.New("connection refused"), "route optimization failed"},
	}

	for _, test := range tests {
		service := &countingOptimizer{result: sampleResult()}
		client := NewClient(service, nil)

		_, err := client.Optimize(context.Background(), waypoints(3), ProfileDriving)
		require.NoError(t, err)
		previous := client.Latest()

		service.err = test.err
		result, err := client.Optimize(context.Background(), waypoints(5), ProfileDriving)

		assert.Nil(t, result)
		assert.EqualError(t, err, test.message)
		assert.EqualError(t, client.LastError(), test.message)
		assert.Equal(t, previous, client.Latest())
	}
}

type gatedOptimizer struct {
	entered chan struct{}
	release chan struct{}
	first   sync.Once
}

func (g *gatedOptimizer) Optimize(ctx context.Context, request Request) (*Result, error) {
	blocked := false
	g.first.Do(func() { blocked = true })

	if blocked {
		g.entered <- struct{}{}
		<-g.release
		return &Result{OptimizedOrder: []int{1, 0}}, nil
	}

	return &Result{OptimizedOrder: []int{0, 1, 2}}, nil
}

func TestSupersededResultDiscarded(t *testing.T) {
	service := &gatedOptimizer{entered: make(chan struct{}, 1), release: make(chan struct{})}
	client := NewClient(service, nil)

	type outcome struct {
		result *Result
		err    error
	}
	done := make(chan outcome)
	go func() {
		result, err := client.Optimize(context.Background(), waypoints(2), ProfileDriving)
		done <- outcome{result, err}
	}()
	<-service.entered

	latest, err := client.Optimize(context.Background(), waypoints(3), ProfileDriving)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, latest.OptimizedOrder)

	close(service.release)
	stale := <-done
	assert.Nil(t, stale.result)
	assert.ErrorIs(t, stale.err, ErrSuperseded)

	assert.Equal(t, []int{0, 1, 2}, client.Latest().OptimizedOrder)
	assert.NoError(t, client.LastError())
}

func TestDescribe(t *testing.T) {
	result := &Result{
		TotalDurationSeconds: 48 * 60,
		TotalDistanceMeters:  10 * 1609.344,
		Savings:              Savings{DurationPercent: 20, DistancePercent: 30},
	}
	assert.Equal(t, "Saves 12 min and 4.3 mi", Describe(result))

	assert.Equal(t, "Saves 12 min", Describe(&Result{
		TotalDurationSeconds: 48 * 60,
		Savings:              Savings{DurationPercent: 20},
	}))
	assert.Equal(t, "Stops are already in the best order", Describe(&Result{TotalDurationSeconds: 100}))
	assert.Empty(t, Describe(nil))

	client := NewClient(&countingOptimizer{result: result}, nil)
	_, err := client.Optimize(context.Background(), waypoints(2), ProfileDriving)
	require.NoError(t, err)
	assert.Equal(t, "Saves 12 min and 4.3 mi", client.Savings())
}

func TestMemoryCacheEviction(t *testing.T) {
	clock := gcache.NewFakeClock()
	cache := NewMemoryCache(MemoryCacheOptions{Size: 2, TTL: time.Hour, Clock: clock})
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", sampleResult()))
	require.NoError(t, cache.Set(ctx, "b", sampleResult()))
	require.NoError(t, cache.Set(ctx, "c", sampleResult()))

	_, ok := cache.Get(ctx, "a")
	assert.False(t, ok)
	_, ok = cache.Get(ctx, "c")
	assert.True(t, ok)

	clock.Advance(2 * time.Hour)
	_, ok = cache.Get(ctx, "c")
	assert.False(t, ok)
}

func TestMemoryCacheNoTTL(t *testing.T) {
	clock := gcache.NewFakeClock()
	cache := NewMemoryCache(MemoryCacheOptions{Clock: clock})
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", sampleResult()))
	clock.Advance(24 * 365 * time.Hour)

	result, ok := cache.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, sampleResult(), result)
}

func TestRedisCache(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	cache := NewRedisCache(client, 0)
	ctx := context.Background()

	_, ok := cache.Get(ctx, "missing")
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "driving:1,1|2,2", sampleResult()))
	assert.True(t, server.Exists("haulwatch:optimize:driving:1,1|2,2"))

	result, ok := cache.Get(ctx, "driving:1,1|2,2")
	require.True(t, ok)
	assert.Equal(t, sampleResult(), result)

	service := &countingOptimizer{result: sampleResult()}
	first := NewClient(service, cache)
	second := NewClient(service, NewRedisCache(client, time.Hour))

	_, err := first.Optimize(ctx, waypoints(3), ProfileDriving)
	require.NoError(t, err)
	_, err = second.Optimize(ctx, waypoints(3), ProfileDriving)
	require.NoError(t, err)
	assert.Equal(t, 1, service.calls)
}

func TestServiceClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/optimize", r.URL.Path)
		w.Write([]byte(`{"optimizedOrder":[0,2,1],"totalDistance":1000,"totalDuration":120,"savings":{"distancePercent":5,"durationPercent":8},"legs":[]}`))
	}))
	defer server.Close()

	result, err := NewServiceClient(server.URL, time.Second).Optimize(context.Background(), Request{Waypoints: waypoints(3)})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 1}, result.OptimizedOrder)
	assert.Equal(t, 8.0, result.Savings.DurationPercent)
}

func TestServiceClientErrorCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"limit is 10","code":"TOO_MANY_WAYPOINTS"}`))
	}))
	defer server.Close()

	_, err := NewServiceClient(server.URL, time.Second).Optimize(context.Background(), Request{})

	var serviceError *ServiceError
	require.ErrorAs(t, err, &serviceError)
	assert.Equal(t, CodeTooManyWaypoints, serviceError.Code)
	assert.Equal(t, "limit is 10", serviceError.Detail)

	_, err = NewServiceClient("", time.Second).Optimize(context.Background(), Request{})
	assert.EqualError(t, err, "route optimization is not configured")
}

func TestServiceClientMalformedErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>upstream down</html>`))
	}))
	defer server.Close()

	_, err := NewServiceClient(server.URL, time.Second).Optimize(context.Background(), Request{})

	var serviceError *ServiceError
	require.ErrorAs(t, err, &serviceError)
	assert.Empty(t, serviceError.Code)
	assert.EqualError(t, err, "route optimization failed")
	assert.ErrorContains(t, serviceError.Err, "502")
}

func TestParseWaypoint(t *testing.T) {
	waypoint, err := ParseWaypoint("33.448, -112.074, Phoenix yard")
	require.NoError(t, err)
	assert.Equal(t, Waypoint{Lat: 33.448, Lng: -112.074, Label: "Phoenix yard"}, waypoint)

	waypoint, err = ParseWaypoint("32.2,-110.9")
	require.NoError(t, err)
	assert.Empty(t, waypoint.Label)

	_, err = ParseWaypoint("32.2")
	assert.Error(t, err)
	_, err = ParseWaypoint("north,-110.9")
	assert.Error(t, err)
}
