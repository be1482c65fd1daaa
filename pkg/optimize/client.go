package optimize

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

type Request struct {
	Waypoints []Waypoint `json:"waypoints"`
	Profile   Profile    `json:"profile"`
}

// Optimizer is the external waypoint order optimization service
type Optimizer interface {
	Optimize(ctx context.Context, request Request) (*Result, error)
}

// Client validates and memoizes optimizer calls. Only the most recent call may update Latest.
type Client struct {
	service Optimizer
	cache   Cache

	mutex      sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	latest     *Result
	lastError  error
}

func NewClient(service Optimizer, cache Cache) *Client {
	if cache == nil {
		cache = NewMemoryCache(MemoryCacheOptions{})
	}

	return &Client{
		service: service,
		cache:   cache,
	}
}

func (c *Client) Optimize(ctx context.Context, waypoints []Waypoint, profile Profile) (*Result, error) {
	if len(waypoints) < MinWaypoints || len(waypoints) > MaxWaypoints {
		return nil, &ValidationError{Count: len(waypoints)}
	}
	if profile == "" {
		profile = ProfileDriving
	}

	key := Key(waypoints, profile)

	c.mutex.Lock()
	c.generation++
	generation := c.generation
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mutex.Unlock()

	if cached, ok := c.cache.Get(ctx, key); ok {
		log.Debug().Str("key", key).Msg("Optimization cache hit")
		c.keep(generation, cached, nil)
		return cached, nil
	}

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mutex.Lock()
	if generation == c.generation {
		c.cancel = cancel
	}
	c.mutex.Unlock()

	result, err := c.service.Optimize(callCtx, Request{Waypoints: waypoints, Profile: profile})

	if err == nil && result != nil {
		if setErr := c.cache.Set(ctx, key, result); setErr != nil {
			log.Error().Err(setErr).Str("key", key).Msg("Failed to cache optimization")
		}
	}

	if !c.isCurrent(generation) {
		log.Debug().Str("key", key).Msg("Discarding superseded optimization")
		return nil, ErrSuperseded
	}

	if err == nil && result == nil {
		err = errors.New("optimizer returned no result")
	}

	if err != nil {
		serviceError := asServiceError(err)
		log.Warn().Err(err).Str("code", serviceError.Code).Msg("Route optimization failed")
		c.keep(generation, nil, serviceError)
		return nil, serviceError
	}

	c.keep(generation, result, nil)

	return result.clone(), nil
}

func (c *Client) isCurrent(generation uint64) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return generation == c.generation
}

// keep records the outcome of a call if it is still the latest one.
// A failure leaves the previous result in place.
func (c *Client) keep(generation uint64, result *Result, err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if generation != c.generation {
		return
	}
	c.cancel = nil

	if err != nil {
		c.lastError = err
		return
	}

	c.latest = result.clone()
	c.lastError = nil
}

func (c *Client) Latest() *Result {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.latest.clone()
}

func (c *Client) LastError() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.lastError
}

// Savings describes what the latest result saves over the original stop order
func (c *Client) Savings() string {
	return Describe(c.Latest())
}
