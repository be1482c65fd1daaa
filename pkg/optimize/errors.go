package optimize

import (
	"errors"
	"fmt"
)

const (
	CodeNotConfigured    = "API_NOT_CONFIGURED"
	CodeTooManyWaypoints = "TOO_MANY_WAYPOINTS"
)

var ErrSuperseded = errors.New("optimization superseded by a newer request")

type ValidationError struct {
	Count int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("optimization needs between %d and %d waypoints, got %d", MinWaypoints, MaxWaypoints, e.Count)
}

// ServiceError carries the optimizer error code. Error() is the message shown to the user.
type ServiceError struct {
	Code   string
	Detail string
	Err    error
}

func (e *ServiceError) Error() string {
	switch e.Code {
	case CodeNotConfigured:
		return "route optimization is not configured"
	case CodeTooManyWaypoints:
		return "too many waypoints for optimization"
	default:
		return "route optimization failed"
	}
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func asServiceError(err error) *ServiceError {
	var serviceError *ServiceError
	if errors.As(err, &serviceError) {
		return serviceError
	}

	return &ServiceError{Err: err}
}
