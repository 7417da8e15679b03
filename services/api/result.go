package api

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Source tells where a Result's data came from.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// Resource names used by FallbackPolicy.
const (
	ResourceGarages   = "garages"
	ResourceWashing   = "washing"
	ResourceServices  = "services"
	ResourceVehicles  = "vehicles"
	ResourceAddresses = "addresses"
	ResourceCatalog   = "catalog"
	ResourceCities    = "cities"
	ResourceLanding   = "landing"
	ResourceBookings  = "bookings"
	ResourceOTP       = "otp"
)

// mustSucceed resources are never substituted, whatever the configuration says.
var mustSucceed = map[string]bool{
	ResourceBookings: true,
	ResourceOTP:      true,
}

// Result carries data plus its provenance. Err is set whenever the remote call failed,
// including when fallback data was substituted.
type Result[T any] struct {
	Data   T      `json:"data"`
	Source Source `json:"source"`
	Err    error  `json:"-"`
}

// Degraded reports whether the data is canned rather than live.
func (r Result[T]) Degraded() bool {
	return r.Source == SourceFallback
}

// Failed reports whether there is no usable data.
func (r Result[T]) Failed() bool {
	return r.Err != nil && r.Source != SourceFallback
}

// FallbackPolicy decides which resources may be served from canned data.
type FallbackPolicy struct {
	allowed map[string]bool
}

// NewFallbackPolicy allows fallback for the named resources.
func NewFallbackPolicy(resources []string) FallbackPolicy {
	p := FallbackPolicy{allowed: make(map[string]bool, len(resources))}
	for _, r := range resources {
		if !mustSucceed[r] {
			p.allowed[r] = true
		}
	}
	return p
}

// Allows reports whether resource may degrade to fallback data.
func (p FallbackPolicy) Allows(resource string) bool {
	return p.allowed[resource]
}

// Fetch runs remote and, if it fails and the policy allows it, substitutes fallback().
// Cancelled requests never degrade.
func Fetch[T any](
	ctx context.Context,
	policy FallbackPolicy,
	logger *zap.Logger,
	resource string,
	remote func(context.Context) (T, error),
	fallback func() T,
) Result[T] {
	data, err := remote(ctx)
	if err == nil {
		return Result[T]{Data: data, Source: SourceRemote}
	}

	if fallback == nil || !policy.Allows(resource) || errors.Is(err, context.Canceled) {
		var zero T
		return Result[T]{Data: zero, Source: SourceRemote, Err: err}
	}

	if logger != nil {
		logger.Warn("upstream unavailable, serving fallback data",
			zap.String("resource", resource),
			zap.Error(err),
		)
	}
	return Result[T]{Data: fallback(), Source: SourceFallback, Err: err}
}
