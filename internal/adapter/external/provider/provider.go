// Package provider contains the geolocation source adapters. Each
// adapter translates one upstream wire format into the common GeoResult
// model; the aggregation engine treats them uniformly through the
// Provider interface.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/IIXINGCHEN/ip-api-production/internal/entity"
)

// DefaultTimeout bounds every outbound lookup to an external service.
const DefaultTimeout = 5 * time.Second

// Provider is the closed contract every geolocation source implements.
// GetGeoInfo returning (nil, nil) means "no opinion, defer to other
// providers" and is distinct from an error, which the aggregation
// engine catches and isolates.
type Provider interface {
	Name() string
	// Priority is the static merge weight of this source. Higher wins,
	// scaled by the per-result validation score.
	Priority() int
	IsConfigured() bool
	// GetIPInfo performs a lookup and fails hard with a typed *Error
	// when the source cannot answer.
	GetIPInfo(ctx context.Context, ip netip.Addr, rc *entity.RequestContext) (*entity.GeoResult, error)
	// GetGeoInfo is the merge-facing lookup: nil result means no opinion.
	GetGeoInfo(ctx context.Context, ip netip.Addr, rc *entity.RequestContext) (*entity.GeoResult, error)
}

// ErrorKind classifies hard provider failures.
type ErrorKind string

const (
	KindTimeout ErrorKind = "timeout"
	KindAuth    ErrorKind = "auth"
	KindNetwork ErrorKind = "network"
	KindParse   ErrorKind = "parse"
)

// Error is a typed provider failure. Adapters never return silent wrong
// data; every HTTP or decode failure maps to one of these.
type Error struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err as a typed provider failure.
func NewError(provider string, kind ErrorKind, err error) *Error {
	return &Error{Provider: provider, Kind: kind, Err: err}
}

// classifyTransport maps transport-level errors onto timeout or network
// kinds. Context deadline expiry counts as a timeout.
func classifyTransport(provider string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(provider, KindTimeout, err)
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return NewError(provider, KindTimeout, err)
	}
	return NewError(provider, KindNetwork, err)
}
