package entity

import (
	"net/http"
)

// RequestContext carries the originating request's metadata into the
// provider adapters and threat collectors. All accessors are nil-safe so
// callers without an HTTP request (CLI lookups, tests) can pass nil.
type RequestContext struct {
	Headers    http.Header `json:"-"`
	Path       string      `json:"path,omitempty"`
	RemoteAddr string      `json:"remote_addr,omitempty"`
}

// RequestContextFrom extracts the metadata the engines care about from
// an incoming HTTP request.
func RequestContextFrom(r *http.Request) *RequestContext {
	if r == nil {
		return nil
	}
	return &RequestContext{
		Headers:    r.Header,
		Path:       r.URL.Path,
		RemoteAddr: r.RemoteAddr,
	}
}

// Header returns the first value of the named header, or "".
func (rc *RequestContext) Header(name string) string {
	if rc == nil || rc.Headers == nil {
		return ""
	}
	return rc.Headers.Get(name)
}

// HasHeader reports whether the named header is present at all,
// including present-but-empty.
func (rc *RequestContext) HasHeader(name string) bool {
	if rc == nil || rc.Headers == nil {
		return false
	}
	_, ok := rc.Headers[http.CanonicalHeaderKey(name)]
	return ok
}

// UserAgent returns the request's User-Agent, or "".
func (rc *RequestContext) UserAgent() string {
	return rc.Header("User-Agent")
}
