// simple.go
package loadstate

import (
	"sync"
	"time"
)

// SimpleOption configures a SimpleState.
type SimpleOption func(*SimpleState)

// SimpleTTL overrides the success-expiry window.
func SimpleTTL(d time.Duration) SimpleOption {
	return func(s *SimpleState) {
		s.ttl = d
	}
}

// SimplePolicy selects the success-expiry timer behavior.
func SimplePolicy(p ExpiryPolicy) SimpleOption {
	return func(s *SimpleState) {
		s.policy = p
	}
}

// SimpleState is the single-operation variant of LoadingTracker: the same
// three facets without the name dimension, for callers juggling exactly one
// async operation at a time.
type SimpleState struct {
	mu      sync.Mutex
	loading bool
	err     error
	success bool
	seq     uint64

	ttl    time.Duration
	policy ExpiryPolicy
}

// NewSimpleState creates an idle SimpleState.
func NewSimpleState(opts ...SimpleOption) *SimpleState {
	s := &SimpleState{
		ttl:    DefaultSuccessTTL,
		policy: ExpireFireAndForget,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetLoading marks the operation as in flight or not. Starting clears the
// previous error and success.
func (s *SimpleState) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
	if loading {
		s.err = nil
		s.success = false
	}
}

// SetError records err and stops loading. A non-nil err clears the success
// flag.
func (s *SimpleState) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.err = err
	if err != nil {
		s.success = false
	}
}

// Succeed stops loading, clears the error, raises the success flag and
// schedules its auto-revert after the TTL window.
func (s *SimpleState) Succeed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.err = nil
	s.success = true

	var seq uint64
	if s.policy == ExpireResetOnSuccess {
		s.seq++
		seq = s.seq
	}
	time.AfterFunc(s.ttl, func() {
		s.expire(seq)
	})
}

// Reset clears all three facets immediately. Pending expiry timers keep
// running; under ExpireFireAndForget a timer that fires later finds the flag
// already lowered and changes nothing.
func (s *SimpleState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.err = nil
	s.success = false
}

// IsLoading reports whether the operation is in flight.
func (s *SimpleState) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the recorded error, or nil.
func (s *SimpleState) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// HasSuccess reports whether the operation is inside its success window.
func (s *SimpleState) HasSuccess() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.success
}

func (s *SimpleState) expire(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != 0 && seq != s.seq {
		return
	}
	s.success = false
}
