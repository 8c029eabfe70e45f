// tracker.go
package loadstate

import (
	"sync"
	"time"
)

// DefaultSuccessTTL is how long a recorded success stays visible before it
// automatically reverts to false.
const DefaultSuccessTTL = 3000 * time.Millisecond

// ExpiryPolicy controls what happens when an operation succeeds again while
// an earlier success-expiry timer is still pending.
type ExpiryPolicy int

const (
	// ExpireFireAndForget schedules an independent timer per success and
	// never cancels one. Overlapping timers race and the last one to fire
	// wins, so a rapid second success can be cleared before its own window
	// has elapsed.
	ExpireFireAndForget ExpiryPolicy = iota

	// ExpireResetOnSuccess supersedes the pending timer when a new success
	// is recorded, so the window always measures from the latest success.
	ExpireResetOnSuccess
)

// ChangeListener receives a snapshot of an operation after every mutation.
type ChangeListener func(change StateChange)

// TrackerOption configures a LoadingTracker.
type TrackerOption func(*LoadingTracker)

// WithSuccessTTL overrides the success-expiry window.
func WithSuccessTTL(d time.Duration) TrackerOption {
	return func(t *LoadingTracker) {
		t.ttl = d
	}
}

// WithExpiryPolicy selects the success-expiry timer behavior.
func WithExpiryPolicy(p ExpiryPolicy) TrackerOption {
	return func(t *LoadingTracker) {
		t.policy = p
	}
}

// WithChangeListener registers a callback invoked, outside the tracker's
// lock, after every mutation.
func WithChangeListener(fn ChangeListener) TrackerOption {
	return func(t *LoadingTracker) {
		t.onChange = fn
	}
}

// LoadingTracker tracks independently-named asynchronous operations. Each
// name carries three facets: loading (in flight), error (last failure) and
// success (visible for the TTL window after completion, then auto-reverts).
//
// The tracker never deletes a name on its own: callers that mint unbounded
// distinct names must call ClearState or ClearAllStates to release them, and
// callers must pair SetLoading(name, false) with SetError/SetSuccess
// themselves since completion of an operation is not inferred.
type LoadingTracker struct {
	mu      sync.RWMutex
	loading map[string]struct{}
	errors  map[string]error
	success map[string]bool

	// expirySeq invalidates superseded timers under ExpireResetOnSuccess.
	expirySeq map[string]uint64

	ttl      time.Duration
	policy   ExpiryPolicy
	onChange ChangeListener
}

// NewLoadingTracker creates an empty tracker.
func NewLoadingTracker(opts ...TrackerOption) *LoadingTracker {
	t := &LoadingTracker{
		loading:   make(map[string]struct{}),
		errors:    make(map[string]error),
		success:   make(map[string]bool),
		expirySeq: make(map[string]uint64),
		ttl:       DefaultSuccessTTL,
		policy:    ExpireFireAndForget,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetLoading marks the named operation as in flight or not. Starting an
// operation clears its previous error and success; a pending success-expiry
// timer is left running. Stopping only removes the loading membership.
func (t *LoadingTracker) SetLoading(name string, loading bool) {
	t.mu.Lock()
	if loading {
		t.loading[name] = struct{}{}
		t.errors[name] = nil
		t.success[name] = false
	} else {
		delete(t.loading, name)
	}
	change := t.snapshotLocked(name)
	t.mu.Unlock()

	t.notify(change)
}

// SetError records err against the named operation, or clears the slot when
// err is nil. A non-nil error clears the success flag immediately. The
// loading membership is untouched.
func (t *LoadingTracker) SetError(name string, err error) {
	t.mu.Lock()
	t.errors[name] = err
	if err != nil {
		t.success[name] = false
	}
	change := t.snapshotLocked(name)
	t.mu.Unlock()

	t.notify(change)
}

// SetSuccess records the success flag for the named operation. Recording
// true clears the error immediately and schedules a timer that reverts the
// flag after the TTL window; see ExpiryPolicy for how overlapping timers
// behave. The loading membership is untouched.
func (t *LoadingTracker) SetSuccess(name string, success bool) {
	t.mu.Lock()
	t.success[name] = success
	if success {
		t.errors[name] = nil
		t.scheduleExpiryLocked(name)
	}
	change := t.snapshotLocked(name)
	t.mu.Unlock()

	t.notify(change)
}

// ClearState resets the named operation to idle: no loading membership, no
// error, no success. Pending success-expiry timers are not cancelled.
func (t *LoadingTracker) ClearState(name string) {
	t.mu.Lock()
	delete(t.loading, name)
	t.errors[name] = nil
	t.success[name] = false
	change := t.snapshotLocked(name)
	t.mu.Unlock()

	t.notify(change)
}

// ClearAllStates resets every tracked operation, equivalent to discarding
// and recreating the tracker. Expiry sequence numbers are kept: they must
// stay monotone for the tracker's lifetime so a timer armed before the
// clear can never expire a success recorded after it.
func (t *LoadingTracker) ClearAllStates() {
	t.mu.Lock()
	t.loading = make(map[string]struct{})
	t.errors = make(map[string]error)
	t.success = make(map[string]bool)
	t.mu.Unlock()
}

// IsLoading reports whether any operation is currently in flight.
func (t *LoadingTracker) IsLoading() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.loading) > 0
}

// IsOperationLoading reports whether the named operation is in flight.
func (t *LoadingTracker) IsOperationLoading(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.loading[name]
	return ok
}

// HasError reports whether the named operation has a recorded error.
func (t *LoadingTracker) HasError(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.errors[name] != nil
}

// GetError returns the recorded error for the named operation, or nil.
func (t *LoadingTracker) GetError(name string) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.errors[name]
}

// HasSuccess reports whether the named operation is inside its success
// window.
func (t *LoadingTracker) HasSuccess(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.success[name]
}

// Status returns a snapshot of the named operation's three facets.
func (t *LoadingTracker) Status(name string) StateChange {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked(name)
}

// Names returns every name currently holding a facet entry, in no
// particular order.
func (t *LoadingTracker) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	seen := make(map[string]struct{})
	for name := range t.loading {
		seen[name] = struct{}{}
	}
	for name := range t.errors {
		seen[name] = struct{}{}
	}
	for name := range t.success {
		seen[name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	return names
}

// scheduleExpiryLocked arms the success-expiry timer for name. Callers must
// hold t.mu.
func (t *LoadingTracker) scheduleExpiryLocked(name string) {
	var seq uint64
	if t.policy == ExpireResetOnSuccess {
		t.expirySeq[name]++
		seq = t.expirySeq[name]
	}
	time.AfterFunc(t.ttl, func() {
		t.expireSuccess(name, seq)
	})
}

// expireSuccess is the timer callback reverting a success flag. seq is zero
// under ExpireFireAndForget, where every timer fires unconditionally.
func (t *LoadingTracker) expireSuccess(name string, seq uint64) {
	t.mu.Lock()
	if seq != 0 && seq != t.expirySeq[name] {
		t.mu.Unlock()
		return
	}
	if !t.success[name] {
		t.mu.Unlock()
		return
	}
	t.success[name] = false
	change := t.snapshotLocked(name)
	t.mu.Unlock()

	t.notify(change)
}

// snapshotLocked builds a StateChange for name. Callers must hold t.mu.
func (t *LoadingTracker) snapshotLocked(name string) StateChange {
	_, loading := t.loading[name]
	return StateChange{
		Name:    name,
		Loading: loading,
		Success: t.success[name],
		Err:     t.errors[name],
		At:      time.Now().UTC(),
	}
}

func (t *LoadingTracker) notify(change StateChange) {
	if t.onChange != nil {
		t.onChange(change)
	}
}
