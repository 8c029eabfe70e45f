// service.go
package loadstate

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const changeBuffer = 256

// Service binds a LoadingTracker to the Redis-backed surface: every state
// change is persisted by the StatusStore and fanned out by the Broadcaster.
// Changes are applied to the tracker synchronously and shipped to Redis from
// a single worker goroutine, so tracker callers never block on I/O. Snapshots
// are enqueued after the tracker's lock is released, so the persisted record
// is eventually consistent: with concurrent writers to one name it can
// briefly trail the tracker until that name's next change lands.
type Service struct {
	Tracker     *LoadingTracker
	Store       *StatusStore
	Broadcaster *Broadcaster
	Logger      *zap.Logger

	changes chan StateChange
}

func NewService(store *StatusStore, broadcaster *Broadcaster, logger *zap.Logger, opts ...TrackerOption) *Service {
	svc := &Service{
		Store:       store,
		Broadcaster: broadcaster,
		Logger:      logger,
		changes:     make(chan StateChange, changeBuffer),
	}
	opts = append(opts, WithChangeListener(svc.enqueue))
	svc.Tracker = NewLoadingTracker(opts...)
	return svc
}

// Run drains the change queue until ctx is cancelled. Call it from its own
// goroutine before mutating the tracker.
func (s *Service) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-s.changes:
			s.ship(ctx, change)
		}
	}
}

// enqueue is the tracker's change listener. If the queue is full the change
// is dropped rather than stalling the tracker caller; the next change for
// the same name overwrites the persisted record anyway.
func (s *Service) enqueue(change StateChange) {
	select {
	case s.changes <- change:
	default:
		s.Logger.Warn("Change queue full, dropping update",
			zap.String("operation", change.Name))
	}
}

func (s *Service) ship(ctx context.Context, change StateChange) {
	shipCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rec, err := s.Store.SaveChange(shipCtx, change)
	if err != nil {
		s.Logger.Warn("Failed to persist state change",
			zap.String("operation", change.Name), zap.Error(err))
		return
	}

	if err := s.Broadcaster.Publish(shipCtx, *rec); err != nil {
		s.Logger.Warn("Failed to broadcast state change",
			zap.String("operation", change.Name), zap.Error(err))
	}
}
