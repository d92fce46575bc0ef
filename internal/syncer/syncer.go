// Package syncer reconciles the locally-held optimistic cart state against
// the backend's authoritative state on a timer, on reconnect and on demand.
package syncer

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/localstore"
	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/offline"
	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/store"
	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/transport"
)

// DefaultInterval is the periodic reconciliation cadence while online.
const DefaultInterval = 30 * time.Second

type Syncer struct {
	store    *store.Store
	api      transport.API
	queue    *offline.Queue
	backup   *localstore.Backup
	interval time.Duration
	strategy MergeStrategy

	mu     sync.Mutex
	online bool
	kick   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Syncer)

func WithInterval(d time.Duration) Option {
	return func(s *Syncer) { s.interval = d }
}

func WithStrategy(strategy MergeStrategy) Option {
	return func(s *Syncer) { s.strategy = strategy }
}

// New builds a stopped syncer. queue and backup may be nil.
func New(st *store.Store, api transport.API, queue *offline.Queue, backup *localstore.Backup, opts ...Option) *Syncer {
	s := &Syncer{
		store:    st,
		api:      api,
		queue:    queue,
		backup:   backup,
		interval: DefaultInterval,
		strategy: StrategyMerge,
		online:   true,
		kick:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the background reconciliation loop. The lifecycle is
// explicit: no work happens before Start, none after Stop.
func (s *Syncer) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx)
}

// Stop halts the loop and waits for it to exit.
func (s *Syncer) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Syncer) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if s.Online() {
				s.syncOnce(ctx)
			}
		case <-s.kick:
			s.replayOffline(ctx)
			s.syncOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// SetOnline records a connectivity transition. Coming back online triggers
// an immediate offline-queue replay followed by a reconciliation pass.
func (s *Syncer) SetOnline(online bool) {
	s.mu.Lock()
	wasOnline := s.online
	s.online = online
	s.mu.Unlock()

	if online && !wasOnline {
		select {
		case s.kick <- struct{}{}:
		default:
		}
	}
}

func (s *Syncer) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// SyncNow runs one reconciliation pass on the caller's goroutine.
func (s *Syncer) SyncNow(ctx context.Context) {
	s.syncOnce(ctx)
}

// syncOnce merges server state into the store unless an optimistic update is
// still in flight; adopting server state mid-operation would clobber work
// the user has not had confirmed yet.
func (s *Syncer) syncOnce(ctx context.Context) {
	if s.store.HasPending() {
		log.Printf("sync skipped: optimistic updates pending")
		return
	}

	s.store.SetSyncing(true)
	defer s.store.SetSyncing(false)

	serverCart, err := s.api.FetchCart(ctx)
	if err != nil {
		log.Printf("sync fetch failed: %v", err)
		return
	}

	local := s.store.State().Items
	resolved, conflicts := Merge(local, serverCart.Items, s.strategy)
	for _, c := range conflicts {
		log.Printf("cart sync conflict on item %s: %s", c.ItemID, c.Reason)
	}

	s.store.Adopt(resolved)
	if s.backup != nil {
		if err := s.backup.Save(resolved); err != nil {
			log.Printf("failed to save cart backup after sync: %v", err)
		}
	}
}

// replayOffline drains the offline operation queue after a reconnect.
func (s *Syncer) replayOffline(ctx context.Context) {
	if s.queue == nil {
		return
	}
	ops, err := s.queue.List()
	if err != nil || len(ops) == 0 {
		return
	}
	summary := s.queue.ProcessAll(ctx, s.api)
	log.Printf("offline replay: %d succeeded, %d failed", summary.Successful, summary.Failed)
	for _, msg := range summary.Errors {
		log.Printf("offline replay: %s", msg)
	}
}
