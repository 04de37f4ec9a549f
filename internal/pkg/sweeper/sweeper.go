package sweeper

import (
	"log"
	"sync"
	"time"

	"github.com/shopbill-app/shopbill/app/repository"
)

// DefaultInterval is how often the sweep runs when not overridden
const DefaultInterval = 15 * time.Minute

// Sweeper walks subscriptions in the background: paid windows whose end date
// passed enter the grace period, and closed grace windows are shut off. The
// request path only ever reads entitlement state; this is the one place that
// ages it.
type Sweeper struct {
	repo     repository.SubscriptionRepository
	interval time.Duration
	ticker   *time.Ticker
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
	nowFunc  func() time.Time
}

// New creates a sweeper over the given subscription repository
func New(repo repository.SubscriptionRepository, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{
		repo:     repo,
		interval: interval,
		nowFunc:  time.Now,
	}
}

// WithClock overrides the time source, for tests
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.nowFunc = now
	return s
}

// Start launches the background sweep loop
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.stopCh = make(chan struct{})
	s.ticker = time.NewTicker(s.interval)
	s.running = true
	s.wg.Add(1)
	go s.worker()
	log.Printf("[Sweeper] Started (interval: %s)", s.interval)
}

// Stop halts the loop and waits for an in-flight sweep to finish
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.ticker.Stop()
	close(s.stopCh)
	s.running = false
	s.wg.Wait()
	log.Print("[Sweeper] Stopped")
}

func (s *Sweeper) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			return
		case <-s.ticker.C:
			if err := s.SweepOnce(s.nowFunc()); err != nil {
				log.Printf("[Sweeper] Sweep failed: %v", err)
			}
		}
	}
}

// SweepOnce runs a single pass at the given instant
func (s *Sweeper) SweepOnce(now time.Time) error {
	expired, err := s.repo.ListExpiring(now)
	if err != nil {
		return err
	}
	for i := range expired {
		sub := &expired[i]
		sub.EnterGracePeriod(now)
		if err := s.repo.Update(sub); err != nil {
			log.Printf("[Sweeper] Failed to open grace period for user %d: %v", sub.UserID, err)
			continue
		}
		log.Printf("[Sweeper] Subscription of user %d expired, grace until %s", sub.UserID, sub.GracePeriodEnd)
	}

	closed, err := s.repo.ListGraceEnded(now)
	if err != nil {
		return err
	}
	for i := range closed {
		sub := &closed[i]
		sub.Active = false
		sub.GracePeriodEnd = nil
		if err := s.repo.Update(sub); err != nil {
			log.Printf("[Sweeper] Failed to close grace period for user %d: %v", sub.UserID, err)
			continue
		}
		log.Printf("[Sweeper] Grace period of user %d closed", sub.UserID)
	}
	return nil
}
