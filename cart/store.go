package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"gomarketplace/store"
)

// DefaultKey is the key the cart snapshot is persisted under.
const DefaultKey = "@GoMarketplace:products"

var (
	ErrNoBackend = errors.New("cart: no backing store")
	ErrClosed    = errors.New("cart: store used after Close")
)

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithLogger(l *logrus.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l.WithField("component", "cart")
		}
	}
}

// WithRetry sets how many times a failed write is attempted and the pause
// between attempts.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(s *Store) {
		s.attempts = attempts
		s.delay = delay
	}
}

// Store owns the cart lines. Mutations apply to memory immediately and are
// then written to the backing store in order, without the caller waiting.
type Store struct {
	kv       store.Store
	key      string
	log      *logrus.Entry
	attempts int
	delay    time.Duration

	mu     sync.RWMutex
	lines  []Line
	loaded bool
	closed bool

	// changes made before the persisted cart was loaded, replayed onto it
	pending []func([]Line) []Line

	// seq numbers every change under mu; delivered trails it so that
	// snapshots reach subscribers in the order the changes were made.
	seq        uint64
	delivered  uint64
	notifyMu   sync.Mutex
	notifyCond *sync.Cond

	subMu    sync.Mutex
	subs     map[int]func([]Line)
	nextSub  int

	persist *persister
	cancel  context.CancelFunc
	stopped chan struct{}

	startOnce sync.Once
	hydrated  chan struct{}
}

func New(kv store.Store, opts ...Option) (*Store, error) {
	if kv == nil {
		return nil, ErrNoBackend
	}

	s := &Store{
		kv:       kv,
		key:      DefaultKey,
		log:      logrus.WithField("component", "cart"),
		attempts: 3,
		delay:    200 * time.Millisecond,
		lines:    []Line{},
		subs:     make(map[int]func([]Line)),
		stopped:  make(chan struct{}),
		hydrated: make(chan struct{}),
	}
	s.notifyCond = sync.NewCond(&s.notifyMu)
	for _, opt := range opts {
		opt(s)
	}

	s.persist = newPersister(kv, s.key, s.attempts, s.delay, s.log)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() {
		defer close(s.stopped)
		s.persist.run(ctx)
	}()

	return s, nil
}

// Start loads the persisted cart in the background. Only the first call
// has any effect.
func (s *Store) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		go s.hydrate(ctx)
	})
}

// Hydrated is closed once the load started by Start has finished, whether
// or not anything was loaded.
func (s *Store) Hydrated() <-chan struct{} {
	return s.hydrated
}

// WaitHydrated calls Start and blocks until hydration finished.
func (s *Store) WaitHydrated(ctx context.Context) error {
	s.Start(ctx)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.hydrated:
		return nil
	}
}

func (s *Store) hydrate(ctx context.Context) {
	defer close(s.hydrated)

	lines, ok := s.load(ctx)

	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.loaded = true
	if !ok || s.closed {
		s.mu.Unlock()
		return
	}

	for _, f := range pending {
		lines = f(lines)
	}
	s.lines = lines
	if len(pending) > 0 {
		s.log.Infof("replayed %d changes made while loading", len(pending))
		s.save("hydrate", "", lines)
	}
	s.seq++
	seq := s.seq
	snapshot := clone(lines)
	s.mu.Unlock()

	s.log.Debugf("loaded %d lines", len(lines))
	s.deliver(seq, snapshot)
}

// load reads and decodes the persisted cart. ok is false when there is
// nothing usable to load.
func (s *Store) load(ctx context.Context) (lines []Line, ok bool) {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, store.ErrNotFound) {
		s.log.Debug("no persisted cart, starting empty")
		return nil, false
	}
	if err != nil {
		s.log.Warnf("reading persisted cart: %v", err)
		return nil, false
	}

	lines, err = Decode(data)
	if err != nil {
		s.log.Warnf("ignoring persisted cart: %v", err)
		return nil, false
	}

	return lines, true
}

// Products returns a copy of the current lines in insertion order.
func (s *Store) Products() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return clone(s.lines)
}

func (s *Store) Totals() Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Sum(s.lines)
}

// AddToCart appends p with quantity 1, or increments its line when p.ID is
// already in the cart.
func (s *Store) AddToCart(p Product) {
	s.mutate("add", p.ID, func(lines []Line) []Line {
		return add(lines, p)
	})
}

func (s *Store) Increment(id string) {
	s.mutate("increment", id, func(lines []Line) []Line {
		return increment(lines, id)
	})
}

// Decrement lowers the line for id by one and removes it when it reaches
// zero.
func (s *Store) Decrement(id string) {
	s.mutate("decrement", id, func(lines []Line) []Line {
		return decrement(lines, id)
	})
}

func (s *Store) mutate(op, id string, f func([]Line) []Line) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		panic(ErrClosed)
	}

	next := f(s.lines)
	s.lines = next
	if !s.loaded {
		s.pending = append(s.pending, f)
	}

	// the snapshot written is the one just computed, never the previous one
	s.save(op, id, next)

	s.seq++
	seq := s.seq
	snapshot := clone(next)
	s.mu.Unlock()

	s.deliver(seq, snapshot)
}

// save queues lines for writing. Callers hold mu.
func (s *Store) save(op, id string, lines []Line) {
	data, err := Encode(lines)
	if err != nil {
		s.log.Errorf("%s %s: encoding cart: %v", op, id, err)
		return
	}

	ev := s.persist.enqueue(data)
	s.log.WithField("event", ev).Debugf("%s %s: %d lines", op, id, len(lines))
}

// Subscribe registers fn to receive a snapshot after every change. fn runs
// on the mutating goroutine and must not mutate the store itself.
func (s *Store) Subscribe(fn func([]Line)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// deliver waits for every earlier change to be delivered, then notifies.
func (s *Store) deliver(seq uint64, snapshot []Line) {
	s.notifyMu.Lock()
	for s.delivered != seq-1 {
		s.notifyCond.Wait()
	}
	s.notifyMu.Unlock()

	defer func() {
		s.notifyMu.Lock()
		s.delivered = seq
		s.notifyCond.Broadcast()
		s.notifyMu.Unlock()
	}()

	s.notify(snapshot)
}

func (s *Store) notify(snapshot []Line) {
	s.subMu.Lock()
	fns := make([]func([]Line), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(clone(snapshot))
	}
}

// Flush waits for every queued write and returns the latest write failure
// since the previous Flush.
func (s *Store) Flush(ctx context.Context) error {
	return s.persist.flush(ctx)
}

// Close flushes pending writes and stops the persister. The backing store
// is left open. Mutating a closed Store panics.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.persist.flush(ctx)
	s.cancel()
	<-s.stopped

	return err
}
