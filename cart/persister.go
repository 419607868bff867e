package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-collections/collections/queue"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gomarketplace/store"
)

type persistEvent struct {
	ID        uuid.UUID
	Timestamp time.Time
	Data      []byte
}

// persister writes snapshots to the backing store one at a time, in the
// order they were queued.
type persister struct {
	kv       store.Store
	key      string
	attempts int
	delay    time.Duration
	log      *logrus.Entry

	mu      sync.Mutex
	pending queue.Queue
	busy    int
	idle    chan struct{}
	lastErr error

	wake chan struct{}
}

func newPersister(kv store.Store, key string, attempts int, delay time.Duration, log *logrus.Entry) *persister {
	if attempts < 1 {
		attempts = 1
	}

	idle := make(chan struct{})
	close(idle)

	return &persister{
		kv:       kv,
		key:      key,
		attempts: attempts,
		delay:    delay,
		log:      log,
		pending:  *queue.New(),
		idle:     idle,
		wake:     make(chan struct{}, 1),
	}
}

func (p *persister) enqueue(data []byte) uuid.UUID {
	e := persistEvent{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	p.mu.Lock()
	if p.busy == 0 {
		p.idle = make(chan struct{})
	}
	p.busy++
	p.pending.Enqueue(e)
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}

	return e.ID
}

func (p *persister) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.dropPending()
			return
		case <-p.wake:
			for p.sendWork(ctx) {
			}
		}
	}
}

// sendWork writes the oldest queued snapshot. It reports false when the
// queue was empty.
func (p *persister) sendWork(ctx context.Context) bool {
	p.mu.Lock()
	if p.pending.Len() == 0 {
		p.mu.Unlock()
		return false
	}
	e := p.pending.Dequeue().(persistEvent)
	p.mu.Unlock()

	err := p.write(ctx, e)

	p.mu.Lock()
	if err != nil {
		p.lastErr = err
	}
	p.done()
	p.mu.Unlock()

	return true
}

func (p *persister) write(ctx context.Context, e persistEvent) error {
	var err error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		err = p.kv.Set(ctx, p.key, e.Data)
		if err == nil {
			p.log.WithField("event", e.ID).Debugf("persisted %d bytes", len(e.Data))
			return nil
		}

		p.log.WithField("event", e.ID).Warnf("write attempt %d/%d failed: %v", attempt, p.attempts, err)
		if attempt == p.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.delay):
		}
	}

	msg := p.logln("giving up on write %s queued at %s", e.ID, e.Timestamp.Format(time.RFC3339Nano))
	return fmt.Errorf("%s: %w", msg, err)
}

// done must be called with mu held.
func (p *persister) done() {
	p.busy--
	if p.busy == 0 {
		close(p.idle)
	}
}

func (p *persister) dropPending() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.pending.Len() > 0 {
		e := p.pending.Dequeue().(persistEvent)
		p.lastErr = errors.New(p.logln("dropped write %s: persister stopped", e.ID))
		p.done()
	}
}

// flush blocks until nothing is queued or in flight, then returns and
// clears the most recent write failure.
func (p *persister) flush(ctx context.Context) error {
	for {
		p.mu.Lock()
		if p.busy == 0 {
			err := p.lastErr
			p.lastErr = nil
			p.mu.Unlock()
			return err
		}
		idle := p.idle
		p.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-idle:
		}
	}
}

func (p *persister) logln(msg string, param ...any) string {
	s := msg
	if len(param) >= 1 {
		s = fmt.Sprintf(s, param...)
	}

	p.log.Error(s)

	return s
}
