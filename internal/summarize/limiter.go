package summarize

import "sync"

// limiter bounds in-flight work with a cap that can change while
// acquirers are blocked, so long batches pick up config reloads.
type limiter struct {
	mu       sync.Mutex
	cond     *sync.Cond
	limit    int
	inflight int
}

func newLimiter(limit int) *limiter {
	l := &limiter{limit: limit}
	l.cond = sync.NewCond(&l.mu)
	return l
}

func (l *limiter) acquire() {
	l.mu.Lock()
	for l.inflight >= l.limit {
		l.cond.Wait()
	}
	l.inflight++
	l.mu.Unlock()
}

func (l *limiter) release() {
	l.mu.Lock()
	l.inflight--
	l.mu.Unlock()
	l.cond.Broadcast()
}

// setLimit changes the cap. Raising it wakes blocked acquirers; lowering
// it never interrupts work already in flight.
func (l *limiter) setLimit(limit int) {
	l.mu.Lock()
	l.limit = limit
	l.mu.Unlock()
	l.cond.Broadcast()
}

func (l *limiter) currentLimit() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.limit
}
