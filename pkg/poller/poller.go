package poller

import (
	"context"
	"time"
)

// StatusSource fetches the current state of a todo. *Client satisfies it.
type StatusSource interface {
	GetTodo(ctx context.Context, id uint) (*Todo, error)
}

// Poller watches todos whose enhancement has not yet resolved. It runs on a
// single goroutine: each watched todo is checked independently on its own
// schedule, the interval growing multiplicatively up to a cap, and the loop
// sleeps without timers whenever nothing is in flight.
type Poller struct {
	source StatusSource

	initial time.Duration
	factor  float64
	max     time.Duration

	onTerminal func(Todo)
	onError    func(id uint, err error)

	watchBuffer int
	add         chan uint
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval sets the initial polling interval.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		p.initial = d
	}
}

// WithBackoff sets the interval growth factor and its cap. A factor of 1
// keeps the cadence fixed.
func WithBackoff(factor float64, max time.Duration) Option {
	return func(p *Poller) {
		p.factor = factor
		p.max = max
	}
}

// WithOnTerminal sets the callback invoked once per todo when its
// enhancement reaches done or failed.
func WithOnTerminal(fn func(Todo)) Option {
	return func(p *Poller) {
		p.onTerminal = fn
	}
}

// WithOnError sets the callback for failed status checks. Errors do not stop
// the watch; the todo is retried on its next tick.
func WithOnError(fn func(id uint, err error)) Option {
	return func(p *Poller) {
		p.onError = fn
	}
}

// WithWatchBuffer sets how many Watch registrations can queue before Run
// drains them. Size it to the number of todos watched before Run starts.
func WithWatchBuffer(n int) Option {
	return func(p *Poller) {
		if n > 0 {
			p.watchBuffer = n
		}
	}
}

// New creates a Poller reading from source.
func New(source StatusSource, opts ...Option) *Poller {
	p := &Poller{
		source:      source,
		initial:     2 * time.Second,
		factor:      1.5,
		max:         30 * time.Second,
		watchBuffer: 16,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.factor < 1 {
		p.factor = 1
	}
	if p.max < p.initial {
		p.max = p.initial
	}
	p.add = make(chan uint, p.watchBuffer)
	return p
}

// Watch registers a todo id for polling; watching an id twice resets its
// schedule. While Run is not draining, at most the watch buffer (default 16,
// WithWatchBuffer) can queue before Watch blocks.
func (p *Poller) Watch(id uint) {
	p.add <- id
}

type watchState struct {
	interval time.Duration
	next     time.Time
}

// Run polls until ctx is cancelled. It blocks and is meant to be the caller's
// loop; cancellation is the only way to stop it.
func (p *Poller) Run(ctx context.Context) error {
	watches := make(map[uint]*watchState)

	for {
		if len(watches) == 0 {
			// Nothing outstanding: no timers, just wait for work.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case id := <-p.add:
				watches[id] = &watchState{interval: p.initial, next: time.Now()}
			}
			continue
		}

		timer := time.NewTimer(time.Until(p.earliest(watches)))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case id := <-p.add:
			timer.Stop()
			watches[id] = &watchState{interval: p.initial, next: time.Now()}
		case <-timer.C:
			p.checkDue(ctx, watches)
		}
	}
}

func (p *Poller) earliest(watches map[uint]*watchState) time.Time {
	var earliest time.Time
	for _, w := range watches {
		if earliest.IsZero() || w.next.Before(earliest) {
			earliest = w.next
		}
	}
	return earliest
}

func (p *Poller) checkDue(ctx context.Context, watches map[uint]*watchState) {
	now := time.Now()
	for id, w := range watches {
		if w.next.After(now) {
			continue
		}

		todo, err := p.source.GetTodo(ctx, id)
		if err != nil {
			if p.onError != nil {
				p.onError(id, err)
			}
			w.reschedule(p, now)
			continue
		}

		if todo.Terminal() {
			delete(watches, id)
			if p.onTerminal != nil {
				p.onTerminal(*todo)
			}
			continue
		}
		w.reschedule(p, now)
	}
}

func (w *watchState) reschedule(p *Poller, now time.Time) {
	w.next = now.Add(w.interval)
	w.interval = time.Duration(float64(w.interval) * p.factor)
	if w.interval > p.max {
		w.interval = p.max
	}
}
