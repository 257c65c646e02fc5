package tax

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/smartcart-api/internal/domain/entity"
)

// LocationResolver resolves a coordinate to a tax result (implemented by Resolver).
type LocationResolver interface {
	Resolve(ctx context.Context, latitude, longitude float64) (*entity.TaxLookupResult, error)
}

// RateTarget receives the resolved rate (implemented by cart.Session).
type RateTarget interface {
	SetTaxRate(rate decimal.Decimal) error
}

// State of the tax rate of a trip.
type State string

const (
	StateUnknown  State = "unknown"
	StatePending  State = "pending"
	StateResolved State = "resolved"
	StateFailed   State = "failed"
)

// Status what the view layer shows about the tax rate.
type Status struct {
	State      State
	Locality   string
	Rate       decimal.Decimal
	Err        error // last failure, nil unless StateFailed
	Generation uint64
}

// RateKnown reports whether Rate comes from a successful lookup.
func (s Status) RateKnown() bool { return s.State == StateResolved }

// Tracker keeps at most one resolution in flight for one cart. Every Update
// supersedes the previous one: the older request is canceled and, should it
// still complete, its result is discarded. Only the latest request writes the rate.
type Tracker struct {
	resolver LocationResolver
	target   RateTarget
	timeout  time.Duration
	log      zerolog.Logger

	base       context.Context
	baseCancel context.CancelFunc

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	status   Status
	inflight int
	idle     *sync.Cond // signaled on t.mu when inflight drops to 0
}

// NewTracker builds a tracker writing into target. timeout bounds each resolution.
func NewTracker(resolver LocationResolver, target RateTarget, timeout time.Duration, log zerolog.Logger) *Tracker {
	base, cancel := context.WithCancel(context.Background())
	t := &Tracker{
		resolver:   resolver,
		target:     target,
		timeout:    timeout,
		log:        log,
		base:       base,
		baseCancel: cancel,
		status:     Status{State: StateUnknown, Rate: decimal.Zero},
	}
	t.idle = sync.NewCond(&t.mu)
	return t
}

// Update starts resolving the coordinate and returns the request generation.
func (t *Tracker) Update(latitude, longitude float64) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}
	t.gen++
	gen := t.gen

	var ctx context.Context
	var cancel context.CancelFunc
	if t.timeout > 0 {
		ctx, cancel = context.WithTimeout(t.base, t.timeout)
	} else {
		ctx, cancel = context.WithCancel(t.base)
	}
	t.cancel = cancel
	t.status = Status{
		State:      StatePending,
		Locality:   t.status.Locality,
		Rate:       t.status.Rate,
		Generation: gen,
	}

	t.inflight++
	go t.run(ctx, cancel, gen, latitude, longitude)
	return gen
}

func (t *Tracker) run(ctx context.Context, cancel context.CancelFunc, gen uint64, latitude, longitude float64) {
	defer cancel()

	res, err := t.resolver.Resolve(ctx, latitude, longitude)

	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.done()

	if gen != t.gen || t.base.Err() != nil {
		t.log.Debug().Uint64("generation", gen).Uint64("current", t.gen).Msg("stale tax resolution discarded")
		return
	}
	t.cancel = nil

	if err != nil {
		_ = t.target.SetTaxRate(decimal.Zero)
		t.status = Status{State: StateFailed, Rate: decimal.Zero, Err: err, Generation: gen}
		t.log.Warn().Err(err).Uint64("generation", gen).Msg("tax rate unknown, using 0")
		return
	}
	if err := t.target.SetTaxRate(res.Rate); err != nil {
		_ = t.target.SetTaxRate(decimal.Zero)
		t.status = Status{State: StateFailed, Rate: decimal.Zero, Err: err, Generation: gen}
		t.log.Warn().Err(err).Msg("tax rate rejected by cart")
		return
	}
	t.status = Status{State: StateResolved, Locality: res.Locality, Rate: res.Rate, Generation: gen}
	t.log.Info().Str("locality", res.Locality).Str("rate", res.Rate.String()).Msg("tax rate applied")
}

// Status snapshot of the current tax state.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// done marks one resolution as ended. Caller holds t.mu.
func (t *Tracker) done() {
	t.inflight--
	if t.inflight == 0 {
		t.idle.Broadcast()
	}
}

// Wait blocks until no resolution is in flight. Safe to call while Update runs
// on other goroutines.
func (t *Tracker) Wait() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for t.inflight > 0 {
		t.idle.Wait()
	}
}

// Close cancels any in-flight resolution and waits for it. The rate is left as is.
func (t *Tracker) Close() {
	t.baseCancel()
	t.Wait()
}
