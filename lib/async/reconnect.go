package async

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/pthm/hxwrap/lib/store"
)

// ReconnectSource signals that network connectivity was regained.
type ReconnectSource interface {
	// OnReconnect registers fn for every regained-connectivity event and
	// returns a function that detaches it.
	OnReconnect(fn func()) (detach func())
}

// Signal is a ReconnectSource fired by hand, for hosts that learn about
// connectivity elsewhere (a websocket reopening, an OS notification).
type Signal struct {
	events *store.Store[uint64]
}

// NewSignal returns a Signal with no listeners.
func NewSignal() *Signal {
	return &Signal{events: store.Of[uint64](0)}
}

// OnReconnect implements ReconnectSource.
func (s *Signal) OnReconnect(fn func()) func() {
	return s.events.Subscribe(fn)
}

// Notify fires every attached listener once.
func (s *Signal) Notify() {
	s.events.Set(func(n *uint64) { *n++ })
}

// Count returns how many times Notify has fired.
func (s *Signal) Count() uint64 {
	return *s.events.Get()
}

// CheckFunc reports connectivity: nil means online.
type CheckFunc func(ctx context.Context) error

// DialCheck returns a CheckFunc that opens and closes a connection to
// address, bounded by timeout.
func DialCheck(network, address string, timeout time.Duration) CheckFunc {
	return func(ctx context.Context) error {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		var d net.Dialer
		conn, err := d.DialContext(ctx, network, address)
		if err != nil {
			return err
		}
		return conn.Close()
	}
}

// Probe is a ReconnectSource that polls a CheckFunc and fires once per
// offline-to-online transition. It starts out assuming it is online, so
// a healthy network never fires.
type Probe struct {
	check    CheckFunc
	interval time.Duration
	signal   *Signal

	mu     sync.Mutex
	online bool
}

// NewProbe returns a Probe polling check every interval once Run starts.
func NewProbe(check CheckFunc, interval time.Duration) *Probe {
	return &Probe{
		check:    check,
		interval: interval,
		signal:   NewSignal(),
		online:   true,
	}
}

// OnReconnect implements ReconnectSource.
func (p *Probe) OnReconnect(fn func()) func() {
	return p.signal.OnReconnect(fn)
}

// Online reports the result of the last check.
func (p *Probe) Online() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}

// Run polls until ctx is done.
func (p *Probe) Run(ctx context.Context) {
	if p.interval <= 0 {
		return
	}
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.poll(ctx)
		}
	}
}

// poll runs one check and reports whether it fired a reconnect.
func (p *Probe) poll(ctx context.Context) bool {
	up := p.check(ctx) == nil

	p.mu.Lock()
	regained := up && !p.online
	p.online = up
	p.mu.Unlock()

	if regained {
		p.signal.Notify()
	}
	return regained
}
