package async

import "time"

// ticker is the subset of *time.Ticker the interval trigger needs.
type ticker interface {
	Chan() <-chan time.Time
	Stop()
}

type timeTicker struct{ *time.Ticker }

func (t timeTicker) Chan() <-chan time.Time { return t.C }

func newTimeTicker(d time.Duration) ticker {
	return timeTicker{time.NewTicker(d)}
}

// arm replaces the interval trigger with one ticking every d. A
// non-positive d only disarms. Must run on the loop.
func (o *Orchestrator[V, T]) arm(d time.Duration) {
	if o.stopTicker != nil {
		o.stopTicker()
		o.stopTicker = nil
	}
	o.interval = d
	if d <= 0 {
		return
	}

	t := o.opts.newTicker(d)
	quit := make(chan struct{})
	go func() {
		for {
			select {
			case <-t.Chan():
				o.loop.post(func() { o.fire(false) })
			case <-quit:
				return
			}
		}
	}()
	o.stopTicker = func() {
		t.Stop()
		close(quit)
	}
	o.log.Debug("interval armed", "period", d)
}

// attach subscribes to the reconnect source. Must run on the loop.
func (o *Orchestrator[V, T]) attach() {
	if !o.opts.RefetchOnReconnect || o.opts.Reconnect == nil {
		return
	}
	o.detach = o.opts.Reconnect.OnReconnect(func() {
		o.loop.post(func() { o.fire(false) })
	})
}

// scheduleRetry arms a single retry of the failed fetch tok when the
// retry policy allows it. The retry is dropped if another fetch starts
// first. Must run on the loop.
func (o *Orchestrator[V, T]) scheduleRetry(tok *token) {
	cfg := o.opts.Config
	if !cfg.RetryOnError || o.state.Get().Retries >= cfg.Retries {
		return
	}
	o.retryTimer = time.AfterFunc(cfg.RetryTimeout, func() {
		o.loop.post(func() {
			if o.closed || o.current != tok {
				return
			}
			o.fire(true)
		})
	})
}

func (o *Orchestrator[V, T]) stopRetry() {
	if o.retryTimer != nil {
		o.retryTimer.Stop()
		o.retryTimer = nil
	}
}
