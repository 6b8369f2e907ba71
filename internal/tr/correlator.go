package tr

import (
	"context"
	"sync"

	"main/internal/adapter"
	"main/internal/adapter/enum"
	"main/pkg/exception"
)

// Correlator bridges the brokerage's asynchronous TR callbacks into
// synchronous-looking calls. Each channel carries at most one outstanding
// request; a second Begin on a busy channel fails instead of queueing, which
// bounds brokerage-side TR usage by construction.
type Correlator struct {
	mu      sync.Mutex
	pending map[enum.TRChannel]*Pending
}

// Pending is the handle for one outstanding request. The goroutine that began
// the request awaits it; the router resolves it when the matching callback
// arrives.
type Pending struct {
	channel enum.TRChannel
	ch      chan adapter.TRResponseEvent
}

// NewCorrelator creates a correlator with all channels idle.
func NewCorrelator() *Correlator {
	return &Correlator{pending: make(map[enum.TRChannel]*Pending)}
}

// Begin claims a channel for one request. The caller must send the actual
// brokerage request itself after a successful claim.
func (c *Correlator) Begin(channel enum.TRChannel) (*Pending, error) {
	if !channel.IsAvailable() {
		return nil, exception.ErrTRInvalidChannel
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.pending[channel]; busy {
		return nil, exception.ErrTRChannelBusy
	}

	p := &Pending{
		channel: channel,
		ch:      make(chan adapter.TRResponseEvent, 1),
	}
	c.pending[channel] = p
	return p, nil
}

// Resolve matches a TR response to the channel's outstanding request and
// frees the channel. Returns false when nothing was outstanding.
func (c *Correlator) Resolve(channel enum.TRChannel, resp adapter.TRResponseEvent) bool {
	c.mu.Lock()
	p, ok := c.pending[channel]
	if ok {
		delete(c.pending, channel)
	}
	c.mu.Unlock()
	if !ok {
		return false
	}

	p.ch <- resp
	return true
}

// Busy reports whether a channel has an outstanding request.
func (c *Correlator) Busy(channel enum.TRChannel) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.pending[channel]
	return busy
}

// Await blocks the calling flow until the matching response arrives or the
// context is canceled. Cancellation does not free the channel; only the
// response (or a session restart) does, since the brokerage request itself
// cannot be revoked.
func (p *Pending) Await(ctx context.Context) (adapter.TRResponseEvent, error) {
	select {
	case <-ctx.Done():
		return adapter.TRResponseEvent{}, exception.ErrTRAwaitCanceled
	case resp := <-p.ch:
		if resp.Failed {
			return resp, exception.ErrTRResponseFailed
		}
		return resp, nil
	}
}
