package tr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/adapter"
	"main/internal/adapter/enum"
	"main/pkg/exception"
)

func TestSingleFlightPerChannel(t *testing.T) {
	c := NewCorrelator()

	first, err := c.Begin(enum.TRChannelPrice)
	require.NoError(t, err)
	require.NotNil(t, first)

	_, err = c.Begin(enum.TRChannelPrice)
	assert.ErrorIs(t, err, exception.ErrTRChannelBusy)

	// the balance channel is independent
	_, err = c.Begin(enum.TRChannelBalance)
	assert.NoError(t, err)
}

func TestResolveFreesChannel(t *testing.T) {
	c := NewCorrelator()

	p, err := c.Begin(enum.TRChannelPrice)
	require.NoError(t, err)

	delivered := c.Resolve(enum.TRChannelPrice, adapter.TRResponseEvent{
		Channel: enum.TRChannelPrice,
		Price:   adapter.PriceQuote{Code: "005930", Price: 15000},
	})
	require.True(t, delivered)

	resp, err := p.Await(t.Context())
	require.NoError(t, err)
	assert.Equal(t, adapter.Price(15000), resp.Price.Price)

	_, err = c.Begin(enum.TRChannelPrice)
	assert.NoError(t, err, "channel must be idle again after resolution")
}

func TestResolveWithoutOutstanding(t *testing.T) {
	c := NewCorrelator()
	delivered := c.Resolve(enum.TRChannelPrice, adapter.TRResponseEvent{})
	assert.False(t, delivered)
}

func TestAwaitFailedResponse(t *testing.T) {
	c := NewCorrelator()

	p, err := c.Begin(enum.TRChannelPrice)
	require.NoError(t, err)
	c.Resolve(enum.TRChannelPrice, adapter.TRResponseEvent{Failed: true})

	_, err = p.Await(t.Context())
	assert.ErrorIs(t, err, exception.ErrTRResponseFailed)
}

func TestAwaitDeliversAfterResolve(t *testing.T) {
	c := NewCorrelator()

	p, err := c.Begin(enum.TRChannelBalance)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := p.Await(t.Context())
		done <- err
	}()

	c.Resolve(enum.TRChannelBalance, adapter.TRResponseEvent{})
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("await did not return")
	}
	assert.False(t, c.Busy(enum.TRChannelBalance))
}

func TestBeginInvalidChannel(t *testing.T) {
	c := NewCorrelator()
	_, err := c.Begin(0)
	assert.ErrorIs(t, err, exception.ErrTRInvalidChannel)
}
