package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/adapter"
	"main/internal/adapter/enum"
	"main/pkg/exception"
)

func buyRequest(code adapter.Code, qty adapter.Quantity) adapter.OrderRequest {
	return adapter.OrderRequest{
		Account:  "8012345-01",
		Code:     code,
		Side:     enum.OrderSideBuy,
		Type:     enum.OrderTypeMarket,
		Quantity: qty,
	}
}

func TestSubmitAndAck(t *testing.T) {
	tracker := NewTracker()

	o := tracker.Submit(buyRequest("005930", 20), 15000, 300000)
	require.Equal(t, StateSent, o.State)

	require.NoError(t, tracker.MarkAcked(o.ID))
	open, ok := tracker.Open("005930")
	require.True(t, ok)
	assert.Equal(t, StateAcked, open.State)
}

func TestRejectClosesOrder(t *testing.T) {
	tracker := NewTracker()

	o := tracker.Submit(buyRequest("005930", 20), 15000, 300000)
	require.NoError(t, tracker.MarkRejected(o.ID))

	_, ok := tracker.Open("005930")
	assert.False(t, ok)
	assert.ErrorIs(t, tracker.MarkAcked(o.ID), exception.ErrOrderInvalidTransition)
}

func TestMarkFilledMatchesByCode(t *testing.T) {
	tracker := NewTracker()

	o := tracker.Submit(buyRequest("005930", 20), 15000, 300000)
	require.NoError(t, tracker.MarkAcked(o.ID))

	filled, ok := tracker.MarkFilled("005930")
	require.True(t, ok)
	assert.Equal(t, o.ID, filled.ID)
	assert.Equal(t, StateFilled, filled.State)

	_, ok = tracker.Open("005930")
	assert.False(t, ok)
}

func TestMarkFilledExternalFill(t *testing.T) {
	tracker := NewTracker()
	_, ok := tracker.MarkFilled("000660")
	assert.False(t, ok)
}

func TestUnknownOrder(t *testing.T) {
	tracker := NewTracker()
	assert.ErrorIs(t, tracker.MarkAcked(99), exception.ErrOrderUnknown)
}
