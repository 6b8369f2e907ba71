package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/adapter"
)

func TestApplyFill(t *testing.T) {
	l := New(time.Second)

	l.ApplyFill("005930", 10)
	assert.Equal(t, adapter.Quantity(10), l.HeldQuantity("005930"))

	l.ApplyFill("005930", 4)
	assert.Equal(t, adapter.Quantity(4), l.HeldQuantity("005930"))

	l.ApplyFill("005930", 0)
	assert.Equal(t, adapter.Quantity(0), l.HeldQuantity("005930"))
}

func TestReconcileEmptySnapshotKeepsHoldings(t *testing.T) {
	l := New(time.Second)
	l.ApplyFill("005930", 10)
	l.ApplyFill("000660", 3)

	applied := l.ReconcileSnapshot(nil)
	assert.False(t, applied)
	assert.Equal(t, adapter.Quantity(10), l.HeldQuantity("005930"))
	assert.Equal(t, adapter.Quantity(3), l.HeldQuantity("000660"))
}

func TestReconcileNonEmptySnapshotReplacesHoldings(t *testing.T) {
	l := New(time.Second)
	l.ApplyFill("005930", 10)
	l.ApplyFill("000660", 3)

	applied := l.ReconcileSnapshot([]adapter.BalanceEntry{
		{Code: "005930", Quantity: 7},
		{Code: "035720", Quantity: 2},
	})
	require.True(t, applied)
	assert.Equal(t, adapter.Quantity(7), l.HeldQuantity("005930"))
	assert.Equal(t, adapter.Quantity(0), l.HeldQuantity("000660"))
	assert.Equal(t, adapter.Quantity(2), l.HeldQuantity("035720"))
}

func TestReconcileKeepsAccumulatedAndPending(t *testing.T) {
	l := New(time.Second)
	l.AddAccumulated("005930", 150000)
	l.SetPending("005930", true)

	l.ReconcileSnapshot([]adapter.BalanceEntry{{Code: "005930", Quantity: 5}})
	assert.Equal(t, adapter.Amount(150000), l.AccumulatedBuyAmount("005930"))
	assert.True(t, l.Pending("005930"))
}

func TestClearAllPending(t *testing.T) {
	l := New(time.Second)
	l.SetPending("005930", true)
	l.SetPending("000660", true)

	l.ClearAllPending()
	assert.False(t, l.Pending("005930"))
	assert.False(t, l.Pending("000660"))
}

func TestSnapshotCooldown(t *testing.T) {
	l := New(time.Minute)
	now := time.Now()

	require.True(t, l.AllowSnapshotRequest(now))
	assert.False(t, l.AllowSnapshotRequest(now.Add(10*time.Second)))
	assert.True(t, l.AllowSnapshotRequest(now.Add(61*time.Second)))
}

func TestHoldingsSkipsZero(t *testing.T) {
	l := New(time.Second)
	l.ApplyFill("005930", 10)
	l.ApplyFill("000660", 3)
	l.ClearHolding("000660")

	holdings := l.Holdings()
	assert.Len(t, holdings, 1)
	assert.Equal(t, adapter.Quantity(10), holdings["005930"])
}
