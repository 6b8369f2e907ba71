package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/adapter"
)

func TestClassifyPartitions(t *testing.T) {
	c := NewClassifier([]string{"momentum-breakout"}, []string{"trend-exit"})
	c.Classify([]adapter.Condition{
		{Index: 0, Name: "momentum-breakout"},
		{Index: 3, Name: "trend-exit"},
		{Index: 7, Name: "watch-only"},
	})

	assert.True(t, c.IsBuyTrigger(0))
	assert.False(t, c.IsBuyTrigger(3))
	assert.True(t, c.IsSellTrigger(3))
	assert.False(t, c.IsSellTrigger(7))
	assert.False(t, c.IsBuyTrigger(7))

	triggers := c.Triggers()
	require.Len(t, triggers, 2)
}

func TestClassifyReplacesPriorPartition(t *testing.T) {
	c := NewClassifier([]string{"momentum-breakout"}, []string{"trend-exit"})
	c.Classify([]adapter.Condition{
		{Index: 0, Name: "momentum-breakout"},
	})
	require.True(t, c.IsBuyTrigger(0))

	c.Classify([]adapter.Condition{
		{Index: 5, Name: "momentum-breakout"},
	})
	assert.False(t, c.IsBuyTrigger(0), "reload must not merge with prior partition")
	assert.True(t, c.IsBuyTrigger(5))
}

func TestClassifyEmptyList(t *testing.T) {
	c := NewClassifier([]string{"momentum-breakout"}, nil)
	c.Classify(nil)
	assert.Empty(t, c.Triggers())
	assert.False(t, c.IsBuyTrigger(0))
}
