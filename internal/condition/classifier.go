package condition

import (
	"main/internal/adapter"
	"main/internal/adapter/enum"
)

// Classifier partitions the loaded condition list into buy-trigger and
// sell-trigger index sets by testing condition names against two statically
// configured name sets. A condition in neither set is inert: observed, never
// acted on.
type Classifier struct {
	buyNames  map[string]struct{}
	sellNames map[string]struct{}

	buySet  map[int]struct{}
	sellSet map[int]struct{}
	active  []adapter.Condition
}

// NewClassifier builds a classifier from the configured name sets.
func NewClassifier(buyNames, sellNames []string) *Classifier {
	c := &Classifier{
		buyNames:  make(map[string]struct{}, len(buyNames)),
		sellNames: make(map[string]struct{}, len(sellNames)),
		buySet:    make(map[int]struct{}),
		sellSet:   make(map[int]struct{}),
	}
	for _, name := range buyNames {
		c.buyNames[name] = struct{}{}
	}
	for _, name := range sellNames {
		c.sellNames[name] = struct{}{}
	}
	return c
}

// Classify replaces the active partition with one computed from the given
// list. No merging with the prior partition happens on reload.
func (c *Classifier) Classify(list []adapter.Condition) {
	buySet := make(map[int]struct{})
	sellSet := make(map[int]struct{})
	active := make([]adapter.Condition, 0, len(list))

	for _, cond := range list {
		cond.Role = enum.ConditionRoleIgnored
		if _, ok := c.buyNames[cond.Name]; ok {
			cond.Role = enum.ConditionRoleBuy
			buySet[cond.Index] = struct{}{}
		} else if _, ok := c.sellNames[cond.Name]; ok {
			cond.Role = enum.ConditionRoleSell
			sellSet[cond.Index] = struct{}{}
		}
		active = append(active, cond)
	}

	c.buySet = buySet
	c.sellSet = sellSet
	c.active = active
}

// IsBuyTrigger reports whether the index belongs to the buy-trigger set.
func (c *Classifier) IsBuyTrigger(index int) bool {
	_, ok := c.buySet[index]
	return ok
}

// IsSellTrigger reports whether the index belongs to the sell-trigger set.
func (c *Classifier) IsSellTrigger(index int) bool {
	_, ok := c.sellSet[index]
	return ok
}

// Triggers returns every condition classified as a buy or sell trigger.
// The router subscribes each of these after every (re)load.
func (c *Classifier) Triggers() []adapter.Condition {
	out := make([]adapter.Condition, 0, len(c.buySet)+len(c.sellSet))
	for _, cond := range c.active {
		if cond.Role != enum.ConditionRoleIgnored {
			out = append(out, cond)
		}
	}
	return out
}
