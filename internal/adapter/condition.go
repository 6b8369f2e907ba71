package adapter

import "main/internal/adapter/enum"

// Condition is one named screening rule evaluated by the brokerage feed.
// The active set is immutable per session and replaced wholesale on reload.
type Condition struct {
	Index int
	Name  string
	Role  enum.ConditionRole
}
