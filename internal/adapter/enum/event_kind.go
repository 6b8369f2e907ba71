package enum

// EventKind identifies the category of an inbound coordinator event.
type EventKind uint16

const (
	EventKindUnknown EventKind = iota
	EventKindConditionList
	EventKindScanList
	EventKindTransition
	EventKindTRResponse
	EventKindFill
	EventKindSettleExpired
	_event_kind_end
)

// EventKindCount is the number of defined event kinds, for counter arrays.
const EventKindCount = int(_event_kind_end)

func (k EventKind) IsAvailable() bool {
	return k > EventKindUnknown && k < _event_kind_end
}
