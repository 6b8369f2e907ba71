package enum

// TransitionDirection entered, left
//
// An instrument beginning or ceasing to satisfy a screening condition.
type TransitionDirection uint8

const (
	_transition_direction_beg TransitionDirection = iota
	TransitionEntered
	TransitionLeft
	_transition_direction_end
)

func (d TransitionDirection) IsAvailable() bool {
	return d > _transition_direction_beg && d < _transition_direction_end
}
