package exception

import "errors"

var (
	ErrOrderInvalidRequest    = errors.New("order: invalid request")
	ErrOrderDuplicate         = errors.New("order: order already exists")
	ErrOrderUnknown           = errors.New("order: order not found")
	ErrOrderInvalidTransition = errors.New("order: invalid state transition")
	ErrOrderRejected          = errors.New("order: rejected by brokerage")
)
