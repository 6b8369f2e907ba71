package exception

import "errors"

var (
	ErrBrokerNotConnected    = errors.New("broker: not connected")
	ErrBrokerSubscribeFailed = errors.New("broker: subscribe failed")
	ErrBrokerSendRejected    = errors.New("broker: send rejected")
)
