package exception

import "errors"

var (
	ErrEngineQueueFull      = errors.New("engine: event queue full")
	ErrEngineQueueClosed    = errors.New("engine: event queue closed")
	ErrEngineNilSession     = errors.New("engine: nil brokerage session")
	ErrEngineAlreadyRunning = errors.New("engine: already running")
)
