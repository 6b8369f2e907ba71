package exception

import "errors"

var (
	ErrTRChannelBusy      = errors.New("tr: channel busy")
	ErrTRInvalidChannel   = errors.New("tr: invalid channel")
	ErrTRAwaitCanceled    = errors.New("tr: await canceled")
	ErrTRResponseFailed   = errors.New("tr: response reported failure")
	ErrTRNonPositivePrice = errors.New("tr: non-positive price")
)
