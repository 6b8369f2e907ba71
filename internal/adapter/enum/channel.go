package enum

// TRChannel price, balance
//
// Each correlated request/response transaction to the brokerage runs on one
// of these channels. A channel carries at most one outstanding request.
type TRChannel uint8

const (
	_tr_channel_beg TRChannel = iota
	TRChannelPrice
	TRChannelBalance
	_tr_channel_end
)

func (c TRChannel) IsAvailable() bool {
	return c > _tr_channel_beg && c < _tr_channel_end
}

func (c TRChannel) String() string {
	switch c {
	case TRChannelPrice:
		return "price"
	case TRChannelBalance:
		return "balance"
	default:
		return "unknown"
	}
}
