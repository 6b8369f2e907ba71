package engine

import (
	"context"

	"main/internal/adapter"
)

// Session is the brokerage boundary the coordinator drives. Implementations
// deliver their asynchronous callbacks as adapter events through Publish;
// request methods return transport-level acceptance only.
type Session interface {
	// SubmitOrder sends one order. A nil return is the submission
	// acknowledgment; terminal outcomes arrive later as fill notices.
	SubmitOrder(ctx context.Context, req adapter.OrderRequest) error

	// RequestPrice issues a price-lookup TR for the code. The response
	// arrives as a TRResponseEvent on the price channel.
	RequestPrice(ctx context.Context, code adapter.Code) error

	// RequestBalance issues a balance-snapshot TR for the account. The
	// response arrives as a TRResponseEvent on the balance channel.
	RequestBalance(ctx context.Context, account string) error

	// SubscribeCondition registers for real-time notifications of one
	// screening condition.
	SubscribeCondition(ctx context.Context, index int, name string) error
}
