package adapter

import "main/internal/adapter/enum"

// OrderRequest is a single outbound order toward the brokerage session.
// Price is zero for market orders.
type OrderRequest struct {
	Account  string
	Code     Code
	Side     enum.OrderSide
	Type     enum.OrderType
	Quantity Quantity
	Price    Price
}
