// Package queue defines the domain events exchanged over RabbitMQ and the
// background consumer that records them.
package queue

// Queue names.  Each event type has its own durable queue on the default
// exchange.
const (
	OrderPlacedQueue = "order.placed"
	PaymentMadeQueue = "payment.made"
)

// OrderPlacedEvent is published after an order transaction commits.
type OrderPlacedEvent struct {
	OrderID    string   `json:"order_id"`
	BuyerID    string   `json:"buyer_id"`
	SellerID   string   `json:"seller_id"`
	ProductIDs []string `json:"product_ids"`
	PlacedAt   string   `json:"placed_at"`
}

// PaymentMadeEvent is published after a payment is recorded and its order
// marked Paid.
type PaymentMadeEvent struct {
	PaymentID string  `json:"payment_id"`
	OrderID   string  `json:"order_id"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	PaidAt    string  `json:"paid_at"`
}
