package model

import "time"

// Order statuses used by the application.  The column is free text and any
// non-empty value is accepted on update.
const (
	OrderProcessing = "Processing"
	OrderPaid       = "Paid"
	OrderShipped    = "Shipped"
	OrderDelivered  = "Delivered"
	OrderCancelled  = "Cancelled"
)

// Order is a purchase record with its products aggregated from
// Order_Product.  Prices are the live Product prices at query time, so Total
// drifts when a seller edits a price after the order was placed.
type Order struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"`
	BuyerID   string         `json:"buyer_id"`
	SellerID  string         `json:"seller_id"`
	Total     float64        `json:"total"`
	CreatedAt time.Time      `json:"created_at"`
	Products  []OrderProduct `json:"products"`
}

// OrderProduct is one product line of an Order listing.
type OrderProduct struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// OrderLine is one denormalised row of the order view: the order joined with
// one of its products.
type OrderLine struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Payment is a recorded payment against an order.
type Payment struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	CreatedAt time.Time `json:"created_at"`
}
