package model

import "time"

// Review is a buyer's rating of a product.
type Review struct {
	ID        string    `json:"id"`
	BuyerID   string    `json:"buyer_id"`
	ProductID string    `json:"product_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Inquiry is a message from a buyer to a seller.
type Inquiry struct {
	ID        string    `json:"id"`
	BuyerID   string    `json:"buyer_id"`
	SellerID  string    `json:"seller_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// SellerStats is the seller dashboard aggregate.  AverageRating is nil when
// none of the seller's products has a review.
type SellerStats struct {
	ProductCount  int64    `json:"productCount"`
	OrderCount    int64    `json:"orderCount"`
	AverageRating *float64 `json:"averageRating"`
}

// BuyerStats is the buyer dashboard aggregate.
type BuyerStats struct {
	OrderCount  int64 `json:"orderCount"`
	ReviewCount int64 `json:"reviewCount"`
}
