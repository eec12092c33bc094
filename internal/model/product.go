package model

// Product is a seller-owned listing (`Product` table).  Images is only
// populated by single-product lookups.
type Product struct {
	ID          string  `json:"id"`
	SellerID    string  `json:"seller_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Images      []Image `json:"images,omitempty"`
}

// Image is a stored picture of a product (`Image` table).  URL holds the
// object key inside the image bucket.
type Image struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	URL       string `json:"url"`
}

// CartItem is a product currently in a buyer's cart.
type CartItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}
