package model

import (
	"math"
	"time"
)

// Transaction records the sale of an item from its seller to a buyer.
type Transaction struct {
	ID         int64     `json:"id"`
	ItemID     int64     `json:"item_id"`
	SellerID   int64     `json:"seller_id"`
	BuyerID    int64     `json:"buyer_id"`
	Amount     float64   `json:"amount"`
	Commission float64   `json:"commission"`
	CreatedAt  time.Time `json:"created_at"`

	// Joined fields (not always populated).
	ItemName string `json:"item_name,omitempty"`
	Seller   string `json:"seller,omitempty"`
	Buyer    string `json:"buyer,omitempty"`
}

// CommissionRate is the share of each sale kept by the marketplace.
const CommissionRate = 0.10

// Commission returns the marketplace's cut of price, rounded to cents.
func Commission(price float64) float64 {
	return math.Round(price*CommissionRate*100) / 100
}
