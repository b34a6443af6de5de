package grocery

import "time"

// Purchase is one parsed line item from a receipt.
type Purchase struct {
	Item     string  `json:"item"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// Bill groups the purchases extracted from one uploaded receipt.
type Bill struct {
	ID        string     `json:"id"`
	Purchases []Purchase `json:"purchases"`
	CreatedAt time.Time  `json:"createdAt"`
}
