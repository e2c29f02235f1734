package model

import "github.com/google/uuid"

type OrderPlaced struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	MerchantID  uuid.UUID `json:"merchant_id"`
	TotalCents  int64     `json:"total_cents"`
	ItemCount   int       `json:"item_count"`
}

func (e OrderPlaced) Type() string { return "OrderPlaced" }
