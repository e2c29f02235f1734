package model

import "github.com/google/uuid"

// Submission is the raw checkout form as received from the presentation layer.
type Submission struct {
	MerchantSlug     string
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	DeliveryAddress  string
	Notes            string
	LineItemsPayload string
}

type RequestedLine struct {
	ProductID uuid.UUID
	Quantity  int
}

type OrderRequest struct {
	Customer Customer
	Lines    []RequestedLine
}
