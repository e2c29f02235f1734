package model

import (
	"fmt"
	"strings"
)

// FulfillmentPolicy decides what happens to a requested line that cannot be
// served from stock.
type FulfillmentPolicy int

const (
	// PartialFulfillment skips unavailable lines and keeps the rest of the order.
	PartialFulfillment FulfillmentPolicy = iota
	// StrictFulfillment rejects the whole order when any line is unavailable.
	StrictFulfillment
)

func (p FulfillmentPolicy) String() string {
	if p == StrictFulfillment {
		return "strict"
	}
	return "partial"
}

func ParseFulfillmentPolicy(s string) (FulfillmentPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "partial":
		return PartialFulfillment, nil
	case "strict":
		return StrictFulfillment, nil
	default:
		return PartialFulfillment, fmt.Errorf("unknown fulfillment policy %q", s)
	}
}
