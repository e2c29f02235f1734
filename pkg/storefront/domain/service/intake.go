package service

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"storefront/pkg/storefront/domain/model"
)

const (
	maxNameLength    = 100
	maxEmailLength   = 120
	maxPhoneLength   = 20
	maxAddressLength = 300
	maxNotesLength   = 500
)

var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type payloadLine struct {
	ID       *string      `json:"id"`
	Quantity *json.Number `json:"quantity"`
}

// ParseSubmission validates a checkout submission and normalizes it into an
// order request. Quantities below 1 are raised to 1 and a missing quantity
// counts as 1.
func ParseSubmission(submission model.Submission) (*model.OrderRequest, error) {
	lines, err := parseLineItems(submission.LineItemsPayload)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, model.ErrEmptyOrder
	}

	customer := model.Customer{
		Name:            strings.TrimSpace(submission.CustomerName),
		Email:           strings.TrimSpace(submission.CustomerEmail),
		Phone:           strings.TrimSpace(submission.CustomerPhone),
		DeliveryAddress: strings.TrimSpace(submission.DeliveryAddress),
		Notes:           strings.TrimSpace(submission.Notes),
	}
	if err := validateCustomer(customer); err != nil {
		return nil, err
	}

	return &model.OrderRequest{Customer: customer, Lines: lines}, nil
}

func parseLineItems(payload string) ([]model.RequestedLine, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, nil
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(payload)))
	decoder.UseNumber()

	var raw []payloadLine
	if err := decoder.Decode(&raw); err != nil {
		return nil, model.ErrMalformedPayload
	}
	if decoder.More() || raw == nil {
		return nil, model.ErrMalformedPayload
	}

	lines := make([]model.RequestedLine, 0, len(raw))
	for _, entry := range raw {
		if entry.ID == nil {
			return nil, model.ErrMalformedPayload
		}
		productID, err := uuid.Parse(*entry.ID)
		if err != nil {
			return nil, model.ErrMalformedPayload
		}

		quantity := 1
		if entry.Quantity != nil {
			n, err := entry.Quantity.Int64()
			if err != nil || n > math.MaxInt32 {
				return nil, model.ErrMalformedPayload
			}
			if n > 1 {
				quantity = int(n)
			}
		}

		lines = append(lines, model.RequestedLine{ProductID: productID, Quantity: quantity})
	}
	return lines, nil
}

func validateCustomer(c model.Customer) error {
	var fields []model.FieldError
	add := func(field, message string) {
		fields = append(fields, model.FieldError{Field: field, Message: message})
	}

	switch {
	case c.Name == "":
		add("customer_name", "is required")
	case utf8.RuneCountInString(c.Name) > maxNameLength:
		add("customer_name", "is too long")
	}

	switch {
	case c.Email == "":
		add("customer_email", "is required")
	case utf8.RuneCountInString(c.Email) > maxEmailLength:
		add("customer_email", "is too long")
	case !emailShape.MatchString(c.Email):
		add("customer_email", "is not a valid email address")
	}

	switch {
	case c.Phone == "":
		add("customer_phone", "is required")
	case utf8.RuneCountInString(c.Phone) > maxPhoneLength:
		add("customer_phone", "is too long")
	}

	if utf8.RuneCountInString(c.DeliveryAddress) > maxAddressLength {
		add("delivery_address", "is too long")
	}
	if utf8.RuneCountInString(c.Notes) > maxNotesLength {
		add("notes", "is too long")
	}

	if len(fields) > 0 {
		return &model.ValidationError{Fields: fields}
	}
	return nil
}
