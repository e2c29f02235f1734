package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appservice "storefront/pkg/storefront/application/service"
	"storefront/pkg/storefront/domain/model"
)

type mockCheckoutService struct {
	submission model.Submission
	receipt    *appservice.Receipt
	storefront  *appservice.Storefront
	err         error
	merchantErr error
}

func (m *mockCheckoutService) Storefront(_ context.Context, slug string) (*appservice.Storefront, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.storefront, nil
}

func (m *mockCheckoutService) ResolveMerchant(_ context.Context, slug string) (*model.Merchant, error) {
	if m.merchantErr != nil {
		return nil, m.merchantErr
	}
	return &model.Merchant{Slug: slug, Active: true, AcceptOrders: true}, nil
}

func (m *mockCheckoutService) Checkout(_ context.Context, submission model.Submission) (*appservice.Receipt, error) {
	m.submission = submission
	if m.err != nil {
		return nil, m.err
	}
	return m.receipt, nil
}

func (m *mockCheckoutService) FindOrder(_ context.Context, slug, orderNumber string) (*appservice.Receipt, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.receipt, nil
}

func setup(t *testing.T) (http.Handler, *mockCheckoutService) {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	checkout := &mockCheckoutService{
		receipt: &appservice.Receipt{
			OrderNumber: "ORD-20261018-0A1B2C3D",
			Status:      "pending",
			Total:       "20.00",
			LineItems:   []appservice.ReceiptLine{{ProductName: "Widget A", Quantity: 2, UnitPrice: "10.00"}},
		},
		storefront: &appservice.Storefront{Slug: "acme", Name: "Acme"},
	}
	return Router(checkout, logger), checkout
}

func do(handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrder(t *testing.T) {
	handler, checkout := setup(t)

	t.Run("Success with serialized line items", func(t *testing.T) {
		body := `{"customer_name":"Ann","customer_email":"ann@example.com","customer_phone":"+15550100",
			"line_items":"[{\"id\":\"a\",\"quantity\":2}]"}`

		rec := do(handler, http.MethodPost, "/api/v1/stores/acme/orders", body)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "acme", checkout.submission.MerchantSlug)
		assert.Equal(t, "Ann", checkout.submission.CustomerName)
		assert.Equal(t, `[{"id":"a","quantity":2}]`, checkout.submission.LineItemsPayload)

		var receipt appservice.Receipt
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &receipt))
		assert.Equal(t, "ORD-20261018-0A1B2C3D", receipt.OrderNumber)
		assert.Equal(t, "20.00", receipt.Total)
	})

	t.Run("Success with inline line items", func(t *testing.T) {
		rec := do(handler, http.MethodPost, "/api/v1/stores/acme/orders", `{"line_items":[{"id":"a"}]}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, `[{"id":"a"}]`, checkout.submission.LineItemsPayload)
	})

	t.Run("Missing line items are passed as empty", func(t *testing.T) {
		checkout.err = model.ErrEmptyOrder
		defer func() { checkout.err = nil }()

		rec := do(handler, http.MethodPost, "/api/v1/stores/acme/orders", `{"customer_name":"Ann"}`)

		assert.Equal(t, "", checkout.submission.LineItemsPayload)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"error":"EmptyOrder"`)
	})

	t.Run("Fail on undecodable body", func(t *testing.T) {
		rec := do(handler, http.MethodPost, "/api/v1/stores/acme/orders", `{`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"error":"MalformedPayload"`)
	})

	t.Run("Fail on undecodable line items string", func(t *testing.T) {
		rec := do(handler, http.MethodPost, "/api/v1/stores/acme/orders", `{"line_items":"\x"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"error":"MalformedPayload"`)
	})

	t.Run("Fail on unknown merchant before undecodable body", func(t *testing.T) {
		checkout.merchantErr = model.ErrMerchantNotFound
		defer func() { checkout.merchantErr = nil }()

		rec := do(handler, http.MethodPost, "/api/v1/stores/nobody/orders", `{`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), `"error":"NotFound"`)
	})
}

func TestErrorResponses(t *testing.T) {
	handler, checkout := setup(t)
	cases := []struct {
		err    error
		status int
		kind   model.FailureKind
	}{
		{model.ErrMerchantNotFound, http.StatusNotFound, model.KindNotFound},
		{model.ErrMalformedPayload, http.StatusBadRequest, model.KindMalformedPayload},
		{&model.ValidationError{Fields: []model.FieldError{{Field: "customer_email", Message: "is required"}}}, http.StatusUnprocessableEntity, model.KindValidation},
		{model.ErrNoFulfillableItems, http.StatusConflict, model.KindNoFulfillableItems},
		{model.ErrOrdersNotAccepted, http.StatusConflict, model.KindOrdersNotAccepted},
		{errors.Join(model.ErrLineUnavailable, model.ErrInsufficientStock), http.StatusConflict, model.KindLineUnavailable},
		{&model.PersistenceError{Err: errors.New("deadlock found")}, http.StatusServiceUnavailable, model.KindPersistence},
	}

	for _, c := range cases {
		t.Run(string(c.kind), func(t *testing.T) {
			checkout.err = c.err

			rec := do(handler, http.MethodPost, "/api/v1/stores/acme/orders", `{"line_items":"[]"}`)

			require.Equal(t, c.status, rec.Code)
			var response errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			assert.Equal(t, c.kind, response.Error)
			if c.kind == model.KindValidation {
				assert.Equal(t, "customer_email", response.Fields[0].Field)
			}
			if c.kind == model.KindPersistence {
				assert.NotContains(t, response.Message, "deadlock")
			}
		})
	}
}

func TestListProducts(t *testing.T) {
	handler, checkout := setup(t)

	t.Run("Success", func(t *testing.T) {
		rec := do(handler, http.MethodGet, "/api/v1/stores/acme/products", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"name":"Acme"`)
	})

	t.Run("Fail on unknown merchant", func(t *testing.T) {
		checkout.err = model.ErrMerchantNotFound

		rec := do(handler, http.MethodGet, "/api/v1/stores/nobody/products", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetOrder(t *testing.T) {
	handler, checkout := setup(t)

	rec := do(handler, http.MethodGet, "/api/v1/stores/acme/orders/ORD-20261018-0A1B2C3D", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"order_number":"ORD-20261018-0A1B2C3D"`)

	checkout.err = model.ErrOrderNotFound
	rec = do(handler, http.MethodGet, "/api/v1/stores/acme/orders/ORD-MISSING", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
