package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	appservice "storefront/pkg/storefront/application/service"
	"storefront/pkg/storefront/domain/model"
)

const maxBodyBytes = 1 << 20

type orderRequest struct {
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerPhone   string          `json:"customer_phone"`
	DeliveryAddress string          `json:"delivery_address"`
	Notes           string          `json:"notes"`
	LineItems       json.RawMessage `json:"line_items"`
}

type errorResponse struct {
	Error   model.FailureKind  `json:"error"`
	Message string             `json:"message"`
	Fields  []model.FieldError `json:"fields,omitempty"`
}

type Handler struct {
	checkout appservice.CheckoutService
	logger   log.FieldLogger
}

func Router(checkout appservice.CheckoutService, logger log.FieldLogger) http.Handler {
	h := &Handler{checkout: checkout, logger: logger}

	r := mux.NewRouter()
	s := r.PathPrefix("/api/v1").Subrouter()
	s.HandleFunc("/stores/{slug}/products", h.listProducts).Methods(http.MethodGet)
	s.HandleFunc("/stores/{slug}/orders", h.createOrder).Methods(http.MethodPost)
	s.HandleFunc("/stores/{slug}/orders/{number}", h.getOrder).Methods(http.MethodGet)

	return logMiddleware(logger, r)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	store, err := h.checkout.Storefront(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, store)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	var body orderRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(&body); err != nil {
		h.rejectMalformed(w, r, slug)
		return
	}

	payload, err := lineItemsPayload(body.LineItems)
	if err != nil {
		h.rejectMalformed(w, r, slug)
		return
	}

	receipt, err := h.checkout.Checkout(r.Context(), model.Submission{
		MerchantSlug:     slug,
		CustomerName:     body.CustomerName,
		CustomerEmail:    body.CustomerEmail,
		CustomerPhone:    body.CustomerPhone,
		DeliveryAddress:  body.DeliveryAddress,
		Notes:            body.Notes,
		LineItemsPayload: payload,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, receipt)
}

// rejectMalformed reports an unknown merchant ahead of the broken body.
func (h *Handler) rejectMalformed(w http.ResponseWriter, r *http.Request, slug string) {
	if _, err := h.checkout.ResolveMerchant(r.Context(), slug); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeError(w, model.ErrMalformedPayload)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	receipt, err := h.checkout.FindOrder(r.Context(), vars["slug"], vars["number"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, receipt)
}

// lineItemsPayload accepts the serialized list either as a JSON string, the
// way a checkout form posts it, or inline as a JSON array.
func lineItemsPayload(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(raw), nil
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	kind := model.KindOf(err)
	response := errorResponse{Error: kind, Message: err.Error()}

	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		response.Fields = validationErr.Fields
	}
	if kind == model.KindPersistence {
		h.logger.WithError(err).Error("checkout failed")
		response.Message = "order could not be saved, please try again"
	}

	h.writeJSON(w, statusFor(kind), response)
}

func statusFor(kind model.FailureKind) int {
	switch kind {
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindMalformedPayload, model.KindEmptyOrder:
		return http.StatusBadRequest
	case model.KindValidation:
		return http.StatusUnprocessableEntity
	case model.KindNoFulfillableItems, model.KindLineUnavailable, model.KindOrdersNotAccepted:
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WithField("err", err).Error("write response")
	}
}

func logMiddleware(logger log.FieldLogger, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.WithFields(log.Fields{
			"method":     r.Method,
			"url":        r.URL,
			"remoteAddr": r.RemoteAddr,
			"userAgent":  r.UserAgent(),
		}).Info("got a new request")
		h.ServeHTTP(w, r)
	})
}
