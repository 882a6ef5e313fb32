package order

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"food-delivery/internal/config"
	"food-delivery/internal/logger"
	"food-delivery/internal/models"
)

// Handler handles HTTP requests for the order service
type Handler struct {
	service      *Service
	logger       *logger.Logger
	cors         config.CORSConfig
	queryTimeout time.Duration
	logBodies    bool
}

// HandlerOptions configures a Handler
type HandlerOptions struct {
	CORS         config.CORSConfig
	QueryTimeout time.Duration
	LogBodies    bool
}

// NewHandler creates a new order handler
func NewHandler(service *Service, log *logger.Logger, opts HandlerOptions) *Handler {
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = 10 * time.Second
	}
	return &Handler{
		service:      service,
		logger:       log,
		cors:         opts.CORS,
		queryTimeout: opts.QueryTimeout,
		logBodies:    opts.LogBodies,
	}
}

// SetupRoutes sets up the HTTP routes
func (h *Handler) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /restaurants", h.ListRestaurants)
	mux.HandleFunc("GET /menu/{rid}", h.ListMenu)
	mux.HandleFunc("POST /customers/add", h.AddCustomer)
	mux.HandleFunc("POST /orders/add", h.AddOrder)
	mux.HandleFunc("GET /orders", h.ListOrders)
	mux.HandleFunc("GET /health", h.HealthCheck)

	return newCORS(h.cors, h.logger).Handler(h.withLogging(mux))
}

// ListRestaurants handles GET /restaurants
func (h *Handler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFromContext(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	restaurants, err := h.service.Restaurants(ctx, requestID)
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, err.Error(), requestID)
		return
	}
	h.writeJSON(w, http.StatusOK, restaurants, requestID)
}

// ListMenu handles GET /menu/{rid}
func (h *Handler) ListMenu(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFromContext(r.Context())

	rid, err := strconv.ParseInt(r.PathValue("rid"), 10, 64)
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "rid must be an integer", requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	items, err := h.service.Menu(ctx, rid, requestID)
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, err.Error(), requestID)
		return
	}
	h.writeJSON(w, http.StatusOK, items, requestID)
}

// AddCustomer handles POST /customers/add
func (h *Handler) AddCustomer(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFromContext(r.Context())

	var req models.CreateCustomerRequest
	if err := h.decodeBody(w, r, &req, "customer_received", requestID); err != nil {
		h.writeDecodeError(w, err, requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	resp, err := h.service.AddCustomer(ctx, &req, requestID)
	if err != nil {
		h.writeServiceError(w, err, requestID)
		return
	}
	h.writeJSON(w, http.StatusOK, resp, requestID)
}

// AddOrder handles POST /orders/add
func (h *Handler) AddOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFromContext(r.Context())

	var req models.PlaceOrderRequest
	if err := h.decodeBody(w, r, &req, "order_received", requestID); err != nil {
		h.writeDecodeError(w, err, requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	resp, err := h.service.PlaceOrder(ctx, &req, requestID)
	if err != nil {
		h.writeServiceError(w, err, requestID)
		return
	}
	h.writeJSON(w, http.StatusOK, resp, requestID)
}

// ListOrders handles GET /orders
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFromContext(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	orders, err := h.service.Orders(ctx, requestID)
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, err.Error(), requestID)
		return
	}
	h.writeJSON(w, http.StatusOK, orders, requestID)
}

// HealthCheck handles GET /health requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	healthy := h.service.HealthCheck(ctx)

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "order-service",
		"healthy":   healthy,
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
		response["status"] = "unhealthy"
	}
	h.writeJSON(w, status, response, logger.RequestIDFromContext(r.Context()))
}

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

// decodeBody parses a JSON body into dst. Raw bodies are logged only when enabled.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, action, requestID string) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return err
	}

	if h.logBodies {
		h.logger.Debug(action, "Received request body", requestID, map[string]interface{}{
			"body": string(body),
		})
	}

	return json.NewDecoder(bytes.NewReader(body)).Decode(dst)
}

// writeDecodeError answers a body that could not be read or parsed
func (h *Handler) writeDecodeError(w http.ResponseWriter, err error, requestID string) {
	h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.writeErrorResponse(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit), requestID)
		return
	}
	h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
}

// writeServiceError maps service errors to client-input (400) or server (500) responses
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, requestID string) {
	var ve models.ValidationError
	switch {
	case errors.As(err, &ve):
		h.writeErrorResponse(w, http.StatusBadRequest, ve.Error(), requestID)
	case errors.Is(err, ErrInvalidItem):
		// the wrapped item id stays in the logs
		h.writeErrorResponse(w, http.StatusBadRequest, ErrInvalidItem.Error(), requestID)
	default:
		h.writeErrorResponse(w, http.StatusInternalServerError, err.Error(), requestID)
	}
}

// writeErrorResponse writes an error response in JSON format
func (h *Handler) writeErrorResponse(w http.ResponseWriter, statusCode int, detail, requestID string) {
	h.writeJSON(w, statusCode, map[string]interface{}{
		"detail":     detail,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	}, requestID)
}

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, v interface{}, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}
