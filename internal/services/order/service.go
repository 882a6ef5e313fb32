package order

import (
	"context"
	"errors"
	"fmt"

	"food-delivery/internal/logger"
	"food-delivery/internal/models"
)

// Service implements restaurant, menu, customer and order operations over a Store
type Service struct {
	store     Store
	publisher EventPublisher
	logger    *logger.Logger
	priceMode models.LinePriceMode
}

// NewService creates a new order service
func NewService(store Store, publisher EventPublisher, log *logger.Logger, priceMode models.LinePriceMode) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    log,
		priceMode: priceMode,
	}
}

// Restaurants returns every restaurant
func (s *Service) Restaurants(ctx context.Context, requestID string) ([]models.Restaurant, error) {
	restaurants, err := s.store.ListRestaurants(ctx)
	if err != nil {
		s.logger.Error("db_query_failed", "Failed to list restaurants", requestID, err, nil)
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	if restaurants == nil {
		restaurants = []models.Restaurant{}
	}
	return restaurants, nil
}

// Menu returns the menu items of a restaurant. An unknown restaurant has an empty menu.
func (s *Service) Menu(ctx context.Context, restaurantID int64, requestID string) ([]models.MenuItem, error) {
	items, err := s.store.ListMenu(ctx, restaurantID)
	if err != nil {
		s.logger.Error("db_query_failed", "Failed to list menu", requestID, err, map[string]interface{}{
			"restaurant_id": restaurantID,
		})
		return nil, fmt.Errorf("list menu of restaurant %d: %w", restaurantID, err)
	}
	if items == nil {
		items = []models.MenuItem{}
	}
	return items, nil
}

// AddCustomer finds the customer with the request's email or creates one
func (s *Service) AddCustomer(ctx context.Context, req *models.CreateCustomerRequest, requestID string) (*models.CustomerResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id, created, err := s.store.UpsertCustomer(ctx, req.Customer())
	if err != nil {
		s.logger.Error("customer_upsert_failed", "Failed to find or create customer", requestID, err, nil)
		return nil, fmt.Errorf("upsert customer: %w", err)
	}

	status := models.CustomerExists
	if created {
		status = models.CustomerCreated
	}

	s.logger.Info("customer_"+status, "Customer "+status, requestID, map[string]interface{}{
		"customer_id": id,
	})

	return &models.CustomerResponse{Status: status, CustomerID: id}, nil
}

// PlaceOrder prices the request's items against the current menu and stores the
// order and its items in one transaction.
func (s *Service) PlaceOrder(ctx context.Context, req *models.PlaceOrderRequest, requestID string) (*models.PlaceOrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		order models.Order
		lines []models.PricedLine
	)

	err := s.store.InTx(ctx, func(tx Tx) error {
		lines = make([]models.PricedLine, 0, len(req.Items))
		for _, item := range req.Items {
			price, err := tx.ItemPrice(ctx, item.ItemID)
			if errors.Is(err, ErrItemNotFound) {
				return fmt.Errorf("%w: %d", ErrInvalidItem, item.ItemID)
			}
			if err != nil {
				return fmt.Errorf("look up price of item %d: %w", item.ItemID, err)
			}
			lines = append(lines, models.PricedLine{
				ItemID:    item.ItemID,
				Quantity:  item.EffectiveQuantity(),
				UnitPrice: price,
			})
		}

		total := models.OrderTotal(lines)
		order = models.Order{
			CustomerID:   req.CustomerID,
			RestaurantID: req.RestaurantID,
			TotalAmount:  total,
			Status:       models.StatusPending,
		}
		if err := tx.InsertOrder(ctx, &order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, line := range lines {
			item := models.OrderItem{
				OrderID:   order.ID,
				ItemID:    line.ItemID,
				Quantity:  line.Quantity,
				PriceEach: s.priceMode.PriceEach(line, total),
			}
			if err := tx.InsertOrderItem(ctx, &item); err != nil {
				return fmt.Errorf("insert item %d of order %d: %w", line.ItemID, order.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidItem) {
			s.logger.Warn("order_rejected", "Order references an unknown menu item", requestID, map[string]interface{}{
				"customer_id":   req.CustomerID,
				"restaurant_id": req.RestaurantID,
				"error":         err.Error(),
			})
			return nil, err
		}
		s.logger.Error("order_creation_failed", "Failed to place order", requestID, err, map[string]interface{}{
			"customer_id":   req.CustomerID,
			"restaurant_id": req.RestaurantID,
		})
		return nil, err
	}

	s.logger.Info("order_created", "Order placed", requestID, map[string]interface{}{
		"order_id":     order.ID,
		"total_amount": order.TotalAmount.String(),
		"items":        len(lines),
	})

	// The order is committed; a failed announcement must not fail the request.
	if err := s.publisher.PublishOrderPlaced(ctx, models.NewOrderPlacedEvent(&order, lines)); err != nil {
		s.logger.Error("event_publish_failed", "Failed to publish order placed event", requestID, err, map[string]interface{}{
			"order_id": order.ID,
		})
	}

	return &models.PlaceOrderResponse{Status: models.OrderPlaced, OrderID: order.ID}, nil
}

// Orders returns all orders with customer and restaurant names, newest first
func (s *Service) Orders(ctx context.Context, requestID string) ([]models.OrderSummary, error) {
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		s.logger.Error("db_query_failed", "Failed to list orders", requestID, err, nil)
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []models.OrderSummary{}
	}
	return orders, nil
}

// HealthCheck reports whether the store answers
func (s *Service) HealthCheck(ctx context.Context) bool {
	return s.store.Ping(ctx) == nil
}
