package controller

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"orders/internal/domain"
	"orders/internal/dto"
	"orders/internal/validation"
)

type OrderUseCase interface {
	CreateOrder(ctx context.Context, order domain.Order, requestedStatus string) (*domain.Order, error)
	ListOrders(ctx context.Context, customerID, statusName string) ([]domain.Order, error)
	GetOrder(ctx context.Context, id uint) (*domain.Order, error)
	UpdateOrder(ctx context.Context, id uint, shippingAddress *string, requestedStatus string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id uint, requestedStatus string) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id uint) error

	ListItems(ctx context.Context, orderID uint, filter domain.ItemFilter) ([]domain.OrderItem, error)
	AddItem(ctx context.Context, orderID uint, item domain.OrderItem) (*domain.OrderItem, error)
	GetItem(ctx context.Context, orderID, itemID uint) (*domain.OrderItem, error)
	UpdateItem(ctx context.Context, orderID, itemID uint, quantity int, price float64) (*domain.OrderItem, error)
	DeleteItem(ctx context.Context, orderID, itemID uint) error
}

type Controller struct {
	useCase  OrderUseCase
	validate *validatorv10.Validate
	logger   *zap.Logger
	now      func() time.Time
}

func NewController(useCase OrderUseCase, validate *validatorv10.Validate, logger *zap.Logger) *Controller {
	return &Controller{
		useCase:  useCase,
		validate: validate,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Routes mounts the order and item endpoints under /orders.
func (c *Controller) Routes(r chi.Router) {
	jsonOnly := RequireJSON(c.logger)

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", c.ListOrders)
		r.With(jsonOnly).Post("/", c.CreateOrder)

		r.Get("/{orderId}", c.GetOrder)
		r.With(jsonOnly).Put("/{orderId}", c.UpdateOrder)
		r.Delete("/{orderId}", c.DeleteOrder)
		r.With(jsonOnly).Put("/{orderId}/status", c.UpdateStatus)

		r.Get("/{orderId}/items", c.ListItems)
		r.With(jsonOnly).Post("/{orderId}/items", c.AddItem)

		r.Get("/{orderId}/item/{itemId}", c.GetItem)
		r.With(jsonOnly).Put("/{orderId}/item/{itemId}", c.UpdateItem)
		r.Delete("/{orderId}/item/{itemId}", c.DeleteItem)
	})
}

func (c *Controller) CreateOrder(w http.ResponseWriter, r *http.Request) {
	traceID := newTraceID(w)
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateOrderRequest
	if err := validation.DecodeAndValidate(r.Body, &req, c.validate); err != nil {
		logger.Warn("invalid create order request", zap.Error(err))
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	created, err := c.useCase.CreateOrder(r.Context(), req.ToDomain(c.now()), req.Status)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/orders/%d", created.ID))
	c.writeJSON(w, http.StatusCreated, dto.NewOrderResponse(*created))
}

func (c *Controller) ListOrders(w http.ResponseWriter, r *http.Request) {
	traceID := newTraceID(w)
	logger := c.logger.With(zap.String("traceId", traceID))

	query := r.URL.Query()
	orders, err := c.useCase.ListOrders(r.Context(), query.Get("customer_id"), query.Get("status_name"))
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.NewOrderResponses(orders))
}

func (c *Controller) GetOrder(w http.ResponseWriter, r *http.Request) {
	traceID := newTraceID(w)
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, detail := pathID(r, "orderId")
	if detail != nil {
		c.writeValidationError(w, traceID, "invalid orderId", *detail)
		return
	}

	order, err := c.useCase.GetOrder(r.Context(), orderID)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.NewOrderResponse(*order))
}

func (c *Controller) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	traceID := newTraceID(w)
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, detail := pathID(r, "orderId")
	if detail != nil {
		c.writeValidationError(w, traceID, "invalid orderId", *detail)
		return
	}

	var req dto.UpdateOrderRequest
	if err := validation.DecodeAndValidate(r.Body, &req, c.validate); err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	updated, err := c.useCase.UpdateOrder(r.Context(), orderID, req.ShippingAddress, req.Status)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger.With(zap.Uint("orderId", orderID)))
		return
	}

	c.writeJSON(w, http.StatusOK, dto.NewOrderResponse(*updated))
}

func (c *Controller) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	traceID := newTraceID(w)
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, detail := pathID(r, "orderId")
	if detail != nil {
		c.writeValidationError(w, traceID, "invalid orderId", *detail)
		return
	}

	var req dto.UpdateStatusRequest
	if err := validation.DecodeAndValidate(r.Body, &req, c.validate); err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	updated, err := c.useCase.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger.With(zap.Uint("orderId", orderID)))
		return
	}

	c.writeJSON(w, http.StatusOK, dto.NewOrderResponse(*updated))
}

func (c *Controller) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	traceID := newTraceID(w)
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, detail := pathID(r, "orderId")
	if detail != nil {
		c.writeValidationError(w, traceID, "invalid orderId", *detail)
		return
	}

	if err := c.useCase.DeleteOrder(r.Context(), orderID); err != nil {
		c.handleUseCaseError(w, traceID, err, logger.With(zap.Uint("orderId", orderID)))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
