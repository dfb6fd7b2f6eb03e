package controller

import (
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"orders/internal/domain"
	"orders/internal/dto"
	apperrors "orders/internal/errors"
	"orders/internal/validation"
)

func (c *Controller) ListItems(w http.ResponseWriter, r *http.Request) {
	traceID := newTraceID(w)
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, detail := pathID(r, "orderId")
	if detail != nil {
		c.writeValidationError(w, traceID, "invalid orderId", *detail)
		return
	}

	filter, details := itemFilter(r)
	if len(details) > 0 {
		c.writeValidationError(w, traceID, "invalid query parameters", details...)
		return
	}

	items, err := c.useCase.ListItems(r.Context(), orderID, filter)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger.With(zap.Uint("orderId", orderID)))
		return
	}

	c.writeJSON(w, http.StatusOK, dto.NewItemResponses(items))
}

func (c *Controller) AddItem(w http.ResponseWriter, r *http.Request) {
	traceID := newTraceID(w)
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, detail := pathID(r, "orderId")
	if detail != nil {
		c.writeValidationError(w, traceID, "invalid orderId", *detail)
		return
	}

	var req dto.ItemRequest
	if err := validation.DecodeAndValidate(r.Body, &req, c.validate); err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	added, err := c.useCase.AddItem(r.Context(), orderID, req.ToDomain(orderID))
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger.With(zap.Uint("orderId", orderID)))
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/orders/%d/item/%d", orderID, added.ID))
	c.writeJSON(w, http.StatusCreated, dto.NewItemResponse(*added))
}

func (c *Controller) GetItem(w http.ResponseWriter, r *http.Request) {
	traceID := newTraceID(w)
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, itemID, details := itemPath(r)
	if len(details) > 0 {
		c.writeValidationError(w, traceID, "invalid path parameters", details...)
		return
	}

	item, err := c.useCase.GetItem(r.Context(), orderID, itemID)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.NewItemResponse(*item))
}

func (c *Controller) UpdateItem(w http.ResponseWriter, r *http.Request) {
	traceID := newTraceID(w)
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, itemID, details := itemPath(r)
	if len(details) > 0 {
		c.writeValidationError(w, traceID, "invalid path parameters", details...)
		return
	}

	var req dto.UpdateItemRequest
	if err := validation.DecodeAndValidate(r.Body, &req, c.validate); err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	updated, err := c.useCase.UpdateItem(r.Context(), orderID, itemID, int(*req.Quantity), float64(*req.Price))
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger.With(zap.Uint("orderId", orderID), zap.Uint("itemId", itemID)))
		return
	}

	c.writeJSON(w, http.StatusOK, dto.NewItemResponse(*updated))
}

func (c *Controller) DeleteItem(w http.ResponseWriter, r *http.Request) {
	traceID := newTraceID(w)
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, itemID, details := itemPath(r)
	if len(details) > 0 {
		c.writeValidationError(w, traceID, "invalid path parameters", details...)
		return
	}

	if err := c.useCase.DeleteItem(r.Context(), orderID, itemID); err != nil {
		c.handleUseCaseError(w, traceID, err, logger.With(zap.Uint("orderId", orderID), zap.Uint("itemId", itemID)))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func itemPath(r *http.Request) (uint, uint, []apperrors.ValidationDetail) {
	var details []apperrors.ValidationDetail

	orderID, detail := pathID(r, "orderId")
	if detail != nil {
		details = append(details, *detail)
	}
	itemID, detail := pathID(r, "itemId")
	if detail != nil {
		details = append(details, *detail)
	}
	return orderID, itemID, details
}

// itemFilter reads the optional product_id, quantity and price query
// parameters.
func itemFilter(r *http.Request) (domain.ItemFilter, []apperrors.ValidationDetail) {
	var (
		filter  domain.ItemFilter
		details []apperrors.ValidationDetail
	)
	query := r.URL.Query()

	if value := query.Get("product_id"); value != "" {
		filter.ProductID = &value
	}

	if value := query.Get("quantity"); value != "" {
		quantity, err := strconv.Atoi(value)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{Field: "quantity", Message: "quantity must be an integer"})
		} else {
			filter.Quantity = &quantity
		}
	}

	if value := query.Get("price"); value != "" {
		price, err := strconv.ParseFloat(value, 64)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{Field: "price", Message: "price must be a number"})
		} else {
			filter.Price = &price
		}
	}

	return filter, details
}
