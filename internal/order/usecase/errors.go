package usecase

import (
	"fmt"

	"orders/internal/domain"
	apperrors "orders/internal/errors"
)

func notMutableError(order *domain.Order) error {
	return apperrors.NewConflictError(fmt.Sprintf("Order ID %d cannot be updated in its current status", order.ID))
}

// internalError passes typed errors through and wraps anything else, which
// can only be a store or driver failure.
func internalError(message string, err error) error {
	if _, ok := apperrors.IsNotFoundError(err); ok {
		return err
	}
	if _, ok := apperrors.IsConflictError(err); ok {
		return err
	}
	if _, ok := apperrors.IsValidationError(err); ok {
		return err
	}
	if _, ok := apperrors.IsInternalError(err); ok {
		return err
	}
	return apperrors.NewInternalError(message, err)
}
