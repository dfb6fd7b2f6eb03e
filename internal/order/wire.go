package order

import (
	"database/sql"

	"go.uber.org/zap"

	"orders/internal/config"
	"orders/internal/infrastructure/metrics"
	"orders/internal/order/controller"
	orderrepo "orders/internal/order/repository"
	"orders/internal/order/service"
	"orders/internal/order/usecase"
	"orders/internal/validation"
)

func NewModule(db *sql.DB, cfg *config.Config, publisher usecase.EventPublisher, m *metrics.Metrics, logger *zap.Logger) *controller.Controller {
	orderRepo := orderrepo.NewSQLOrderRepository(db)
	itemRepo := orderrepo.NewSQLOrderItemRepository(db)

	orderSvc := service.NewOrderService(
		db,
		orderRepo,
		itemRepo,
		logger,
		cfg.Order.TxTimeout,
	)

	uc := usecase.NewOrderUseCase(
		orderRepo,
		itemRepo,
		orderSvc,
		publisher,
		m,
		logger,
	)

	return controller.NewController(uc, validation.New(), logger)
}
