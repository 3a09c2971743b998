package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/hunter4ass/OWLD/internal/domain"
	"github.com/hunter4ass/OWLD/pkg/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListUnfinished(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	Update(ctx context.Context, order *domain.Order) error
}

type orderRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewOrderRepository(pool *pgxpool.Pool, logger *zap.Logger) OrderRepository {
	return &orderRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("repository/order_repo"),
	}
}

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", order.ID),
		attribute.String("user_id", order.UserID),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)
		if err := tx.Rollback(shutdownCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logging.Warn(shutdownCtx, r.logger, "Error rolling back transaction", zap.Error(err))
		}
	}()

	query := `
		INSERT INTO orders (id, user_id, total, status, created_at, estimated_delivery,
			customer_name, customer_phone, customer_address, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`

	_, err = tx.Exec(ctx, query,
		order.ID, order.UserID, order.Total, order.Status,
		order.CreatedAt, order.EstimatedDelivery,
		order.CustomerInfo.Name, order.CustomerInfo.Phone,
		order.CustomerInfo.Address, order.CustomerInfo.PaymentMethod,
	)
	if err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Failed to insert order",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)

		return fmt.Errorf("error creating order: %w", err)
	}

	if err := r.insertItems(ctx, tx, order.ID, order.Items); err != nil {
		span.RecordError(err)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		logging.Error(ctx, r.logger, "Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", id),
	)

	query := `
		SELECT id, user_id, total, status, created_at, estimated_delivery,
			customer_name, customer_phone, customer_address, payment_method
		FROM orders
		WHERE id = $1;
	`

	var order domain.Order
	if err := r.pool.QueryRow(ctx, query, id).
		Scan(&order.ID, &order.UserID, &order.Total, &order.Status,
			&order.CreatedAt, &order.EstimatedDelivery,
			&order.CustomerInfo.Name, &order.CustomerInfo.Phone,
			&order.CustomerInfo.Address, &order.CustomerInfo.PaymentMethod,
		); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Failed to get order",
			zap.String("order_id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error getting order: %w", err)
	}

	items, err := r.itemsOf(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	order.Items = items

	return &order, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ListByUser")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
	)

	query := `
		SELECT id, user_id, total, status, created_at, estimated_delivery,
			customer_name, customer_phone, customer_address, payment_method
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC;
	`

	return r.queryOrders(ctx, query, userID)
}

// ListUnfinished returns every order that has not reached the terminal
// status yet. Used on startup to resume progression.
func (r *orderRepo) ListUnfinished(ctx context.Context) ([]domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ListUnfinished")
	defer span.End()

	query := `
		SELECT id, user_id, total, status, created_at, estimated_delivery,
			customer_name, customer_phone, customer_address, payment_method
		FROM orders
		WHERE status <> 'delivered'
		ORDER BY created_at;
	`

	return r.queryOrders(ctx, query)
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.UpdateStatus")
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", id),
		attribute.String("status", string(status)),
	)

	query := `
		UPDATE orders
		SET status = $2
		WHERE id = $1;
	`

	commandTag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Failed to update order status",
			zap.String("order_id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error updating order status: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// Update rewrites the editable parts of an order record: customer info,
// total and the item snapshot are replaced in one transaction. Status is
// left untouched, it advances only through UpdateStatus.
func (r *orderRepo) Update(ctx context.Context, order *domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", order.ID),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)
		if err := tx.Rollback(shutdownCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logging.Warn(shutdownCtx, r.logger, "Error rolling back transaction", zap.Error(err))
		}
	}()

	// status is owned by the progression engine and only ever moves through
	// UpdateStatus; writing the caller's snapshot here could roll it back.
	query := `
		UPDATE orders
		SET total = $2,
			customer_name = $3, customer_phone = $4,
			customer_address = $5, payment_method = $6
		WHERE id = $1;
	`

	commandTag, err := tx.Exec(ctx, query,
		order.ID, order.Total,
		order.CustomerInfo.Name, order.CustomerInfo.Phone,
		order.CustomerInfo.Address, order.CustomerInfo.PaymentMethod,
	)
	if err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Failed to update order",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)

		return fmt.Errorf("error updating order: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("error replacing order items: %w", err)
	}

	if err := r.insertItems(ctx, tx, order.ID, order.Items); err != nil {
		span.RecordError(err)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		logging.Error(ctx, r.logger, "Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *orderRepo) insertItems(ctx context.Context, tx pgx.Tx, orderID string, items []domain.CartItem) error {
	query := `
		INSERT INTO order_items (order_id, product_id, name, description, image, price, category, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`

	for _, item := range items {
		_, err := tx.Exec(ctx, query,
			orderID, item.ID, item.Name, item.Description,
			item.Image, item.Price, item.Category, item.Quantity,
		)
		if err != nil {
			logging.Error(
				ctx,
				r.logger,
				"Failed to insert order item",
				zap.String("order_id", orderID),
				zap.Int64("product_id", item.ID),
				zap.Error(err),
			)

			return fmt.Errorf("error inserting order item: %w", err)
		}
	}

	return nil
}

func (r *orderRepo) itemsOf(ctx context.Context, orderID string) ([]domain.CartItem, error) {
	query := `
		SELECT product_id, name, description, image, price, category, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY id;
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("error selecting order items: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Description,
			&item.Image, &item.Price, &item.Category, &item.Quantity,
		); err != nil {
			return nil, fmt.Errorf("error scanning order item: %w", err)
		}
		item.InStock = true
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return items, nil
}

func (r *orderRepo) queryOrders(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		logging.Error(
			ctx,
			r.logger,
			"Failed to query orders",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error selecting orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID, &order.UserID, &order.Total, &order.Status,
			&order.CreatedAt, &order.EstimatedDelivery,
			&order.CustomerInfo.Name, &order.CustomerInfo.Phone,
			&order.CustomerInfo.Address, &order.CustomerInfo.PaymentMethod,
		); err != nil {
			return nil, fmt.Errorf("error scanning order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	for i := range orders {
		items, err := r.itemsOf(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}
