// Package kafka hosts the notifier: a consumer group on the order events
// topic that logs each lifecycle change per user. Malformed messages are
// skipped so a bad producer can never wedge the group.
package kafka

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"github.com/hunter4ass/OWLD/internal/domain"
	"github.com/hunter4ass/OWLD/internal/progression"
	"github.com/hunter4ass/OWLD/pkg/kafka"
	"github.com/hunter4ass/OWLD/pkg/logging"
	"github.com/hunter4ass/OWLD/pkg/money"
	"go.uber.org/zap"
)

type Notifier struct {
	logger *zap.Logger
}

func NewNotifier(logger *zap.Logger) *Notifier {
	return &Notifier{logger: logger}
}

func (n *Notifier) Start(ctx context.Context, brokers []string, topic string) {
	consumerGroup := kafka.NewConsumerGroup(
		brokers,
		"order-notifier-group",
		[]string{topic},
		n.processMessage,
		n.logger,
	)

	consumerGroup.Run(ctx)
}

func (n *Notifier) processMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	type eventWrapper struct {
		Event   string          `json:"event"`
		Payload json.RawMessage `json:"payload"`
	}

	var wrapper eventWrapper
	if err := json.Unmarshal(msg.Value, &wrapper); err != nil {
		logging.Warn(
			ctx,
			n.logger,
			"Skipping malformed event envelope",
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)

		return nil
	}

	switch wrapper.Event {
	case "OrderCreated":
		var event domain.OrderCreatedEvent
		if err := json.Unmarshal(wrapper.Payload, &event); err != nil {
			logging.Warn(ctx, n.logger, "Skipping malformed OrderCreated payload", zap.Error(err))
			return nil
		}

		return n.handleOrderCreated(ctx, event)
	case "OrderStatusChanged":
		var event domain.OrderStatusChangedEvent
		if err := json.Unmarshal(wrapper.Payload, &event); err != nil {
			logging.Warn(ctx, n.logger, "Skipping malformed OrderStatusChanged payload", zap.Error(err))
			return nil
		}

		return n.handleStatusChanged(ctx, event)
	default:
		logging.Debug(
			ctx,
			n.logger,
			"Ignored event type",
			zap.String("event", wrapper.Event),
		)
	}

	return nil
}

func (n *Notifier) handleOrderCreated(ctx context.Context, event domain.OrderCreatedEvent) error {
	logging.Info(
		ctx,
		n.logger,
		"Заказ принят",
		zap.String("order_id", event.OrderID),
		zap.String("user_id", event.UserID),
		zap.String("total", money.Format(event.Total)),
	)

	return nil
}

func (n *Notifier) handleStatusChanged(ctx context.Context, event domain.OrderStatusChangedEvent) error {
	info, ok := progression.GetStatusInfo(event.Status)
	if !ok {
		logging.Warn(
			ctx,
			n.logger,
			"Unknown order status in event",
			zap.String("order_id", event.OrderID),
			zap.String("status", string(event.Status)),
		)

		return nil
	}

	logging.Info(
		ctx,
		n.logger,
		info.Title,
		zap.String("order_id", event.OrderID),
		zap.String("user_id", event.UserID),
		zap.String("description", info.Description),
		zap.Int("progress", info.Progress),
	)

	return nil
}
