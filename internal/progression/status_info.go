package progression

import (
	"fmt"
	"math"
	"time"

	"github.com/hunter4ass/OWLD/internal/domain"
)

// StatusInfo is the fixed presentation record of a delivery status.
type StatusInfo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Progress    int    `json:"progress"`
}

var statusInfos = map[domain.OrderStatus]StatusInfo{
	domain.OrderStatusPending: {
		Title:       "Заказ оформлен",
		Description: "Ваш заказ принят и ожидает обработки",
		Progress:    0,
	},
	domain.OrderStatusPreparing: {
		Title:       "Готовится",
		Description: "Ваш заказ готовится на кухне",
		Progress:    25,
	},
	domain.OrderStatusCollecting: {
		Title:       "Собирается",
		Description: "Заказ собирается для доставки",
		Progress:    50,
	},
	domain.OrderStatusDelivering: {
		Title:       "В пути",
		Description: "Курьер везет ваш заказ",
		Progress:    75,
	},
	domain.OrderStatusDelivered: {
		Title:       "Доставлен",
		Description: "Заказ успешно доставлен",
		Progress:    100,
	},
}

// GetStatusInfo returns the display record for a status. The second value
// is false for unknown statuses.
func GetStatusInfo(status domain.OrderStatus) (StatusInfo, bool) {
	info, ok := statusInfos[status]
	return info, ok
}

// EstimatedTime renders the remaining delivery time against the current
// wall clock.
func EstimatedTime(order domain.Order) string {
	return EstimatedTimeAt(order, time.Now())
}

// EstimatedTimeAt rounds the remaining time up to whole minutes, or
// returns the due-now sentinel when the estimate already passed.
func EstimatedTimeAt(order domain.Order, now time.Time) string {
	diff := order.EstimatedDelivery.Sub(now)
	if diff <= 0 {
		return "Скоро"
	}

	minutes := int64(math.Ceil(diff.Minutes()))
	return fmt.Sprintf("%d мин", minutes)
}
