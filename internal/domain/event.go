package domain

type OrderCreatedEvent struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	Total   int64  `json:"total"`
}

type OrderStatusChangedEvent struct {
	OrderID string      `json:"order_id"`
	UserID  string      `json:"user_id"`
	Status  OrderStatus `json:"status"`
}
