package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPreparing  OrderStatus = "preparing"
	OrderStatusCollecting OrderStatus = "collecting"
	OrderStatusDelivering OrderStatus = "delivering"
	OrderStatusDelivered  OrderStatus = "delivered"
)

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
)

type CustomerInfo struct {
	Name          string        `json:"name"`
	Phone         string        `json:"phone"`
	Address       string        `json:"address"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

type Order struct {
	ID                string       `db:"id" json:"id"`
	UserID            string       `db:"user_id" json:"userId"`
	Items             []CartItem   `json:"items"`
	Total             int64        `db:"total" json:"total"`
	Status            OrderStatus  `db:"status" json:"status"`
	CreatedAt         time.Time    `db:"created_at" json:"createdAt"`
	EstimatedDelivery time.Time    `db:"estimated_delivery" json:"estimatedDelivery"`
	CustomerInfo      CustomerInfo `json:"customerInfo"`
}

// CalculateTotal recomputes Total from the current items. Callers must
// invoke it in the same step as any item mutation so the total never
// disagrees with the items.
func (o *Order) CalculateTotal() {
	var total int64
	for _, item := range o.Items {
		total += item.Price * int64(item.Quantity)
	}
	o.Total = total
}

// Editable reports whether the order may still be changed by the
// customer. Once collection starts the kitchen owns it.
func (o *Order) Editable() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusPreparing
}

// Terminal reports whether the order finished its delivery lifecycle.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered
}
