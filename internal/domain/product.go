package domain

type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Price       int64  `json:"price"`
	Category    string `json:"category"`
	InStock     bool   `json:"inStock"`
}

type CartItem struct {
	Product
	Quantity int32 `json:"quantity"`
}

type Cart struct {
	Items []CartItem `json:"items"`
}

func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

func (c *Cart) TotalItems() int32 {
	var count int32
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}
