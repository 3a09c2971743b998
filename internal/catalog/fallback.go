package catalog

import "github.com/hunter4ass/OWLD/internal/domain"

// fallbackProducts is the bundled dataset served whenever the remote
// catalog is unreachable, so the storefront never shows an empty shelf.
var fallbackProducts = []domain.Product{
	{ID: 1, Name: "Бананы", Description: "Спелые бананы, 1 кг", Image: "/images/bananas.jpg", Price: 129, Category: "fruits", InStock: true},
	{ID: 2, Name: "Яблоки Голден", Description: "Сладкие яблоки, 1 кг", Image: "/images/apples.jpg", Price: 149, Category: "fruits", InStock: true},
	{ID: 3, Name: "Апельсины", Description: "Сочные апельсины, 1 кг", Image: "/images/oranges.jpg", Price: 189, Category: "fruits", InStock: true},
	{ID: 4, Name: "Огурцы", Description: "Свежие огурцы, 500 г", Image: "/images/cucumbers.jpg", Price: 99, Category: "vegetables", InStock: true},
	{ID: 5, Name: "Помидоры черри", Description: "Черри на ветке, 250 г", Image: "/images/cherry.jpg", Price: 159, Category: "vegetables", InStock: true},
	{ID: 6, Name: "Картофель", Description: "Молодой картофель, 1 кг", Image: "/images/potatoes.jpg", Price: 79, Category: "vegetables", InStock: true},
	{ID: 7, Name: "Молоко 3.2%", Description: "Пастеризованное, 930 мл", Image: "/images/milk.jpg", Price: 109, Category: "dairy", InStock: true},
	{ID: 8, Name: "Сыр Гауда", Description: "Нарезка, 150 г", Image: "/images/gouda.jpg", Price: 219, Category: "dairy", InStock: true},
	{ID: 9, Name: "Йогурт клубничный", Description: "Питьевой, 290 г", Image: "/images/yogurt.jpg", Price: 89, Category: "dairy", InStock: true},
	{ID: 10, Name: "Чипсы с солью", Description: "Хрустящие, 150 г", Image: "/images/chips.jpg", Price: 179, Category: "snacks", InStock: true},
	{ID: 11, Name: "Шоколад тёмный", Description: "72% какао, 90 г", Image: "/images/chocolate.jpg", Price: 139, Category: "snacks", InStock: true},
	{ID: 12, Name: "Орехи микс", Description: "Жареные без соли, 200 г", Image: "/images/nuts.jpg", Price: 299, Category: "snacks", InStock: true},
	{ID: 13, Name: "Вода негазированная", Description: "1.5 л", Image: "/images/water.jpg", Price: 59, Category: "beverages", InStock: true},
	{ID: 14, Name: "Сок апельсиновый", Description: "Прямой отжим, 1 л", Image: "/images/juice.jpg", Price: 199, Category: "beverages", InStock: true},
	{ID: 15, Name: "Холодный кофе", Description: "Латте в банке, 250 мл", Image: "/images/coffee.jpg", Price: 129, Category: "beverages", InStock: true},
}

// FallbackProducts returns a copy of the bundled dataset.
func FallbackProducts() []domain.Product {
	out := make([]domain.Product, len(fallbackProducts))
	copy(out, fallbackProducts)
	return out
}
