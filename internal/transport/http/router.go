package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hunter4ass/OWLD/internal/transport/http/handler"
	"github.com/hunter4ass/OWLD/internal/transport/http/middleware"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
}

func RegisterRoutes(app *fiber.App, h *Handlers) {
	authGroup := app.Group("/auth")

	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/refresh", h.Auth.Refresh)

	// the catalog is browsable without an account
	products := app.Group("/products")
	products.Get("", h.Product.ListProducts)
	products.Get("/categories", h.Product.ListCategories)
	products.Get("/:id", h.Product.FindByID)

	api := app.Group("/api", middleware.NewAuthMiddleware())

	api.Get("/me", h.Auth.GetMe)
	api.Patch("/me", h.Auth.UpdateProfile)
	api.Post("/logout", h.Auth.Logout)

	cart := api.Group("/cart")
	cart.Get("", h.Cart.GetCart)
	cart.Post("/items", h.Cart.AddItem)
	cart.Patch("/items/:id", h.Cart.UpdateQuantity)
	cart.Delete("/items/:id", h.Cart.RemoveItem)

	orders := api.Group("/orders")
	orders.Post("", h.Order.Checkout)
	orders.Get("", h.Order.ListOrders)
	orders.Get("/:id", h.Order.GetOrder)
	orders.Get("/:id/status", h.Order.OrderStatus)
	orders.Patch("/:id", h.Order.EditOrder)
	orders.Post("/:id/reorder", h.Order.Reorder)
	orders.Post("/:id/track", h.Order.Track)
}
