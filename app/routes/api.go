package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/shopfront/app/controllers"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/ctx"
	"github.com/shashiranjanraj/shopfront/pkg/middleware"
	"github.com/shashiranjanraj/shopfront/pkg/rbac"
	"github.com/shashiranjanraj/shopfront/pkg/router"
	"github.com/shashiranjanraj/shopfront/pkg/storage"
)

// RegisterAPI mounts the catalogue, user and order endpoints under prefix.
//
// Reads of products, categories and orders are public, as are login and
// registration. Placing an order needs any signed-in user; a user may read
// their own profile. Everything else is admin only.
func RegisterAPI(r *router.Router, prefix string, store *repositories.Store, disk storage.Disk) {
	ctx.SetErrorMapper(controllers.MapError)

	categories := controllers.NewCategoryController(services.NewCategoryService(store))
	products := controllers.NewProductController(services.NewProductService(store, disk))
	users := controllers.NewUserController(services.NewUserService(store))
	orders := controllers.NewOrderController(services.NewOrderService(store))

	api := r.Group(prefix)
	admin := api.Group("", middleware.Authenticate, rbac.Admin)

	// Categories
	api.Get("/categories", "categories.index", ctx.Wrap(categories.Index))
	api.Get("/categories/{id}", "categories.show", ctx.Wrap(categories.Show))
	admin.Post("/categories", "categories.store", ctx.Wrap(categories.Store))
	admin.Put("/categories/{id}", "categories.update", ctx.Wrap(categories.Update))
	admin.Delete("/categories/{id}", "categories.destroy", ctx.Wrap(categories.Destroy))

	// Products
	api.Get("/products", "products.index", ctx.Wrap(products.Index))
	api.Get("/products/{id}", "products.show", ctx.Wrap(products.Show))
	api.Get("/products/get/count", "products.count", ctx.Wrap(products.Count))
	api.Get("/products/get/featured", "products.featured", ctx.Wrap(products.Featured))
	api.Get("/products/get/featured/{count}", "products.featured.limit", ctx.Wrap(products.Featured))
	admin.Post("/products", "products.store", ctx.Wrap(products.Store))
	admin.Put("/products/{id}", "products.update", ctx.Wrap(products.Update))
	admin.Put("/products/gallery-images/{id}", "products.gallery", ctx.Wrap(products.Gallery))
	admin.Delete("/products/{id}", "products.destroy", ctx.Wrap(products.Destroy))

	// Users
	api.Post("/users/login", "users.login", ctx.Wrap(users.Login))
	api.Post("/users/register", "users.register", ctx.Wrap(users.Register))
	api.Get("/users/{id}", "users.show", ctx.Wrap(users.Show),
		middleware.Authenticate, rbac.SelfOrAdmin(func(r *http.Request) string { return chi.URLParam(r, "id") }))
	admin.Get("/users", "users.index", ctx.Wrap(users.Index))
	admin.Get("/users/get/count", "users.count", ctx.Wrap(users.Count))
	admin.Post("/users", "users.store", ctx.Wrap(users.Store))
	admin.Delete("/users/{id}", "users.destroy", ctx.Wrap(users.Destroy))

	// Orders
	api.Get("/orders", "orders.index", ctx.Wrap(orders.Index))
	api.Get("/orders/{id}", "orders.show", ctx.Wrap(orders.Show))
	api.Get("/orders/get/totalsales", "orders.totalsales", ctx.Wrap(orders.TotalSales))
	api.Get("/orders/get/count", "orders.count", ctx.Wrap(orders.Count))
	api.Get("/orders/get/userorders/{userId}", "orders.user", ctx.Wrap(orders.UserOrders))
	api.Post("/orders", "orders.store", ctx.Wrap(orders.Store), middleware.Authenticate)
	admin.Put("/orders/{id}", "orders.update", ctx.Wrap(orders.Update))
	admin.Delete("/orders/{id}", "orders.destroy", ctx.Wrap(orders.Destroy))
}
