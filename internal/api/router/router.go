package router

import (
	"net/http"

	"github.com/RoyceAzure/lab/bookstore/internal/api"
	m "github.com/RoyceAzure/lab/bookstore/internal/api/middleware"
	"github.com/RoyceAzure/lab/bookstore/internal/constants"
	"github.com/RoyceAzure/lab/bookstore/internal/pkg/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

/*
checkoutLimiter 只套用在 POST /api/orders，為 nil 時不限流
*/
func SetupRouter(server *api.Server, auth m.Authenticator, checkoutLimiter ratelimit.Limiter, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.AuthPayloadMiddleware(auth))
	r.Use(m.LoggerMiddleware(logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", server.HealthHandler.Health)
		r.Post("/register", server.AuthHandler.Register)
		r.Post("/login", server.AuthHandler.Login)

		// 需登入
		r.Group(func(r chi.Router) {
			r.Use(m.AuthMiddleware)

			r.Post("/logout", server.AuthHandler.Logout)
			r.Put("/profile", server.UserHandler.UpdateProfile)
			r.Get("/books", server.BookHandler.ListBooks)
			r.Get("/books/{id}", server.BookHandler.GetBook)

			r.Group(func(r chi.Router) {
				r.Use(m.RequireRole(constants.RoleAdmin))

				r.Post("/books", server.BookHandler.CreateBook)
				r.Put("/books/{id}", server.BookHandler.UpdateBook)
				r.Delete("/books/{id}", server.BookHandler.DeleteBook)

				r.Route("/inventory", func(r chi.Router) {
					r.Get("/", server.InventoryHandler.ListInventory)
					r.Post("/{id}/add-stock", server.InventoryHandler.AddStock)
					r.Post("/{id}/reduce-stock", server.InventoryHandler.ReduceStock)
					r.Delete("/{id}", server.InventoryHandler.DeleteBook)
				})

				r.Route("/users", func(r chi.Router) {
					r.Get("/", server.UserHandler.ListUsers)
					r.Post("/", server.UserHandler.CreateUser)
					r.Get("/{id}", server.UserHandler.GetUser)
					r.Put("/{id}", server.UserHandler.UpdateUser)
					r.Delete("/{id}", server.UserHandler.DeleteUser)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(m.RequireRole(constants.RoleCustomer))

				r.Route("/cart", func(r chi.Router) {
					r.Get("/", server.CartHandler.ViewCart)
					r.Post("/", server.CartHandler.AddToCart)
					r.Delete("/", server.CartHandler.ClearCart)
					r.Put("/{id}", server.CartHandler.UpdateCartLine)
					r.Delete("/{id}", server.CartHandler.RemoveCartLine)
				})

				r.Route("/orders", func(r chi.Router) {
					placeOrder := http.Handler(http.HandlerFunc(server.OrderHandler.PlaceOrder))
					if checkoutLimiter != nil {
						placeOrder = m.RateLimitMiddleware(checkoutLimiter, m.KeyByUserOrIP)(placeOrder)
					}
					r.Method(http.MethodPost, "/", placeOrder)
					r.Get("/", server.OrderHandler.ListOrders)
					r.Get("/{id}", server.OrderHandler.GetOrder)
				})
			})
		})
	})

	// 在設置完所有路由後打印路由樹
	if err := chi.Walk(r, func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		logger.Debug().Str("method", method).Str("route", route).Msg("route registered")
		return nil
	}); err != nil {
		logger.Warn().Err(err).Msg("walk routes failed")
	}
	return r
}
