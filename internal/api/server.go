package api

import "github.com/RoyceAzure/lab/bookstore/internal/api/handler"

type Server struct {
	AuthHandler      *handler.AuthHandler
	BookHandler      *handler.BookHandler
	InventoryHandler *handler.InventoryHandler
	CartHandler      *handler.CartHandler
	OrderHandler     *handler.OrderHandler
	UserHandler      *handler.UserHandler
	HealthHandler    *handler.HealthHandler
}

func NewServer(
	authHandler *handler.AuthHandler,
	bookHandler *handler.BookHandler,
	inventoryHandler *handler.InventoryHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	userHandler *handler.UserHandler,
	healthHandler *handler.HealthHandler,
) *Server {
	return &Server{
		AuthHandler:      authHandler,
		BookHandler:      bookHandler,
		InventoryHandler: inventoryHandler,
		CartHandler:      cartHandler,
		OrderHandler:     orderHandler,
		UserHandler:      userHandler,
		HealthHandler:    healthHandler,
	}
}
