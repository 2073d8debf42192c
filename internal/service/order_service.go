package service

import (
	"context"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
)

type IOrderService interface {
	ListOrders(ctx context.Context, customerID uint) ([]model.Order, error)
	GetOrder(ctx context.Context, customerID, orderID uint) (*model.Order, error)
}

var _ IOrderService = (*OrderService)(nil)

// 訂單的讀取端，寫入只會經過 CheckoutService
type OrderService struct {
	orderRepo db.IOrderRepository
}

func NewOrderService(orderRepo db.IOrderRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo}
}

func (o *OrderService) ListOrders(ctx context.Context, customerID uint) ([]model.Order, error) {
	return o.orderRepo.ListOrdersByUserID(ctx, customerID)
}

// 不屬於該顧客的訂單回傳 ErrOrderNotFound
func (o *OrderService) GetOrder(ctx context.Context, customerID, orderID uint) (*model.Order, error) {
	order, err := o.orderRepo.GetUserOrder(ctx, customerID, orderID)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	return order, nil
}
