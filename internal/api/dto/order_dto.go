package dto

import (
	"time"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
)

type OrderItemDTO struct {
	ID        uint   `json:"id"`
	BookID    uint   `json:"book_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	LineTotal string `json:"line_total"`
}

type OrderDTO struct {
	ID          uint           `json:"id"`
	UserID      uint           `json:"user_id"`
	OrderNumber string         `json:"order_number"`
	Status      string         `json:"status"`
	TotalPrice  string         `json:"total_price"`
	Items       []OrderItemDTO `json:"items"`
	CreatedAt   time.Time      `json:"created_at"`
}

func ToOrderDTO(o *model.Order) OrderDTO {
	out := OrderDTO{
		ID:          o.ID,
		UserID:      o.UserID,
		OrderNumber: o.OrderNumber,
		Status:      string(o.Status),
		TotalPrice:  o.TotalPrice.StringFixed(2),
		Items:       make([]OrderItemDTO, 0, len(o.Items)),
		CreatedAt:   o.CreatedAt,
	}
	for _, item := range o.Items {
		out.Items = append(out.Items, OrderItemDTO{
			ID:        item.ID,
			BookID:    item.BookID,
			Quantity:  item.Quantity,
			Price:     item.Price.StringFixed(2),
			LineTotal: item.LineTotal().StringFixed(2),
		})
	}
	return out
}

func ToOrderDTOs(orders []model.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		out = append(out, ToOrderDTO(&orders[i]))
	}
	return out
}
