package handler

import (
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/bookstore/internal/api/dto"
	"github.com/RoyceAzure/lab/bookstore/internal/api/response"
	"github.com/RoyceAzure/lab/bookstore/internal/service"
	"github.com/rs/zerolog"
)

type OrderHandler struct {
	checkoutService service.ICheckoutService
	orderService    service.IOrderService
}

func NewOrderHandler(checkoutService service.ICheckoutService, orderService service.IOrderService) *OrderHandler {
	if checkoutService == nil || orderService == nil {
		panic("order handler services cannot be nil")
	}
	return &OrderHandler{
		checkoutService: checkoutService,
		orderService:    orderService,
	}
}

/*
PlaceOrder 以購物車內容成立訂單
訂單已commit但清空購物車失敗時，仍回傳201
*/
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	customerID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.checkoutService.PlaceOrder(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, service.ErrCartClearFailure) && result != nil && result.Order != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).
				Str("order_number", result.Order.OrderNumber).
				Msg("order committed but cart not cleared")
			response.SuccessJSON(w, http.StatusCreated, "Order placed successfully", dto.ToOrderDTO(result.Order))
			return
		}
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusCreated, "Order placed successfully", dto.ToOrderDTO(result.Order))
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	customerID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	orders, err := h.orderService.ListOrders(r.Context(), customerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, "Orders retrieved successfully", dto.ToOrderDTOs(orders))
}

// GetOrder 其他人的訂單一律回 404
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	customerID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	order, err := h.orderService.GetOrder(r.Context(), customerID, orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, "Order retrieved successfully", dto.ToOrderDTO(order))
}
