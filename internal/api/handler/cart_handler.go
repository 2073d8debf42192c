package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/bookstore/internal/api/dto"
	"github.com/RoyceAzure/lab/bookstore/internal/api/response"
	"github.com/RoyceAzure/lab/bookstore/internal/service"
)

type CartHandler struct {
	cartService service.ICartService
}

func NewCartHandler(cartService service.ICartService) *CartHandler {
	if cartService == nil {
		panic("cartService cannot be nil")
	}
	return &CartHandler{cartService: cartService}
}

func (h *CartHandler) ViewCart(w http.ResponseWriter, r *http.Request) {
	customerID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lines, err := h.cartService.ViewCart(r.Context(), customerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, "Cart retrieved successfully", dto.ToCartDTO(lines))
}

// AddToCart 同一本書重複加入會合併數量
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	customerID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.AddToCartDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}
	line, err := h.cartService.AddToCart(r.Context(), customerID, req.BookID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, "Book added to cart", dto.ToCartLineDTO(line))
}

func (h *CartHandler) UpdateCartLine(w http.ResponseWriter, r *http.Request) {
	customerID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lineID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.UpdateCartDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}
	line, err := h.cartService.UpdateCartLine(r.Context(), customerID, lineID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, "Cart updated successfully", dto.ToCartLineDTO(line))
}

func (h *CartHandler) RemoveCartLine(w http.ResponseWriter, r *http.Request) {
	customerID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lineID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.cartService.RemoveCartLine(r.Context(), customerID, lineID); err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, "Item removed from cart", nil)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	customerID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.cartService.ClearCart(r.Context(), customerID); err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, "Cart cleared successfully", nil)
}
