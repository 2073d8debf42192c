package handler

import (
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/bookstore/internal/api/dto"
	"github.com/RoyceAzure/lab/bookstore/internal/api/response"
	"github.com/RoyceAzure/lab/bookstore/internal/service"
)

type InventoryHandler struct {
	inventoryService service.IInventoryService
}

func NewInventoryHandler(inventoryService service.IInventoryService) *InventoryHandler {
	if inventoryService == nil {
		panic("inventoryService cannot be nil")
	}
	return &InventoryHandler{inventoryService: inventoryService}
}

func (h *InventoryHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	books, err := h.inventoryService.ListInventory(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, "Inventory retrieved successfully", dto.ToBookDTOs(books))
}

func (h *InventoryHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.StockChangeDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}
	book, err := h.inventoryService.AddStock(r.Context(), id, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, "Stock added successfully", dto.ToBookDTO(book))
}

// ReduceStock 庫存不足回 400，與結帳的 409 不同
func (h *InventoryHandler) ReduceStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.StockChangeDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}
	book, err := h.inventoryService.ReduceStock(r.Context(), id, req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrInsufficientStock) {
			response.ErrorJSON(w, http.StatusBadRequest, "Not enough stock available")
			return
		}
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, "Stock reduced successfully", dto.ToBookDTO(book))
}

func (h *InventoryHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.inventoryService.DeleteBook(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, "Book removed from inventory", nil)
}
