package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/bookstore/internal/api/dto"
	"github.com/RoyceAzure/lab/bookstore/internal/api/response"
	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/RoyceAzure/lab/bookstore/internal/service"
)

type BookHandler struct {
	bookService service.IBookService
}

func NewBookHandler(bookService service.IBookService) *BookHandler {
	if bookService == nil {
		panic("bookService cannot be nil")
	}
	return &BookHandler{bookService: bookService}
}

// ListBooks 支援 ?genre= 與 ?author= 精確篩選
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	books, err := h.bookService.ListBooks(r.Context(), model.BookFilter{
		Genre:  q.Get("genre"),
		Author: q.Get("author"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, "Books retrieved successfully", dto.ToBookDTOs(books))
}

func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	book, err := h.bookService.GetBook(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, "Book retrieved successfully", dto.ToBookDTO(book))
}

func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBookDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}
	book, err := h.bookService.CreateBook(r.Context(), service.BookInput{
		Title:    req.Title,
		Author:   req.Author,
		Genre:    req.Genre,
		Price:    *req.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusCreated, "Book created successfully", dto.ToBookDTO(book))
}

func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.UpdateBookDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}
	book, err := h.bookService.UpdateBook(r.Context(), id, service.BookInput{
		Title:    req.Title,
		Author:   req.Author,
		Genre:    req.Genre,
		Price:    *req.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, "Book updated successfully", dto.ToBookDTO(book))
}

func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.bookService.DeleteBook(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, "Book deleted successfully", nil)
}
