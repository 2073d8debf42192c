package dto

import (
	"time"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/shopspring/decimal"
)

type CreateBookDTO struct {
	Title    string           `json:"title" validate:"required,max=255"`
	Author   string           `json:"author" validate:"required,max=255"`
	Genre    string           `json:"genre" validate:"required,max=100"`
	Price    *decimal.Decimal `json:"price" validate:"required"`
	Quantity *int             `json:"quantity" validate:"required,min=0"`
}

// UpdateBookDTO quantity 可省略，省略時不調整庫存
type UpdateBookDTO struct {
	Title    string           `json:"title" validate:"required,max=255"`
	Author   string           `json:"author" validate:"required,max=255"`
	Genre    string           `json:"genre" validate:"required,max=100"`
	Price    *decimal.Decimal `json:"price" validate:"required"`
	Quantity *int             `json:"quantity" validate:"omitempty,min=0"`
}

type StockChangeDTO struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// 金額一律輸出兩位小數字串
type BookDTO struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Genre     string    `json:"genre"`
	Price     string    `json:"price"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToBookDTO(b *model.Book) BookDTO {
	return BookDTO{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		Genre:     b.Genre,
		Price:     b.Price.StringFixed(2),
		Quantity:  b.Quantity,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func ToBookDTOs(books []model.Book) []BookDTO {
	out := make([]BookDTO, 0, len(books))
	for i := range books {
		out = append(out, ToBookDTO(&books[i]))
	}
	return out
}
