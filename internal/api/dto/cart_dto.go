package dto

import (
	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/shopspring/decimal"
)

type AddToCartDTO struct {
	BookID   uint `json:"book_id" validate:"required"`
	Quantity int  `json:"quantity" validate:"required,min=1"`
}

type UpdateCartDTO struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type CartLineDTO struct {
	ID        uint     `json:"id"`
	BookID    uint     `json:"book_id"`
	Quantity  int      `json:"quantity"`
	LineTotal string   `json:"line_total"`
	Book      *BookDTO `json:"book"`
}

type CartDTO struct {
	Items []CartLineDTO `json:"items"`
	Total string        `json:"total"`
}

func ToCartLineDTO(l *model.CartLine) CartLineDTO {
	out := CartLineDTO{
		ID:        l.ID,
		BookID:    l.BookID,
		Quantity:  l.Quantity,
		LineTotal: decimal.Zero.StringFixed(2),
	}
	if l.Book != nil {
		book := ToBookDTO(l.Book)
		out.Book = &book
		out.LineTotal = lineTotal(l).StringFixed(2)
	}
	return out
}

// ToCartDTO 小計以目前書價估算，實際金額以結帳時為準
func ToCartDTO(lines []model.CartLine) CartDTO {
	out := CartDTO{Items: make([]CartLineDTO, 0, len(lines))}
	total := decimal.Zero
	for i := range lines {
		out.Items = append(out.Items, ToCartLineDTO(&lines[i]))
		total = total.Add(lineTotal(&lines[i]))
	}
	out.Total = total.Round(2).StringFixed(2)
	return out
}

func lineTotal(l *model.CartLine) decimal.Decimal {
	if l.Book == nil {
		return decimal.Zero
	}
	return l.Book.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
