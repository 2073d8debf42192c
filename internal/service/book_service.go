package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
	"github.com/shopspring/decimal"
)

type BookInput struct {
	Title  string
	Author string
	Genre  string
	Price  decimal.Decimal
	// Quantity 為 nil 時不調整庫存
	Quantity *int
}

func (in BookInput) validate() error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Author) == "" || strings.TrimSpace(in.Genre) == "" {
		return fmt.Errorf("%w: title, author and genre are required", ErrInvalidArgument)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price must be at least 0", ErrInvalidArgument)
	}
	if in.Quantity != nil && *in.Quantity < 0 {
		return fmt.Errorf("%w: quantity must be at least 0", ErrInvalidArgument)
	}
	return nil
}

type IBookService interface {
	CreateBook(ctx context.Context, in BookInput) (*model.Book, error)
	GetBook(ctx context.Context, id uint) (*model.Book, error)
	ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error)
	UpdateBook(ctx context.Context, id uint, in BookInput) (*model.Book, error)
	DeleteBook(ctx context.Context, id uint) error
}

var _ IBookService = (*BookService)(nil)

// bookCacheInvalidator 快取層實作，transaction 內的寫入不經過快取，commit 後要另外清除
type bookCacheInvalidator interface {
	InvalidateBook(ctx context.Context, id uint)
}

type BookService struct {
	uow   db.UnitOfWork
	books db.IBookRepository
}

func NewBookService(uow db.UnitOfWork, books db.IBookRepository) *BookService {
	if uow == nil || books == nil {
		panic("book service dependencies cannot be nil")
	}
	return &BookService{uow: uow, books: books}
}

// 新書的初始庫存直接寫入，之後的異動都經過 StockLedger
func (s *BookService) CreateBook(ctx context.Context, in BookInput) (*model.Book, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	book := &model.Book{
		Title:  in.Title,
		Author: in.Author,
		Genre:  in.Genre,
		Price:  in.Price.Round(2),
	}
	if in.Quantity != nil {
		book.Quantity = *in.Quantity
	}
	if err := s.books.CreateBook(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *BookService) GetBook(ctx context.Context, id uint) (*model.Book, error) {
	book, err := s.books.GetBookByID(ctx, id)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	return book, nil
}

func (s *BookService) ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error) {
	return s.books.ListBooks(ctx, filter)
}

/*
更新書目資料；有帶 Quantity 時以差額透過 StockLedger 調整
兩者在同一個transaction，先 UPDATE 書目會鎖住該列，期間的結帳扣庫存會等到commit之後
*/
func (s *BookService) UpdateBook(ctx context.Context, id uint, in BookInput) (*model.Book, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	err := s.uow.Transaction(ctx, func(store db.Store) error {
		err := store.UpdateBook(ctx, &model.Book{
			ID:     id,
			Title:  in.Title,
			Author: in.Author,
			Genre:  in.Genre,
			Price:  in.Price.Round(2),
		})
		if err != nil || in.Quantity == nil {
			return err
		}

		ledger := NewStockLedger(store)
		current, err := ledger.Current(ctx, id)
		if err != nil {
			return err
		}
		switch diff := *in.Quantity - current; {
		case diff > 0:
			_, err = ledger.Release(ctx, id, diff)
		case diff < 0:
			_, err = ledger.Reserve(ctx, id, -diff)
		}
		return err
	})
	if c, ok := s.books.(bookCacheInvalidator); ok {
		c.InvalidateBook(ctx, id)
	}
	if err != nil {
		return nil, translateRepoErr(err)
	}
	return s.GetBook(ctx, id)
}

func (s *BookService) DeleteBook(ctx context.Context, id uint) error {
	return translateRepoErr(s.books.DeleteBook(ctx, id))
}
