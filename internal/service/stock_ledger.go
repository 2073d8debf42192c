package service

import (
	"context"
	"fmt"

	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
)

// StockLedger 書籍庫存的唯一異動入口
type StockLedger interface {
	// Reserve 扣庫存，庫存不足時不做任何異動
	Reserve(ctx context.Context, bookID uint, amount int) (int, error)
	// Release 加回庫存，無上限
	Release(ctx context.Context, bookID uint, amount int) (int, error)
	Current(ctx context.Context, bookID uint) (int, error)
}

var _ StockLedger = (*BookStockLedger)(nil)

/*
扣除由db的條件式update完成，同一本書的並發扣除會被db序列化
不在程式內加鎖
*/
type BookStockLedger struct {
	books db.IBookRepository
}

func NewStockLedger(books db.IBookRepository) *BookStockLedger {
	return &BookStockLedger{books: books}
}

/*
錯誤:
  - ErrInvalidAmount: amount < 1
  - ErrBookNotFound: 書不存在
  - ErrInsufficientStock: 庫存不足
*/
func (l *BookStockLedger) Reserve(ctx context.Context, bookID uint, amount int) (int, error) {
	if amount < 1 {
		return 0, ErrInvalidAmount
	}
	qty, err := l.books.DecreaseQuantity(ctx, bookID, amount)
	if err != nil {
		return 0, fmt.Errorf("reserve book %d: %w", bookID, translateRepoErr(err))
	}
	return qty, nil
}

func (l *BookStockLedger) Release(ctx context.Context, bookID uint, amount int) (int, error) {
	if amount < 1 {
		return 0, ErrInvalidAmount
	}
	qty, err := l.books.IncreaseQuantity(ctx, bookID, amount)
	if err != nil {
		return 0, fmt.Errorf("release book %d: %w", bookID, translateRepoErr(err))
	}
	return qty, nil
}

func (l *BookStockLedger) Current(ctx context.Context, bookID uint) (int, error) {
	qty, err := l.books.GetQuantity(ctx, bookID)
	if err != nil {
		return 0, translateRepoErr(err)
	}
	return qty, nil
}
