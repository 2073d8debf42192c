package service

import (
	"context"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
)

type IInventoryService interface {
	ListInventory(ctx context.Context) ([]model.Book, error)
	AddStock(ctx context.Context, bookID uint, quantity int) (*model.Book, error)
	ReduceStock(ctx context.Context, bookID uint, quantity int) (*model.Book, error)
	DeleteBook(ctx context.Context, bookID uint) error
}

var _ IInventoryService = (*InventoryService)(nil)

// 管理端的庫存調整，與結帳共用同一個 StockLedger
type InventoryService struct {
	books  db.IBookRepository
	ledger StockLedger
}

func NewInventoryService(books db.IBookRepository, ledger StockLedger) *InventoryService {
	return &InventoryService{books: books, ledger: ledger}
}

func (s *InventoryService) ListInventory(ctx context.Context) ([]model.Book, error) {
	return s.books.ListBooks(ctx, model.BookFilter{})
}

func (s *InventoryService) AddStock(ctx context.Context, bookID uint, quantity int) (*model.Book, error) {
	if _, err := s.ledger.Release(ctx, bookID, quantity); err != nil {
		return nil, err
	}
	return s.reload(ctx, bookID)
}

// 錯誤:
//   - ErrInsufficientStock: 庫存不足，庫存不變
func (s *InventoryService) ReduceStock(ctx context.Context, bookID uint, quantity int) (*model.Book, error) {
	if _, err := s.ledger.Reserve(ctx, bookID, quantity); err != nil {
		return nil, err
	}
	return s.reload(ctx, bookID)
}

func (s *InventoryService) DeleteBook(ctx context.Context, bookID uint) error {
	return translateRepoErr(s.books.DeleteBook(ctx, bookID))
}

func (s *InventoryService) reload(ctx context.Context, bookID uint) (*model.Book, error) {
	book, err := s.books.GetBookByID(ctx, bookID)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	return book, nil
}
