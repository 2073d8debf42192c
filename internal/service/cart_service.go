package service

import (
	"context"
	"fmt"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
)

type ICartService interface {
	ViewCart(ctx context.Context, customerID uint) ([]model.CartLine, error)
	AddToCart(ctx context.Context, customerID, bookID uint, quantity int) (*model.CartLine, error)
	UpdateCartLine(ctx context.Context, customerID, lineID uint, quantity int) (*model.CartLine, error)
	RemoveCartLine(ctx context.Context, customerID, lineID uint) error
	ClearCart(ctx context.Context, customerID uint) error
}

var _ ICartService = (*CartService)(nil)

// 加入購物車不保留庫存，庫存只在結帳時檢查
type CartService struct {
	carts db.ICartRepository
	books db.IBookRepository
}

func NewCartService(carts db.ICartRepository, books db.IBookRepository) *CartService {
	return &CartService{carts: carts, books: books}
}

func (s *CartService) ViewCart(ctx context.Context, customerID uint) ([]model.CartLine, error) {
	return s.carts.ListCartLines(ctx, customerID)
}

// 同一本書再加入時數量相加
func (s *CartService) AddToCart(ctx context.Context, customerID, bookID uint, quantity int) (*model.CartLine, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidArgument)
	}
	if _, err := s.books.GetBookByID(ctx, bookID); err != nil {
		return nil, translateRepoErr(err)
	}
	line, err := s.carts.AddCartLine(ctx, customerID, bookID, quantity)
	if err != nil {
		return nil, err
	}
	return line, nil
}

// 其他顧客的 cart line 一律視為不存在
func (s *CartService) UpdateCartLine(ctx context.Context, customerID, lineID uint, quantity int) (*model.CartLine, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidArgument)
	}
	line, err := s.carts.UpdateCartLineQuantity(ctx, customerID, lineID, quantity)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	return line, nil
}

func (s *CartService) RemoveCartLine(ctx context.Context, customerID, lineID uint) error {
	return translateRepoErr(s.carts.DeleteCartLine(ctx, customerID, lineID))
}

// ClearCart 冪等
func (s *CartService) ClearCart(ctx context.Context, customerID uint) error {
	_, err := s.carts.ClearCart(ctx, customerID)
	return err
}
