package service

import (
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
)

var (
	ErrEmptyCart          = errors.New("your cart is empty")
	ErrInsufficientStock  = errors.New("not enough stock available")
	ErrBookNotFound       = errors.New("book not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrCartLineNotFound   = errors.New("cart item not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrPersistenceFailure = errors.New("order persistence failed")
	ErrCartClearFailure   = errors.New("cart clear failed after order commit")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrEmailTaken         = errors.New("email has already been taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")

	// ErrInvalidAmount 同時符合 ErrInvalidArgument
	ErrInvalidAmount = fmt.Errorf("%w: amount must be at least 1", ErrInvalidArgument)
)

// translateRepoErr 把 repository 層的錯誤轉成 service 層的錯誤，其他錯誤原樣回傳
func translateRepoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrBookNotFound):
		return ErrBookNotFound
	case errors.Is(err, db.ErrStockNotEnough):
		return ErrInsufficientStock
	case errors.Is(err, db.ErrCartLineNotFound):
		return ErrCartLineNotFound
	case errors.Is(err, db.ErrOrderNotFound):
		return ErrOrderNotFound
	case errors.Is(err, db.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, db.ErrDuplicateEmail):
		return ErrEmailTaken
	default:
		return err
	}
}
