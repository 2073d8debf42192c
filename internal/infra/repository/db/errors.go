package db

import "errors"

var (
	ErrBookNotFound       = errors.New("book not found")
	ErrStockNotEnough     = errors.New("book stock not enough")
	ErrCartLineNotFound   = errors.New("cart line not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidOrderStatus = errors.New("invalid order status")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrDuplicateEmail     = errors.New("email already exists")
)
