package service

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db/dbtest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *db.UnifiedDBImpl {
	store := db.NewUnifiedDB(dbtest.Open(t))
	require.NoError(t, store.InitMigrate())
	return store
}

func seedBook(t *testing.T, store db.Store, title, price string, qty int) *model.Book {
	book := &model.Book{
		Title:    title,
		Author:   "author",
		Genre:    "genre",
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
	}
	require.NoError(t, store.CreateBook(context.Background(), book))
	return book
}

func addToCart(t *testing.T, store db.Store, customerID, bookID uint, qty int) {
	_, err := store.AddCartLine(context.Background(), customerID, bookID, qty)
	require.NoError(t, err)
}

func quantityOf(t *testing.T, store db.Store, bookID uint) int {
	qty, err := store.GetQuantity(context.Background(), bookID)
	require.NoError(t, err)
	return qty
}
