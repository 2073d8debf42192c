package service

import (
	"context"
	"errors"
	"testing"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func intPtr(v int) *int { return &v }

type CatalogServiceTestSuite struct {
	suite.Suite
	store     *db.UnifiedDBImpl
	books     *BookService
	inventory *InventoryService
	carts     *CartService
	orders    *OrderService
}

func (suite *CatalogServiceTestSuite) SetupTest() {
	suite.store = newTestStore(suite.T())
	ledger := NewStockLedger(suite.store)
	suite.books = NewBookService(suite.store, suite.store)
	suite.inventory = NewInventoryService(suite.store, ledger)
	suite.carts = NewCartService(suite.store, suite.store)
	suite.orders = NewOrderService(suite.store)
}

func (suite *CatalogServiceTestSuite) TestCreateBook_Validation() {
	ctx := context.Background()
	_, err := suite.books.CreateBook(ctx, BookInput{Title: "", Author: "a", Genre: "g", Price: decimal.NewFromInt(1)})
	require.ErrorIs(suite.T(), err, ErrInvalidArgument)
	_, err = suite.books.CreateBook(ctx, BookInput{Title: "t", Author: "a", Genre: "g", Price: decimal.NewFromInt(-1)})
	require.ErrorIs(suite.T(), err, ErrInvalidArgument)
	_, err = suite.books.CreateBook(ctx, BookInput{Title: "t", Author: "a", Genre: "g", Price: decimal.NewFromInt(1), Quantity: intPtr(-1)})
	require.ErrorIs(suite.T(), err, ErrInvalidArgument)

	book, err := suite.books.CreateBook(ctx, BookInput{Title: "t", Author: "a", Genre: "g", Price: decimal.RequireFromString("9.999"), Quantity: intPtr(4)})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "10.00", book.Price.StringFixed(2))
	require.Equal(suite.T(), 4, book.Quantity)
}

func (suite *CatalogServiceTestSuite) TestUpdateBook_AdjustsStockThroughLedger() {
	ctx := context.Background()
	book, err := suite.books.CreateBook(ctx, BookInput{Title: "t", Author: "a", Genre: "g", Price: decimal.NewFromInt(1), Quantity: intPtr(4)})
	require.NoError(suite.T(), err)

	updated, err := suite.books.UpdateBook(ctx, book.ID, BookInput{Title: "t2", Author: "a", Genre: "g", Price: decimal.NewFromInt(2), Quantity: intPtr(9)})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "t2", updated.Title)
	require.Equal(suite.T(), 9, updated.Quantity)

	updated, err = suite.books.UpdateBook(ctx, book.ID, BookInput{Title: "t2", Author: "a", Genre: "g", Price: decimal.NewFromInt(2), Quantity: intPtr(1)})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 1, updated.Quantity)

	updated, err = suite.books.UpdateBook(ctx, book.ID, BookInput{Title: "t3", Author: "a", Genre: "g", Price: decimal.NewFromInt(2)})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 1, updated.Quantity)

	_, err = suite.books.UpdateBook(ctx, 999, BookInput{Title: "t", Author: "a", Genre: "g", Price: decimal.NewFromInt(1)})
	require.ErrorIs(suite.T(), err, ErrBookNotFound)
}

// failingStockUoW 讓 transaction 內的庫存調整失敗
type failingStockUoW struct {
	inner db.UnitOfWork
}

type failingStockStore struct {
	db.Store
}

func (f failingStockStore) DecreaseQuantity(ctx context.Context, id uint, amount int) (int, error) {
	return 0, errors.New("disk full")
}

func (f failingStockStore) IncreaseQuantity(ctx context.Context, id uint, amount int) (int, error) {
	return 0, errors.New("disk full")
}

func (u failingStockUoW) Transaction(ctx context.Context, fn func(store db.Store) error) error {
	return u.inner.Transaction(ctx, func(store db.Store) error {
		return fn(failingStockStore{Store: store})
	})
}

type recordingInvalidator struct {
	db.IBookRepository
	ids []uint
}

func (r *recordingInvalidator) InvalidateBook(ctx context.Context, id uint) {
	r.ids = append(r.ids, id)
}

func (suite *CatalogServiceTestSuite) TestUpdateBook_StockFailureRollsBackMetadata() {
	ctx := context.Background()
	book := seedBook(suite.T(), suite.store, "Original", "4.00", 5)
	books := NewBookService(failingStockUoW{inner: suite.store}, suite.store)

	for _, qty := range []int{2, 8} {
		_, err := books.UpdateBook(ctx, book.ID, BookInput{Title: "Changed", Author: "a", Genre: "g", Price: decimal.NewFromInt(9), Quantity: intPtr(qty)})
		require.Error(suite.T(), err)

		got, err := suite.books.GetBook(ctx, book.ID)
		require.NoError(suite.T(), err)
		require.Equal(suite.T(), "Original", got.Title)
		require.Equal(suite.T(), "4.00", got.Price.StringFixed(2))
		require.Equal(suite.T(), 5, got.Quantity)
	}

	// 沒帶 quantity 不碰庫存
	updated, err := books.UpdateBook(ctx, book.ID, BookInput{Title: "Changed", Author: "a", Genre: "g", Price: decimal.NewFromInt(9)})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "Changed", updated.Title)
	require.Equal(suite.T(), 5, updated.Quantity)
}

func (suite *CatalogServiceTestSuite) TestUpdateBook_InvalidatesCacheAfterCommit() {
	ctx := context.Background()
	book := seedBook(suite.T(), suite.store, "A", "1.00", 3)
	cache := &recordingInvalidator{IBookRepository: suite.store}
	books := NewBookService(suite.store, cache)

	updated, err := books.UpdateBook(ctx, book.ID, BookInput{Title: "B", Author: "a", Genre: "g", Price: decimal.NewFromInt(1), Quantity: intPtr(7)})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 7, updated.Quantity)
	require.Equal(suite.T(), []uint{book.ID}, cache.ids)
}

func (suite *CatalogServiceTestSuite) TestInventory() {
	ctx := context.Background()
	book := seedBook(suite.T(), suite.store, "A", "1.00", 2)

	got, err := suite.inventory.AddStock(ctx, book.ID, 3)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 5, got.Quantity)

	got, err = suite.inventory.ReduceStock(ctx, book.ID, 5)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 0, got.Quantity)

	_, err = suite.inventory.ReduceStock(ctx, book.ID, 1)
	require.ErrorIs(suite.T(), err, ErrInsufficientStock)
	_, err = suite.inventory.AddStock(ctx, book.ID, 0)
	require.ErrorIs(suite.T(), err, ErrInvalidArgument)
	_, err = suite.inventory.AddStock(ctx, 999, 1)
	require.ErrorIs(suite.T(), err, ErrBookNotFound)

	list, err := suite.inventory.ListInventory(ctx)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), list, 1)

	require.NoError(suite.T(), suite.inventory.DeleteBook(ctx, book.ID))
	require.ErrorIs(suite.T(), suite.inventory.DeleteBook(ctx, book.ID), ErrBookNotFound)
}

func (suite *CatalogServiceTestSuite) TestCart() {
	ctx := context.Background()
	book := seedBook(suite.T(), suite.store, "A", "1.00", 2)

	_, err := suite.carts.AddToCart(ctx, customerID, 999, 1)
	require.ErrorIs(suite.T(), err, ErrBookNotFound)
	_, err = suite.carts.AddToCart(ctx, customerID, book.ID, 0)
	require.ErrorIs(suite.T(), err, ErrInvalidArgument)

	line, err := suite.carts.AddToCart(ctx, customerID, book.ID, 1)
	require.NoError(suite.T(), err)
	line, err = suite.carts.AddToCart(ctx, customerID, book.ID, 2)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 3, line.Quantity)

	_, err = suite.carts.UpdateCartLine(ctx, customerID+1, line.ID, 5)
	require.ErrorIs(suite.T(), err, ErrCartLineNotFound)
	line, err = suite.carts.UpdateCartLine(ctx, customerID, line.ID, 5)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 5, line.Quantity)

	require.ErrorIs(suite.T(), suite.carts.RemoveCartLine(ctx, customerID+1, line.ID), ErrCartLineNotFound)
	require.NoError(suite.T(), suite.carts.RemoveCartLine(ctx, customerID, line.ID))

	_, err = suite.carts.AddToCart(ctx, customerID, book.ID, 1)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), suite.carts.ClearCart(ctx, customerID))
	require.NoError(suite.T(), suite.carts.ClearCart(ctx, customerID))
	lines, err := suite.carts.ViewCart(ctx, customerID)
	require.NoError(suite.T(), err)
	require.Empty(suite.T(), lines)
}

func (suite *CatalogServiceTestSuite) TestOrders_ScopedToCustomer() {
	ctx := context.Background()
	order := &model.Order{UserID: customerID, Status: model.OrderStatusCompleted, TotalPrice: decimal.NewFromInt(1), OrderNumber: "ORDER-X"}
	require.NoError(suite.T(), suite.store.CreateOrder(ctx, order))

	_, err := suite.orders.GetOrder(ctx, customerID+1, order.ID)
	require.ErrorIs(suite.T(), err, ErrOrderNotFound)

	got, err := suite.orders.GetOrder(ctx, customerID, order.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "ORDER-X", got.OrderNumber)

	list, err := suite.orders.ListOrders(ctx, customerID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), list, 1)
}

func TestCatalogServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogServiceTestSuite))
}
