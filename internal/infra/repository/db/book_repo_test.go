package db

import (
	"context"
	"errors"
	"testing"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db/dbtest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func newTestUnifiedDB(t *testing.T) (*UnifiedDBImpl, *gorm.DB) {
	conn := dbtest.Open(t)
	u := NewUnifiedDB(conn)
	require.NoError(t, u.InitMigrate())
	return u, conn
}

type BookRepoTestSuite struct {
	suite.Suite
	db       *gorm.DB
	bookRepo *BookRepo
}

// SetupTest 每個測試都用新的資料庫
func (suite *BookRepoTestSuite) SetupTest() {
	u, conn := newTestUnifiedDB(suite.T())
	suite.db = conn
	suite.bookRepo = u.BookRepo
}

func (suite *BookRepoTestSuite) createBook(title string, price string, qty int) *model.Book {
	book := &model.Book{
		Title:    title,
		Author:   "Author " + title,
		Genre:    "Fiction",
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
	}
	require.NoError(suite.T(), suite.bookRepo.CreateBook(context.Background(), book))
	return book
}

func (suite *BookRepoTestSuite) TestCreateAndGetBook() {
	book := suite.createBook("Dune", "12.50", 3)
	require.NotZero(suite.T(), book.ID)

	got, err := suite.bookRepo.GetBookByID(context.Background(), book.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "Dune", got.Title)
	require.True(suite.T(), got.Price.Equal(decimal.RequireFromString("12.5")))
	require.Equal(suite.T(), 3, got.Quantity)
}

func (suite *BookRepoTestSuite) TestGetBook_NotFound() {
	_, err := suite.bookRepo.GetBookByID(context.Background(), 999)
	require.ErrorIs(suite.T(), err, ErrBookNotFound)
}

func (suite *BookRepoTestSuite) TestListBooks_Filter() {
	ctx := context.Background()
	a := &model.Book{Title: "A", Author: "Herbert", Genre: "SciFi", Price: decimal.NewFromInt(1)}
	b := &model.Book{Title: "B", Author: "Tolkien", Genre: "Fantasy", Price: decimal.NewFromInt(1)}
	c := &model.Book{Title: "C", Author: "Herbert", Genre: "Fantasy", Price: decimal.NewFromInt(1)}
	for _, bk := range []*model.Book{a, b, c} {
		require.NoError(suite.T(), suite.bookRepo.CreateBook(ctx, bk))
	}

	all, err := suite.bookRepo.ListBooks(ctx, model.BookFilter{})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), all, 3)

	fantasy, err := suite.bookRepo.ListBooks(ctx, model.BookFilter{Genre: "Fantasy"})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), fantasy, 2)

	both, err := suite.bookRepo.ListBooks(ctx, model.BookFilter{Genre: "Fantasy", Author: "Herbert"})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), both, 1)
	require.Equal(suite.T(), "C", both[0].Title)
}

func (suite *BookRepoTestSuite) TestUpdateBook_KeepsQuantity() {
	ctx := context.Background()
	book := suite.createBook("Old", "5.00", 7)

	err := suite.bookRepo.UpdateBook(ctx, &model.Book{
		ID:       book.ID,
		Title:    "New",
		Author:   "Someone",
		Genre:    "Drama",
		Price:    decimal.RequireFromString("6.00"),
		Quantity: 100,
	})
	require.NoError(suite.T(), err)

	got, err := suite.bookRepo.GetBookByID(ctx, book.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "New", got.Title)
	require.Equal(suite.T(), 7, got.Quantity)

	err = suite.bookRepo.UpdateBook(ctx, &model.Book{ID: 999, Title: "x"})
	require.ErrorIs(suite.T(), err, ErrBookNotFound)
}

func (suite *BookRepoTestSuite) TestDeleteBook() {
	ctx := context.Background()
	book := suite.createBook("Gone", "1.00", 1)

	require.NoError(suite.T(), suite.bookRepo.DeleteBook(ctx, book.ID))
	_, err := suite.bookRepo.GetBookByID(ctx, book.ID)
	require.ErrorIs(suite.T(), err, ErrBookNotFound)
	require.ErrorIs(suite.T(), suite.bookRepo.DeleteBook(ctx, book.ID), ErrBookNotFound)

	_, err = suite.bookRepo.DecreaseQuantity(ctx, book.ID, 1)
	require.ErrorIs(suite.T(), err, ErrBookNotFound)
}

func (suite *BookRepoTestSuite) TestDecreaseQuantity() {
	ctx := context.Background()
	book := suite.createBook("Stock", "1.00", 5)

	qty, err := suite.bookRepo.DecreaseQuantity(ctx, book.ID, 2)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 3, qty)

	_, err = suite.bookRepo.DecreaseQuantity(ctx, book.ID, 4)
	require.ErrorIs(suite.T(), err, ErrStockNotEnough)

	qty, err = suite.bookRepo.GetQuantity(ctx, book.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 3, qty)

	qty, err = suite.bookRepo.DecreaseQuantity(ctx, book.ID, 3)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 0, qty)

	_, err = suite.bookRepo.DecreaseQuantity(ctx, 999, 1)
	require.ErrorIs(suite.T(), err, ErrBookNotFound)
}

func (suite *BookRepoTestSuite) TestIncreaseQuantity() {
	ctx := context.Background()
	book := suite.createBook("Restock", "1.00", 0)

	qty, err := suite.bookRepo.IncreaseQuantity(ctx, book.ID, 4)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 4, qty)

	_, err = suite.bookRepo.IncreaseQuantity(ctx, 999, 1)
	require.ErrorIs(suite.T(), err, ErrBookNotFound)
}

// 10 本庫存，20 個並發各扣 1 本，只會有 10 個成功
/*
測試db只有一條連線，goroutine 之間實際上是排隊執行
這裡只驗證結果總量，讀寫交錯的情況由 TestDecreaseQuantity_InterleavedWrite 驗證
*/
func (suite *BookRepoTestSuite) TestDecreaseQuantity_Concurrent() {
	ctx := context.Background()
	book := suite.createBook("Hot", "1.00", 10)

	var g errgroup.Group
	results := make([]error, 20)
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			_, results[i] = suite.bookRepo.DecreaseQuantity(ctx, book.ID, 1)
			return nil
		})
	}
	require.NoError(suite.T(), g.Wait())

	success, insufficient := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			success++
		case errors.Is(err, ErrStockNotEnough):
			insufficient++
		default:
			suite.T().Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(suite.T(), 10, success)
	require.Equal(suite.T(), 10, insufficient)

	qty, err := suite.bookRepo.GetQuantity(ctx, book.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 0, qty)
}

func TestBookRepoTestSuite(t *testing.T) {
	suite.Run(t, new(BookRepoTestSuite))
}

/*
在扣庫存的 UPDATE 執行前，插入另一筆把庫存改成1的寫入
等同於其他結帳在讀取與寫入之間先扣走庫存，條件式 UPDATE 必須看到最新值
*/
func (suite *BookRepoTestSuite) TestDecreaseQuantity_InterleavedWrite() {
	ctx := context.Background()
	book := suite.createBook("Race", "1.00", 5)

	const name = "bookstore:interleave_stock"
	fired := false
	var interleaveErr error
	err := suite.db.Callback().Update().Before("gorm:update").Register(name, func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "books" {
			return
		}
		fired = true
		interleaveErr = tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE books SET quantity = 1 WHERE id = ?", book.ID).Error
	})
	require.NoError(suite.T(), err)
	suite.T().Cleanup(func() {
		_ = suite.db.Callback().Update().Remove(name)
	})

	_, err = suite.bookRepo.DecreaseQuantity(ctx, book.ID, 3)
	require.True(suite.T(), fired)
	require.NoError(suite.T(), interleaveErr)
	require.ErrorIs(suite.T(), err, ErrStockNotEnough)

	qty, err := suite.bookRepo.GetQuantity(ctx, book.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 1, qty)

	qty, err = suite.bookRepo.DecreaseQuantity(ctx, book.ID, 1)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 0, qty)
}
