package redis_repo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func setupTestRedis(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       1, // 用測試DB
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

type BookCacheRepoTestSuite struct {
	suite.Suite
	repo *BookCacheRepo
}

func (suite *BookCacheRepoTestSuite) SetupTest() {
	rdb := setupTestRedis(suite.T())
	rdb.FlushDB(context.Background())
	suite.repo = NewBookCacheRepo(rdb, time.Minute)
}

func TestBookCacheRepoTestSuite(t *testing.T) {
	suite.Run(t, new(BookCacheRepoTestSuite))
}

func (suite *BookCacheRepoTestSuite) TestSetGetDelete() {
	ctx := context.Background()
	book := &model.Book{
		ID:       7,
		Title:    "Cached",
		Author:   "a",
		Genre:    "g",
		Price:    decimal.RequireFromString("12.34"),
		Quantity: 3,
	}

	_, err := suite.repo.GetBook(ctx, book.ID)
	require.ErrorIs(suite.T(), err, ErrCacheMiss)

	require.NoError(suite.T(), suite.repo.SetBook(ctx, book))
	got, err := suite.repo.GetBook(ctx, book.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "Cached", got.Title)
	require.True(suite.T(), got.Price.Equal(book.Price))
	require.Equal(suite.T(), 3, got.Quantity)

	require.NoError(suite.T(), suite.repo.DeleteBook(ctx, book.ID))
	_, err = suite.repo.GetBook(ctx, book.ID)
	require.ErrorIs(suite.T(), err, ErrCacheMiss)
}
