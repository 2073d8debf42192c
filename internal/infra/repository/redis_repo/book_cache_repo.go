package redis_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

// IBookCacheRepository 書目快取，只存單本書的讀取結果
type IBookCacheRepository interface {
	// GetBook 快取不存在時回傳 ErrCacheMiss
	GetBook(ctx context.Context, id uint) (*model.Book, error)
	SetBook(ctx context.Context, book *model.Book) error
	DeleteBook(ctx context.Context, id uint) error
}

var ErrCacheMiss = errors.New("book cache miss")

var _ IBookCacheRepository = (*BookCacheRepo)(nil)

/*
結構:
	book:{id} -> json(book)
庫存以db為準，快取只在讀取時填入，寫入時刪除
*/
type BookCacheRepo struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBookCacheRepo(client *redis.Client, ttl time.Duration) *BookCacheRepo {
	return &BookCacheRepo{client: client, ttl: ttl}
}

func generateBookKey(id uint) string {
	return fmt.Sprintf("book:%d", id)
}

func (r *BookCacheRepo) GetBook(ctx context.Context, id uint) (*model.Book, error) {
	data, err := r.client.Get(ctx, generateBookKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var book model.Book
	if err := json.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("decode cached book %d: %w", id, err)
	}
	return &book, nil
}

func (r *BookCacheRepo) SetBook(ctx context.Context, book *model.Book) error {
	data, err := json.Marshal(book)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, generateBookKey(book.ID), data, r.ttl).Err()
}

func (r *BookCacheRepo) DeleteBook(ctx context.Context, id uint) error {
	return r.client.Del(ctx, generateBookKey(id)).Err()
}
