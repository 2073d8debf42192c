package redis_decorator

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/redis_repo"
	"github.com/rs/zerolog/log"
)

/*
cache-aside:
	讀: 先讀redis，miss 再讀db並回填
	寫: 先寫db，成功後刪除快取
快取錯誤只記log，不影響db結果
*/
type CacheAsideBookRepo struct {
	db.IBookRepository
	cache redis_repo.IBookCacheRepository
}

func NewCacheAsideBookRepo(repo db.IBookRepository, cache redis_repo.IBookCacheRepository) db.IBookRepository {
	return &CacheAsideBookRepo{IBookRepository: repo, cache: cache}
}

func (p *CacheAsideBookRepo) GetBookByID(ctx context.Context, id uint) (*model.Book, error) {
	book, err := p.cache.GetBook(ctx, id)
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, redis_repo.ErrCacheMiss) {
		log.Error().Err(err).Uint("book_id", id).Msg("read book cache failed")
	}

	book, err = p.IBookRepository.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.cache.SetBook(ctx, book); err != nil {
		log.Error().Err(err).Uint("book_id", id).Msg("fill book cache failed")
	}
	return book, nil
}

func (p *CacheAsideBookRepo) UpdateBook(ctx context.Context, book *model.Book) error {
	if err := p.IBookRepository.UpdateBook(ctx, book); err != nil {
		return err
	}
	p.InvalidateBook(ctx, book.ID)
	return nil
}

func (p *CacheAsideBookRepo) DeleteBook(ctx context.Context, id uint) error {
	if err := p.IBookRepository.DeleteBook(ctx, id); err != nil {
		return err
	}
	p.InvalidateBook(ctx, id)
	return nil
}

func (p *CacheAsideBookRepo) DecreaseQuantity(ctx context.Context, id uint, amount int) (int, error) {
	qty, err := p.IBookRepository.DecreaseQuantity(ctx, id, amount)
	if err != nil {
		return 0, err
	}
	p.InvalidateBook(ctx, id)
	return qty, nil
}

func (p *CacheAsideBookRepo) IncreaseQuantity(ctx context.Context, id uint, amount int) (int, error) {
	qty, err := p.IBookRepository.IncreaseQuantity(ctx, id, amount)
	if err != nil {
		return 0, err
	}
	p.InvalidateBook(ctx, id)
	return qty, nil
}

/*
InvalidateBook 補償流程可能帶著已取消的ctx進來，刪快取不跟著取消
UnitOfWork 內的寫入不經過這層，commit 後由呼叫端清除
*/
func (p *CacheAsideBookRepo) InvalidateBook(ctx context.Context, id uint) {
	if err := p.cache.DeleteBook(context.WithoutCancel(ctx), id); err != nil {
		log.Error().Err(err).Uint("book_id", id).Msg("invalidate book cache failed")
	}
}
