package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"gorm.io/gorm"
)

/*
庫存只能透過 DecreaseQuantity / IncreaseQuantity 異動
UpdateBook 不會動到 quantity
*/
type BookRepo struct {
	db *DbDao
}

func NewBookRepo(db *DbDao) *BookRepo {
	return &BookRepo{db: db}
}

func (s *BookRepo) CreateBook(ctx context.Context, book *model.Book) error {
	return s.db.WithContext(ctx).Create(book).Error
}

func (s *BookRepo) GetBookByID(ctx context.Context, id uint) (*model.Book, error) {
	var book model.Book
	err := s.db.WithContext(ctx).First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// Read - 依 genre / author 篩選，空字串代表不篩選
func (s *BookRepo) ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error) {
	query := s.db.WithContext(ctx).Model(&model.Book{})
	if filter.Genre != "" {
		query = query.Where("genre = ?", filter.Genre)
	}
	if filter.Author != "" {
		query = query.Where("author = ?", filter.Author)
	}
	var books []model.Book
	err := query.Order("id").Find(&books).Error
	return books, err
}

// Update - 只更新書目資料
func (s *BookRepo) UpdateBook(ctx context.Context, book *model.Book) error {
	res := s.db.WithContext(ctx).Model(&model.Book{}).
		Where("id = ?", book.ID).
		Updates(map[string]any{
			"title":  book.Title,
			"author": book.Author,
			"genre":  book.Genre,
			"price":  book.Price,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

// Delete - soft delete，已成立訂單的明細仍可參照
func (s *BookRepo) DeleteBook(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.Book{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

func (s *BookRepo) GetQuantity(ctx context.Context, id uint) (int, error) {
	var book model.Book
	err := s.db.WithContext(ctx).Select("id", "quantity").First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrBookNotFound
		}
		return 0, err
	}
	return book.Quantity, nil
}

/*
條件式更新: quantity >= amount 才會扣
整個判斷與扣除由db在單一statement內完成，並發下不會扣成負數
錯誤:
  - ErrBookNotFound: 書不存在
  - ErrStockNotEnough: 庫存不足
*/
func (s *BookRepo) DecreaseQuantity(ctx context.Context, id uint, amount int) (int, error) {
	var currentQty int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Book{}).
			Where("id = ? AND quantity >= ?", id, amount).
			Update("quantity", gorm.Expr("quantity - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&model.Book{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrBookNotFound
			}
			return ErrStockNotEnough
		}
		return readQuantity(tx, id, &currentQty)
	})
	if err != nil {
		return 0, err
	}
	return currentQty, nil
}

func (s *BookRepo) IncreaseQuantity(ctx context.Context, id uint, amount int) (int, error) {
	var currentQty int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Book{}).
			Where("id = ?", id).
			Update("quantity", gorm.Expr("quantity + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrBookNotFound
		}
		return readQuantity(tx, id, &currentQty)
	})
	if err != nil {
		return 0, err
	}
	return currentQty, nil
}

func readQuantity(tx *gorm.DB, id uint, dst *int) error {
	return tx.Model(&model.Book{}).Select("quantity").Where("id = ?", id).Row().Scan(dst)
}
