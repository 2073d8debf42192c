package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 購物車存在db，每個 (user_id, book_id) 只有一筆
type CartRepo struct {
	db *DbDao
}

func NewCartRepo(db *DbDao) *CartRepo {
	return &CartRepo{db: db}
}

// Read - 依 cart line id 排序，並帶出書目資料
func (s *CartRepo) ListCartLines(ctx context.Context, userID uint) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := s.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ?", userID).
		Order("id").
		Find(&lines).Error
	return lines, err
}

type cartSnapshotRow struct {
	CartLineID uint
	BookID     uint
	Title      sql.NullString
	Quantity   int
	Price      decimal.NullDecimal
}

/*
結帳用的快照查詢，cart line 與 books 一次 join 讀出
書被刪除時 Title 為空、UnitPrice 為零，後續保留庫存時會回 ErrBookNotFound
*/
func (s *CartRepo) ListCartSnapshotLines(ctx context.Context, userID uint) ([]model.CartSnapshotLine, error) {
	var rows []cartSnapshotRow
	err := s.db.WithContext(ctx).
		Table("cart_lines").
		Select("cart_lines.id AS cart_line_id, cart_lines.book_id, books.title, cart_lines.quantity, books.price").
		Joins("LEFT JOIN books ON books.id = cart_lines.book_id AND books.deleted_at IS NULL").
		Where("cart_lines.user_id = ?", userID).
		Order("cart_lines.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	lines := make([]model.CartSnapshotLine, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, model.CartSnapshotLine{
			CartLineID: r.CartLineID,
			BookID:     r.BookID,
			Title:      r.Title.String,
			Quantity:   r.Quantity,
			UnitPrice:  r.Price.Decimal,
		})
	}
	return lines, nil
}

func (s *CartRepo) GetCartLine(ctx context.Context, userID, lineID uint) (*model.CartLine, error) {
	var line model.CartLine
	err := s.db.WithContext(ctx).
		Preload("Book").
		Where("id = ? AND user_id = ?", lineID, userID).
		First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartLineNotFound
		}
		return nil, err
	}
	return &line, nil
}

// Create - 已有同一本書時數量相加
func (s *CartRepo) AddCartLine(ctx context.Context, userID, bookID uint, quantity int) (*model.CartLine, error) {
	line := &model.CartLine{
		UserID:   userID,
		BookID:   bookID,
		Quantity: quantity,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("cart_lines.quantity + ?", quantity),
			"updated_at": time.Now(),
		}),
	}).Create(line).Error
	if err != nil {
		return nil, err
	}

	var merged model.CartLine
	err = s.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&merged).Error
	if err != nil {
		return nil, err
	}
	return &merged, nil
}

func (s *CartRepo) UpdateCartLineQuantity(ctx context.Context, userID, lineID uint, quantity int) (*model.CartLine, error) {
	res := s.db.WithContext(ctx).Model(&model.CartLine{}).
		Where("id = ? AND user_id = ?", lineID, userID).
		Update("quantity", quantity)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrCartLineNotFound
	}
	return s.GetCartLine(ctx, userID, lineID)
}

func (s *CartRepo) DeleteCartLine(ctx context.Context, userID, lineID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		Delete(&model.CartLine{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCartLineNotFound
	}
	return nil
}

// ClearCart 冪等，空購物車回傳 0
func (s *CartRepo) ClearCart(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartLine{})
	return res.RowsAffected, res.Error
}
