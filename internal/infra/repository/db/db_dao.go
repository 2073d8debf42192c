package db

import (
	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"gorm.io/gorm"
)

// DbDao 持有書店共用的 gorm 連線，各 repo 都從這裡取 session
type DbDao struct {
	*gorm.DB
}

func NewDbDao(conn *gorm.DB) *DbDao {
	return &DbDao{
		DB: conn,
	}
}

/*
InitMigrate 建立帳號、session、書目、購物車、訂單與明細的資料表
順序依外鍵相依：明細參照訂單與書目，購物車參照使用者與書目
重複執行只會補上缺少的欄位與索引
*/
func (d *DbDao) InitMigrate() error {
	return d.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.Book{},
		&model.CartLine{},
		&model.Order{},
		&model.OrderItem{},
	)
}
