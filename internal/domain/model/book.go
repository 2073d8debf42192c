package model

import (
	"github.com/shopspring/decimal"
)

// Book 的 Quantity 只能經由庫存帳本 (stock ledger) 異動
type Book struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	Title    string          `gorm:"not null;type:varchar(255)" json:"title"`
	Author   string          `gorm:"not null;type:varchar(255);index" json:"author"`
	Genre    string          `gorm:"not null;type:varchar(100);index" json:"genre"`
	Price    decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	Quantity int             `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
	BaseModel
}

type BookFilter struct {
	Genre  string
	Author string
}
