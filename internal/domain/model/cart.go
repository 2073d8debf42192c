package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine 一個顧客對一本書只會有一筆
type CartLine struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_book" json:"user_id"`
	BookID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_book" json:"book_id"`
	Quantity  int       `gorm:"not null;check:quantity >= 1" json:"quantity"`
	Book      *Book     `gorm:"foreignKey:BookID" json:"book,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartSnapshotLine 結帳當下讀到的購物車明細，UnitPrice 為讀取當下的書價
type CartSnapshotLine struct {
	CartLineID uint
	BookID     uint
	Title      string
	Quantity   int
	UnitPrice  decimal.Decimal
}

// CartSnapshot 結帳開始時的購物車唯讀快照
type CartSnapshot struct {
	CustomerID uint
	CapturedAt time.Time
	lines      []CartSnapshotLine
}

func NewCartSnapshot(customerID uint, capturedAt time.Time, lines []CartSnapshotLine) CartSnapshot {
	cp := make([]CartSnapshotLine, len(lines))
	copy(cp, lines)
	return CartSnapshot{
		CustomerID: customerID,
		CapturedAt: capturedAt,
		lines:      cp,
	}
}

// Lines 回傳副本，呼叫端修改不會影響快照
func (s CartSnapshot) Lines() []CartSnapshotLine {
	cp := make([]CartSnapshotLine, len(s.lines))
	copy(cp, s.lines)
	return cp
}

func (s CartSnapshot) Len() int {
	return len(s.lines)
}

func (s CartSnapshot) IsEmpty() bool {
	return len(s.lines) == 0
}
