package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/bookstore/internal/constants"
	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AssemblerOption func(*OrderAssembler)

// WithClock 測試時固定時間
func WithClock(now func() time.Time) AssemblerOption {
	return func(a *OrderAssembler) {
		a.now = now
	}
}

func WithOrderNumberGenerator(gen func(time.Time) string) AssemblerOption {
	return func(a *OrderAssembler) {
		a.newNumber = gen
	}
}

/*
純計算，不碰db也不碰庫存
同一份快照、同一個時間與單號產生器，結果一定相同
*/
type OrderAssembler struct {
	now       func() time.Time
	newNumber func(time.Time) string
}

func NewOrderAssembler(opts ...AssemblerOption) *OrderAssembler {
	a := &OrderAssembler{
		now:       time.Now,
		newNumber: GenerateOrderNumber,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

/*
錯誤:
  - ErrEmptyCart: 快照沒有任何明細
  - ErrInvalidArgument: 明細數量 < 1 或單價為負
*/
func (a *OrderAssembler) Assemble(customerID uint, snapshot model.CartSnapshot) (*model.Order, error) {
	if snapshot.IsEmpty() {
		return nil, ErrEmptyCart
	}

	lines := snapshot.Lines()
	items := make([]model.OrderItem, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: book %d quantity %d", ErrInvalidArgument, line.BookID, line.Quantity)
		}
		if line.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: book %d negative price", ErrInvalidArgument, line.BookID)
		}
		item := model.OrderItem{
			BookID:   line.BookID,
			Quantity: line.Quantity,
			Price:    line.UnitPrice,
		}
		total = total.Add(item.LineTotal())
		items = append(items, item)
	}

	now := a.now()
	return &model.Order{
		UserID:      customerID,
		Status:      model.OrderStatusCompleted,
		TotalPrice:  total.Round(2),
		OrderNumber: a.newNumber(now),
		Items:       items,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// GenerateOrderNumber ORDER-<base36 微秒時間>-<8碼亂數>，全大寫
func GenerateOrderNumber(t time.Time) string {
	ts := strconv.FormatInt(t.UnixMicro(), 36)
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return strings.ToUpper(constants.OrderNumberPrefix + ts + "-" + random)
}
