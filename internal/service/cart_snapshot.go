package service

import (
	"context"
	"time"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
)

type CartSnapshotReader interface {
	Snapshot(ctx context.Context, customerID uint) (model.CartSnapshot, error)
}

var _ CartSnapshotReader = (*DBCartSnapshotReader)(nil)

type DBCartSnapshotReader struct {
	carts db.ICartRepository
	now   func() time.Time
}

func NewCartSnapshotReader(carts db.ICartRepository) *DBCartSnapshotReader {
	return &DBCartSnapshotReader{carts: carts, now: time.Now}
}

// Snapshot 依 cart line id 排序，單價為讀取當下的書價；空購物車也是合法快照
func (r *DBCartSnapshotReader) Snapshot(ctx context.Context, customerID uint) (model.CartSnapshot, error) {
	lines, err := r.carts.ListCartSnapshotLines(ctx, customerID)
	if err != nil {
		return model.CartSnapshot{}, err
	}
	return model.NewCartSnapshot(customerID, r.now(), lines), nil
}
