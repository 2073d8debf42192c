package db

import (
	"context"
	"time"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"gorm.io/gorm"
)

// IBookRepository Book 相關操作介面
type IBookRepository interface {
	CreateBook(ctx context.Context, book *model.Book) error
	GetBookByID(ctx context.Context, id uint) (*model.Book, error)
	ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error)
	UpdateBook(ctx context.Context, book *model.Book) error
	DeleteBook(ctx context.Context, id uint) error
	GetQuantity(ctx context.Context, id uint) (int, error)
	DecreaseQuantity(ctx context.Context, id uint, amount int) (int, error)
	IncreaseQuantity(ctx context.Context, id uint, amount int) (int, error)
}

// ICartRepository CartLine 相關操作介面
type ICartRepository interface {
	ListCartLines(ctx context.Context, userID uint) ([]model.CartLine, error)
	ListCartSnapshotLines(ctx context.Context, userID uint) ([]model.CartSnapshotLine, error)
	GetCartLine(ctx context.Context, userID, lineID uint) (*model.CartLine, error)
	AddCartLine(ctx context.Context, userID, bookID uint, quantity int) (*model.CartLine, error)
	UpdateCartLineQuantity(ctx context.Context, userID, lineID uint, quantity int) (*model.CartLine, error)
	DeleteCartLine(ctx context.Context, userID, lineID uint) error
	ClearCart(ctx context.Context, userID uint) (int64, error)
}

// IOrderRepository Order 相關操作介面
type IOrderRepository interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrderByID(ctx context.Context, id uint) (*model.Order, error)
	GetUserOrder(ctx context.Context, userID, orderID uint) (*model.Order, error)
	ListOrdersByUserID(ctx context.Context, userID uint) ([]model.Order, error)
	CountOrdersByUserID(ctx context.Context, userID uint) (int64, error)
}

// IUserRepository User 相關操作介面
type IUserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id uint) error
}

// ISessionRepository Session 相關操作介面
type ISessionRepository interface {
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	RevokeUserSessions(ctx context.Context, userID uint, at time.Time) (int64, error)
}

// Store 所有repository的集合，UnitOfWork 內拿到的是綁定在同一個tx上的Store
type Store interface {
	IBookRepository
	ICartRepository
	IOrderRepository
	IUserRepository
	ISessionRepository
}

// UnitOfWork fn 回傳nil才commit，回傳error或panic都會rollback
type UnitOfWork interface {
	Transaction(ctx context.Context, fn func(store Store) error) error
}

// UnifiedDB 統一的資料庫介面
type UnifiedDB interface {
	GetDB() *gorm.DB
	InitMigrate() error
	Store
	UnitOfWork
}

var _ UnifiedDB = (*UnifiedDBImpl)(nil)

// UnifiedDBImpl 統一資料庫實現
type UnifiedDBImpl struct {
	db    *gorm.DB
	dbDao *DbDao
	*BookRepo
	*CartRepo
	*OrderRepo
	*UserRepo
	*SessionRepo
}

// NewUnifiedDB 創建新的統一資料庫實例
func NewUnifiedDB(db *gorm.DB) *UnifiedDBImpl {
	dbDao := NewDbDao(db)
	return &UnifiedDBImpl{
		db:          db,
		dbDao:       dbDao,
		BookRepo:    NewBookRepo(dbDao),
		CartRepo:    NewCartRepo(dbDao),
		OrderRepo:   NewOrderRepo(dbDao),
		UserRepo:    NewUserRepo(dbDao),
		SessionRepo: NewSessionRepo(dbDao),
	}
}

func (u *UnifiedDBImpl) InitMigrate() error {
	return u.dbDao.InitMigrate()
}

// GetDB 獲取資料庫連接
func (u *UnifiedDBImpl) GetDB() *gorm.DB {
	return u.db
}

func (u *UnifiedDBImpl) Transaction(ctx context.Context, fn func(store Store) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewUnifiedDB(tx))
	})
}

// Close 關閉底層連線池
func (u *UnifiedDBImpl) Close() error {
	sqlDB, err := u.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
