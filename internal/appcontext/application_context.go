package appcontext

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/RoyceAzure/lab/bookstore/internal/api"
	"github.com/RoyceAzure/lab/bookstore/internal/api/handler"
	"github.com/RoyceAzure/lab/bookstore/internal/api/router"
	"github.com/RoyceAzure/lab/bookstore/internal/config"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/auth/token"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/producer"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/redis_decorator"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/bookstore/internal/pkg/ratelimit"
	"github.com/RoyceAzure/lab/bookstore/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const producerRetryAttempts = 3

type ApplicationContext struct {
	Cf     *config.Config
	Logger zerolog.Logger

	gormDB        *gorm.DB
	DbDao         *db.UnifiedDBImpl
	BookRepo      db.IBookRepository
	RedisClient   *redis.Client
	OrderProducer *producer.OrderProducer
	TokenMaker    token.Maker

	CheckoutLimiter  *ratelimit.KeyedTokenBucket
	StockLedger      service.StockLedger
	AuthService      *service.AuthService
	UserService      service.IUserService
	BookService      service.IBookService
	InventoryService service.IInventoryService
	CartService      service.ICartService
	OrderService     service.IOrderService
	CheckoutService  service.ICheckoutService
}

type Option func(*ApplicationContext)

// WithDB 使用外部提供的連線，不再依設定連 postgres
func WithDB(gdb *gorm.DB) Option {
	return func(app *ApplicationContext) {
		app.gormDB = gdb
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(app *ApplicationContext) {
		app.Logger = logger
	}
}

func NewApplicationContext(cf *config.Config, opts ...Option) (*ApplicationContext, error) {
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	app := ApplicationContext{
		Cf:     cf,
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&app)
	}

	if err := app.Init(); err != nil {
		// 初始化到一半失敗，把已開啟的資源關掉
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = app.Shutdown(ctx)
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"database connection", app.setUpDbConn},
		{"database DAO", app.setUpDbDao},
		{"redis book cache", app.setUpBookRepo},
		{"kafka order producer", app.setUpOrderProducer},
		{"token maker", app.setUpTokenMaker},
		{"checkout limiter", app.setUpCheckoutLimiter},
		{"services", app.setUpServices},
		{"admin account", app.seedAdmin},
	}
	for _, step := range steps {
		app.Logger.Info().Msgf("Start setup %s", step.name)
		if err := step.fn(); err != nil {
			return fmt.Errorf("setup %s: %w", step.name, err)
		}
		app.Logger.Info().Msgf("Finish setup %s", step.name)
	}
	return nil
}

func (app *ApplicationContext) setUpDbConn() error {
	if app.gormDB != nil {
		return nil
	}
	conn, err := db.GetDbConn(app.Cf.DbName, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbUser, app.Cf.DbPas)
	if err != nil {
		return err
	}
	app.gormDB = conn
	return nil
}

func (app *ApplicationContext) setUpDbDao() error {
	app.DbDao = db.NewUnifiedDB(app.gormDB)
	if app.Cf.DbAutoMigrate {
		return app.DbDao.InitMigrate()
	}
	return nil
}

// 沒有設定 REDIS_ADDR 或連不上時直接使用資料庫
func (app *ApplicationContext) setUpBookRepo() error {
	app.BookRepo = app.DbDao
	if app.Cf.RedisAddr == "" {
		app.Logger.Info().Msg("redis not configured, book cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     app.Cf.RedisAddr,
		Password: app.Cf.RedisPassword,
		DB:       app.Cf.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		app.Logger.Warn().Err(err).Str("addr", app.Cf.RedisAddr).Msg("redis unreachable, book cache disabled")
		_ = client.Close()
		return nil
	}

	app.RedisClient = client
	app.BookRepo = redis_decorator.NewCacheAsideBookRepo(app.DbDao, redis_repo.NewBookCacheRepo(client, app.Cf.BookCacheTTL))
	return nil
}

func (app *ApplicationContext) setUpOrderProducer() error {
	brokers := app.Cf.Brokers()
	if len(brokers) == 0 {
		app.Logger.Info().Msg("kafka not configured, order events disabled")
		return nil
	}
	app.OrderProducer = producer.NewOrderProducer(producer.NewKafkaWriter(brokers, app.Cf.KafkaOrderTopic), producerRetryAttempts)
	return nil
}

func (app *ApplicationContext) setUpTokenMaker() error {
	maker, err := token.NewJWTMaker(app.Cf.AuthTokenKey)
	if err != nil {
		return err
	}
	app.TokenMaker = maker
	return nil
}

func (app *ApplicationContext) setUpCheckoutLimiter() error {
	cfg := ratelimit.GetDefaultLimiterConfig()
	cfg.SetCapacity(app.Cf.CheckoutRateCapacity)
	cfg.SetRefillEvery(app.Cf.CheckoutRateRefill)
	app.CheckoutLimiter = ratelimit.NewKeyedTokenBucket(&cfg)
	return nil
}

func (app *ApplicationContext) setUpServices() error {
	app.StockLedger = service.NewStockLedger(app.BookRepo)
	app.AuthService = service.NewAuthService(app.DbDao, app.DbDao, app.TokenMaker, app.Cf.AccessTokenDuration, app.Logger)
	app.UserService = service.NewUserService(app.DbDao, app.DbDao)
	app.BookService = service.NewBookService(app.DbDao, app.BookRepo)
	app.InventoryService = service.NewInventoryService(app.BookRepo, app.StockLedger)
	app.CartService = service.NewCartService(app.DbDao, app.BookRepo)
	app.OrderService = service.NewOrderService(app.DbDao)

	opts := []service.CheckoutOption{service.WithCheckoutTimeout(app.Cf.CheckoutTimeout)}
	if app.OrderProducer != nil {
		opts = append(opts, service.WithEventPublisher(app.OrderProducer))
	}
	app.CheckoutService = service.NewCheckoutService(
		app.DbDao,
		service.NewCartSnapshotReader(app.DbDao),
		app.StockLedger,
		app.DbDao,
		app.Logger,
		opts...,
	)
	return nil
}

func (app *ApplicationContext) seedAdmin() error {
	if app.Cf.AdminEmail == "" || app.Cf.AdminPassword == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := app.AuthService.SeedAdmin(ctx, app.Cf.AdminEmail, app.Cf.AdminPassword)
	return err
}

// Handler 組裝所有 handler 與路由
func (app *ApplicationContext) Handler() http.Handler {
	var health handler.Pinger
	if sqlDB, err := app.gormDB.DB(); err == nil {
		health = sqlDB
	}
	server := api.NewServer(
		handler.NewAuthHandler(app.AuthService),
		handler.NewBookHandler(app.BookService),
		handler.NewInventoryHandler(app.InventoryService),
		handler.NewCartHandler(app.CartService),
		handler.NewOrderHandler(app.CheckoutService, app.OrderService),
		handler.NewUserHandler(app.UserService),
		handler.NewHealthHandler(health),
	)
	return router.SetupRouter(server, app.AuthService, app.CheckoutLimiter, app.Logger)
}

/*
Shutdown 關閉順序無相依，平行關閉
任何一個失敗都不影響其他資源關閉
*/
func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	app.Logger.Info().Msg("Start application shutdown")

	var g errgroup.Group
	if app.CheckoutLimiter != nil {
		g.Go(func() error {
			app.CheckoutLimiter.Stop()
			return nil
		})
	}
	if app.OrderProducer != nil {
		g.Go(func() error {
			if err := app.OrderProducer.Close(); err != nil {
				return fmt.Errorf("close kafka producer: %w", err)
			}
			return nil
		})
	}
	if app.RedisClient != nil {
		g.Go(func() error {
			if err := app.RedisClient.Close(); err != nil {
				return fmt.Errorf("close redis: %w", err)
			}
			return nil
		})
	}
	if app.DbDao != nil {
		g.Go(func() error {
			if err := app.DbDao.Close(); err != nil {
				return fmt.Errorf("close database: %w", err)
			}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		app.Logger.Info().Msg("Application shutdown complete")
		return err
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %w", ctx.Err())
	}
}
