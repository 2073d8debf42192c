package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
	"github.com/rs/zerolog"
)

type CheckoutState string

const (
	CheckoutIdle       CheckoutState = "idle"
	CheckoutValidating CheckoutState = "validating"
	CheckoutReserving  CheckoutState = "reserving"
	CheckoutPersisting CheckoutState = "persisting"
	CheckoutCommitted  CheckoutState = "committed"
	CheckoutRolledBack CheckoutState = "rolled_back"
)

const (
	defaultCompensationTimeout = 5 * time.Second
	defaultPublishTimeout      = 5 * time.Second
)

// OrderEventPublisher 訂單成立後的通知，失敗不影響已成立的訂單
type OrderEventPublisher interface {
	OrderPlaced(ctx context.Context, order *model.Order) error
}

type NopOrderEventPublisher struct{}

func (NopOrderEventPublisher) OrderPlaced(ctx context.Context, order *model.Order) error {
	return nil
}

type Reservation struct {
	BookID   uint
	Quantity int
}

// CheckoutResult 不會是nil；Order 只有在訂單成立時才有值
type CheckoutResult struct {
	Order        *model.Order
	States       []CheckoutState
	Reservations []Reservation
}

func (r *CheckoutResult) FinalState() CheckoutState {
	if len(r.States) == 0 {
		return CheckoutIdle
	}
	return r.States[len(r.States)-1]
}

type ICheckoutService interface {
	PlaceOrder(ctx context.Context, customerID uint) (*CheckoutResult, error)
}

var _ ICheckoutService = (*CheckoutService)(nil)

type CheckoutOption func(*CheckoutService)

// WithCartClearAfterCommit 訂單commit後才清購物車，清除失敗回傳 ErrCartClearFailure 但訂單仍成立
func WithCartClearAfterCommit() CheckoutOption {
	return func(s *CheckoutService) {
		s.clearAfterCommit = true
	}
}

func WithCheckoutTimeout(d time.Duration) CheckoutOption {
	return func(s *CheckoutService) {
		s.timeout = d
	}
}

func WithCompensationTimeout(d time.Duration) CheckoutOption {
	return func(s *CheckoutService) {
		s.compensationTimeout = d
	}
}

func WithEventPublisher(p OrderEventPublisher) CheckoutOption {
	return func(s *CheckoutService) {
		s.publisher = p
	}
}

func WithAssembler(a *OrderAssembler) CheckoutOption {
	return func(s *CheckoutService) {
		s.assembler = a
	}
}

/*
下單流程:
	Idle -> Validating -> Reserving -> Persisting -> Committed
任何一步失敗 -> RolledBack，已保留的庫存全部加回 (補償)
補償使用脫離呼叫端的ctx，request 被取消也一定會執行
*/
type CheckoutService struct {
	uow       db.UnitOfWork
	snapshots CartSnapshotReader
	ledger    StockLedger
	carts     db.ICartRepository
	assembler *OrderAssembler
	publisher OrderEventPublisher
	logger    zerolog.Logger

	clearAfterCommit    bool
	timeout             time.Duration
	compensationTimeout time.Duration
}

func NewCheckoutService(
	uow db.UnitOfWork,
	snapshots CartSnapshotReader,
	ledger StockLedger,
	carts db.ICartRepository,
	logger zerolog.Logger,
	opts ...CheckoutOption,
) *CheckoutService {
	if uow == nil || snapshots == nil || ledger == nil || carts == nil {
		panic("checkout service dependencies cannot be nil")
	}
	s := &CheckoutService{
		uow:                 uow,
		snapshots:           snapshots,
		ledger:              ledger,
		carts:               carts,
		assembler:           NewOrderAssembler(),
		publisher:           NopOrderEventPublisher{},
		logger:              logger.With().Str("component", "checkout").Logger(),
		compensationTimeout: defaultCompensationTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type checkoutRun struct {
	customerID uint
	result     *CheckoutResult
	logger     zerolog.Logger
}

func (r *checkoutRun) transition(state CheckoutState) {
	r.result.States = append(r.result.States, state)
	r.logger.Debug().Str("checkout_state", string(state)).Msg("checkout state changed")
}

/*
PlaceOrder 把購物車轉成訂單，全有或全無
錯誤:
  - ErrEmptyCart: 購物車是空的，沒有任何副作用
  - ErrInsufficientStock / ErrBookNotFound: 保留庫存失敗，已保留的已加回
  - ErrPersistenceFailure: 寫入訂單失敗，已保留的已加回
  - ErrCartClearFailure: 只在 WithCartClearAfterCommit 模式，訂單已成立
  - ctx 取消或逾時: 已保留的已加回
*/
func (s *CheckoutService) PlaceOrder(ctx context.Context, customerID uint) (*CheckoutResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	run := &checkoutRun{
		customerID: customerID,
		result:     &CheckoutResult{States: []CheckoutState{CheckoutIdle}},
		logger:     s.logger.With().Uint("customer_id", customerID).Logger(),
	}

	// Validating
	run.transition(CheckoutValidating)
	snapshot, err := s.snapshots.Snapshot(ctx, customerID)
	if err != nil {
		return s.fail(ctx, run, fmt.Errorf("read cart: %w", err))
	}
	if snapshot.IsEmpty() {
		return s.fail(ctx, run, ErrEmptyCart)
	}

	// Reserving
	run.transition(CheckoutReserving)
	for _, line := range snapshot.Lines() {
		if err := ctx.Err(); err != nil {
			return s.fail(ctx, run, err)
		}
		if _, err := s.ledger.Reserve(ctx, line.BookID, line.Quantity); err != nil {
			return s.fail(ctx, run, err)
		}
		run.result.Reservations = append(run.result.Reservations, Reservation{BookID: line.BookID, Quantity: line.Quantity})
	}

	// Persisting
	run.transition(CheckoutPersisting)
	if err := ctx.Err(); err != nil {
		return s.fail(ctx, run, err)
	}
	order, err := s.assembler.Assemble(customerID, snapshot)
	if err != nil {
		return s.fail(ctx, run, err)
	}
	err = s.uow.Transaction(ctx, func(store db.Store) error {
		if err := store.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
		}
		if s.clearAfterCommit {
			return nil
		}
		if _, err := store.ClearCart(ctx, customerID); err != nil {
			return fmt.Errorf("%w: clear cart: %w", ErrPersistenceFailure, err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrPersistenceFailure) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
		}
		return s.fail(ctx, run, err)
	}

	// Committed
	run.transition(CheckoutCommitted)
	run.result.Order = order
	run.logger.Info().
		Str("order_number", order.OrderNumber).
		Str("total_price", order.TotalPrice.StringFixed(2)).
		Int("items", len(order.Items)).
		Msg("order placed")

	var clearErr error
	if s.clearAfterCommit {
		if _, err := s.carts.ClearCart(context.WithoutCancel(ctx), customerID); err != nil {
			clearErr = fmt.Errorf("%w: %w", ErrCartClearFailure, err)
			run.logger.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("clear cart after commit failed")
		}
	}

	s.publish(ctx, run, order)
	return run.result, clearErr
}

func (s *CheckoutService) fail(ctx context.Context, run *checkoutRun, cause error) (*CheckoutResult, error) {
	run.transition(CheckoutRolledBack)
	if len(run.result.Reservations) == 0 {
		return run.result, cause
	}

	if compErr := s.compensate(ctx, run); compErr != nil {
		return run.result, errors.Join(cause, compErr)
	}
	return run.result, cause
}

// compensate 反向加回本次呼叫保留的庫存，全部嘗試過才回傳
func (s *CheckoutService) compensate(ctx context.Context, run *checkoutRun) error {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.compensationTimeout)
	defer cancel()

	var errs []error
	reservations := run.result.Reservations
	for i := len(reservations) - 1; i >= 0; i-- {
		r := reservations[i]
		if _, err := s.ledger.Release(cctx, r.BookID, r.Quantity); err != nil {
			errs = append(errs, fmt.Errorf("compensate book %d x%d: %w", r.BookID, r.Quantity, err))
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		run.logger.Error().Err(err).Int("reservations", len(reservations)).Msg("compensating release failed")
		return err
	}
	run.logger.Info().Int("reservations", len(reservations)).Msg("reservations released")
	return nil
}

func (s *CheckoutService) publish(ctx context.Context, run *checkoutRun, order *model.Order) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultPublishTimeout)
	defer cancel()
	if err := s.publisher.OrderPlaced(pctx, order); err != nil {
		run.logger.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("publish order_placed failed")
	}
}
