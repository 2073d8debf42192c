package producer

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

type OrderEventType string

const (
	OrderEventPlaced OrderEventType = "order_placed"

	HeaderEventType = "event_type"
	HeaderTimestamp = "timestamp"
)

var ErrProducerClosed = errors.New("order producer closed")

// MessageWriter kafka.Writer 的子集合，測試時可替換
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type OrderPlacedItem struct {
	BookID    uint            `json:"book_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderPlacedEvent struct {
	OrderID     uint              `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	UserID      uint              `json:"user_id"`
	TotalPrice  decimal.Decimal   `json:"total_price"`
	Status      model.OrderStatus `json:"status"`
	Items       []OrderPlacedItem `json:"items"`
	PlacedAt    time.Time         `json:"placed_at"`
}

type OrderProducer struct {
	writer        MessageWriter
	retryAttempts int
	closed        atomic.Bool
}

func NewOrderProducer(writer MessageWriter, retryAttempts int) *OrderProducer {
	return &OrderProducer{writer: writer, retryAttempts: retryAttempts}
}

// NewKafkaWriter 同步寫入，RequireOne 確保 leader 收到
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		MaxAttempts:  3,
		Transport: &kafka.Transport{
			Dial: func(ctx context.Context, network string, address string) (net.Conn, error) {
				dialer := &kafka.Dialer{
					Timeout:   10 * time.Second,
					DualStack: true,
					KeepAlive: 30 * time.Second,
				}
				return dialer.DialContext(ctx, network, address)
			},
		},
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error().Msgf("kafka order producer: "+msg, args...)
		}),
		Compression: kafka.Snappy,
	}
}

func (p *OrderProducer) OrderPlaced(ctx context.Context, order *model.Order) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	msg, err := convertToMessage(OrderEventPlaced, order, time.Now())
	if err != nil {
		return err
	}

	for attempt := 0; attempt <= p.retryAttempts; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("publish %s: %w", OrderEventPlaced, ctx.Err())
		}
		if err = p.writer.WriteMessages(ctx, msg); err == nil {
			return nil
		}
		if !isTemporary(err) {
			break
		}
	}
	return fmt.Errorf("publish %s: %w", OrderEventPlaced, err)
}

func (p *OrderProducer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}

func convertToMessage(eventType OrderEventType, order *model.Order, at time.Time) (kafka.Message, error) {
	event := OrderPlacedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		TotalPrice:  order.TotalPrice,
		Status:      order.Status,
		Items:       make([]OrderPlacedItem, 0, len(order.Items)),
		PlacedAt:    order.CreatedAt,
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, OrderPlacedItem{
			BookID:    item.BookID,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		})
	}

	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}

	timestamp := make([]byte, 8)
	binary.BigEndian.PutUint64(timestamp, uint64(at.UnixNano()))

	return kafka.Message{
		Key:   []byte(order.OrderNumber),
		Value: value,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(eventType)},
			{Key: HeaderTimestamp, Value: timestamp},
		},
	}, nil
}

func isTemporary(err error) bool {
	var kerr kafka.Error
	if errors.As(err, &kerr) {
		return kerr.Temporary()
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
