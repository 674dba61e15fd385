package infrastructure

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"itemservice/internal/lock"
	"itemservice/internal/pkg/mq"
	"itemservice/internal/service/item/application"
	"itemservice/internal/service/item/domain"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

type stubItemRepo struct{}

func (stubItemRepo) FindByID(ctx context.Context, id int64) (*domain.Item, error) {
	return &domain.Item{ID: id, Name: "apple", Stock: 100}, nil
}
func (stubItemRepo) Create(ctx context.Context, item *domain.Item) error { return nil }

func (stubItemRepo) UpdateStock(ctx context.Context, itemID, newStock int64) error { return nil }

type stubLogRepo struct{}

func (stubLogRepo) FindByOrderIDAndItemID(ctx context.Context, orderID, itemID int64) (*domain.ItemUpdateLog, error) {
	return nil, nil
}
func (stubLogRepo) Append(ctx context.Context, entry *domain.ItemUpdateLog) error { return nil }
func (stubLogRepo) FindAllByOrderID(ctx context.Context, orderID int64) ([]*domain.ItemUpdateLog, error) {
	return nil, nil
}

// ctxAwareLockProvider 在 context 已取消时如实返回取消错误
type ctxAwareLockProvider struct{}

func (ctxAwareLockProvider) Acquire(ctx context.Context, key string, waitTimeout, holdTimeout time.Duration) (lock.Lease, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, lock.ErrAcquireTimeout
}

type recordingPublisher struct {
	mu      sync.Mutex
	results []*domain.StockUpdateResult
}

func (p *recordingPublisher) Publish(ctx context.Context, result *domain.StockUpdateResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, result)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.results)
}

func testEngine(locks lock.Provider) *application.StockUpdateService {
	return application.NewStockUpdateService(
		stubItemRepo{}, stubLogRepo{}, locks, nil,
		time.Second, 5*time.Second,
		otel.Tracer("test"),
	)
}

func orderItemMessage(t *testing.T) kafka.Message {
	t.Helper()
	value, err := json.Marshal(&domain.OrderItemEvent{
		OrderID: 1, ItemID: 1, ShopID: 1, Quantity: 10,
		OrderStatus: domain.StatusWaiting,
	})
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func TestProcessMessage_CancellationIsNotTerminal(t *testing.T) {
	publisher := &recordingPublisher{}
	adapter := NewOrderItemConsumerAdapter(
		nil, testEngine(ctxAwareLockProvider{}), publisher,
		mq.NewFailureHandler(mq.NewWriter([]string{"localhost:1"}, "dlt")),
		3, 10*time.Millisecond,
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := adapter.processMessage(ctx, orderItemMessage(t))

	require.Error(t, err)
	// 取消的消息会被重新投递，不发 FAILED 结果
	assert.Equal(t, 0, publisher.count())
}

func TestProcessMessage_TerminalFailurePublishesFailedResult(t *testing.T) {
	publisher := &recordingPublisher{}
	adapter := NewOrderItemConsumerAdapter(
		nil, testEngine(ctxAwareLockProvider{}), publisher,
		mq.NewFailureHandler(mq.NewWriter([]string{"localhost:1"}, "dlt")),
		0, time.Millisecond,
	)

	err := adapter.processMessage(context.Background(), orderItemMessage(t))

	require.ErrorIs(t, err, domain.ErrLockAcquisitionTimeout)
	require.Equal(t, 1, publisher.count())
	assert.Equal(t, domain.StatusFailed, publisher.results[0].OrderStatus)
}

func TestStop_UnblocksRunningConsumer(t *testing.T) {
	reader := mq.NewReader([]string{"localhost:1"}, "test-group", "order-item-requests")
	adapter := NewOrderItemConsumerAdapter(
		reader, testEngine(ctxAwareLockProvider{}), &recordingPublisher{},
		mq.NewFailureHandler(mq.NewWriter([]string{"localhost:1"}, "dlt")),
		0, time.Millisecond,
	)

	adapter.Start(context.Background())

	done := make(chan struct{})
	go func() {
		adapter.Stop(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not unblock the consumer loop")
	}
}
