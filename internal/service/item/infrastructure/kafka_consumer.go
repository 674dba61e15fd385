// internal/service/item/infrastructure/kafka_consumer.go
package infrastructure

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"itemservice/internal/pkg/logger"
	"itemservice/internal/pkg/mq"
	"itemservice/internal/service/item/application"
	"itemservice/internal/service/item/domain"
	"itemservice/internal/tracing"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

// OrderItemConsumerAdapter 是驱动适配器：监听订单商品事件并驱动库存更新引擎。
// 传输层是 at-least-once，重复投递由引擎的更新日志吸收。
type OrderItemConsumerAdapter struct {
	reader    *kafka.Reader
	engine    *application.StockUpdateService
	publisher domain.ResultPublisher

	failureHandler *mq.FailureHandler

	// 锁超时的重试策略属于网关层，不属于引擎
	retryMax     int
	retryBackoff time.Duration

	wg      sync.WaitGroup
	stopped atomic.Bool
}

func NewOrderItemConsumerAdapter(
	reader *kafka.Reader,
	engine *application.StockUpdateService,
	publisher domain.ResultPublisher,
	failureHandler *mq.FailureHandler,
	retryMax int,
	retryBackoff time.Duration,
) *OrderItemConsumerAdapter {
	return &OrderItemConsumerAdapter{
		reader:         reader,
		engine:         engine,
		publisher:      publisher,
		failureHandler: failureHandler,
		retryMax:       retryMax,
		retryBackoff:   retryBackoff,
	}
}

// Start 开始消费。这是一个长期运行的方法。
func (a *OrderItemConsumerAdapter) Start(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		logger.Ctx(ctx).Info().Str("topic", a.reader.Config().Topic).Msg("✅ order item consumer started")
		for {
			if a.stopped.Load() {
				return
			}
			// 用 FetchMessage 而不是 ReadMessage，以便控制提交时机和退出逻辑
			msg, err := a.reader.FetchMessage(ctx)
			if err != nil {
				if a.stopped.Load() || ctx.Err() != nil {
					logger.Ctx(ctx).Info().Msg("🛑 order item consumer shutting down")
					return
				}
				logger.Ctx(ctx).Error().Err(err).Msg("could not read message, retrying")
				time.Sleep(1 * time.Second) // 避免快速失败循环
				continue
			}

			// 重建 trace 上下文，并注入带 trace_id 的 logger
			propagator := otel.GetTextMapPropagator()
			headerCarrier := mq.KafkaHeaderCarrier(msg.Headers)
			msgCtx := propagator.Extract(ctx, &headerCarrier)
			msgCtx = logger.WithTraceID(msgCtx, tracing.GetTraceIDFromContext(msgCtx))

			if err := a.processMessage(msgCtx, msg); err != nil {
				// 关停途中被取消的消息不是毒消息：不投 DLT 也不提交 offset，
				// 留给下一任消费者重新投递
				if ctx.Err() != nil {
					logger.Ctx(ctx).Info().Msg("🛑 order item consumer shutting down")
					return
				}
				a.failureHandler.Handle(msgCtx, msg, err)
			}

			// 无论成功或失败（已移交 DLT），都提交 offset
			if err := a.reader.CommitMessages(ctx, msg); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("failed to commit messages")
			}
		}
	}()
}

// Stop 优雅地停止消费者
func (a *OrderItemConsumerAdapter) Stop(ctx context.Context) {
	a.stopped.Store(true)
	a.reader.Close()
	a.wg.Wait()
	logger.Ctx(ctx).Info().Msg("✅ order item consumer stopped")
}

// processMessage 反序列化事件、调用引擎并发布结果。
// 返回非 nil 表示消息应进入死信主题。
func (a *OrderItemConsumerAdapter) processMessage(ctx context.Context, msg kafka.Message) error {
	var event domain.OrderItemEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return errors.Wrap(err, "malformed order item event")
	}

	result, err := a.updateWithRetry(ctx, &event)
	if err != nil {
		// 取消不是业务终态，既不发 FAILED 结果也不把消息当作毒消息
		if ctx.Err() != nil {
			return err
		}
		// 终态失败：对外仍然要给出一个 FAILED 结果，消息本身移交 DLT
		if result == nil {
			result = domain.ResultFromEvent(&event, 0, domain.StatusFailed)
		}
		a.publishResult(ctx, result)
		return err
	}

	a.publishResult(ctx, result)
	return nil
}

// updateWithRetry 只对锁超时做有限次退避重试，其他错误直接向上
func (a *OrderItemConsumerAdapter) updateWithRetry(ctx context.Context, event *domain.OrderItemEvent) (*domain.StockUpdateResult, error) {
	var result *domain.StockUpdateResult
	var err error

	for attempt := 0; ; attempt++ {
		result, err = a.engine.UpdateStock(ctx, event, domain.ModeStockConsumption)
		if err == nil || !errors.Is(err, domain.ErrLockAcquisitionTimeout) {
			return result, err
		}
		if attempt >= a.retryMax {
			logger.Ctx(ctx).Warn().
				Int64("orderId", event.OrderID).Int64("itemId", event.ItemID).
				Int("attempts", attempt+1).
				Msg("giving up after repeated lock acquisition timeouts")
			return result, err
		}

		backoff := a.retryBackoff * time.Duration(attempt+1)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// publishResult 发布失败只记录。决策已提交，更新日志才是结果的持久化记录
func (a *OrderItemConsumerAdapter) publishResult(ctx context.Context, result *domain.StockUpdateResult) {
	if err := a.publisher.Publish(ctx, result); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Int64("orderId", result.OrderID).Int64("itemId", result.ItemID).
			Msg("result publish failed; decision remains committed")
	}
}
