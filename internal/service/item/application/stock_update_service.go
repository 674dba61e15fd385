// internal/service/item/application/stock_update_service.go
package application

import (
	"context"
	"time"

	"itemservice/internal/lock"
	"itemservice/internal/pkg/logger"
	"itemservice/internal/service/item/domain"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StockUpdateService 是库存更新引擎。对每个入站请求：
// 获取商品粒度的分布式租约，读当前库存，做成功/缺货决策，
// 在租约内先追加更新日志再回写库存，最后无条件释放租约并组装结果。
//
// 日志先行：决策以日志为权威记录。日志已写而库存落库失败时，
// 对外报 ErrStoreWriteFailure，两者的偏差交给对账流程，引擎不回滚日志。
type StockUpdateService struct {
	items domain.ItemRepository
	logs  domain.UpdateLogRepository
	locks lock.Provider
	rules *AdmissionRules

	waitTimeout time.Duration
	holdTimeout time.Duration
	tracer      trace.Tracer
}

func NewStockUpdateService(
	items domain.ItemRepository,
	logs domain.UpdateLogRepository,
	locks lock.Provider,
	rules *AdmissionRules,
	waitTimeout, holdTimeout time.Duration,
	tracer trace.Tracer,
) *StockUpdateService {
	return &StockUpdateService{
		items: items, logs: logs, locks: locks, rules: rules,
		waitTimeout: waitTimeout, holdTimeout: holdTimeout, tracer: tracer,
	}
}

// UpdateStock 对同一个 (orderId, itemId) 可以安全地调用多次：
// 第一次之后的调用返回当时记录的结果，不再产生副作用。
func (s *StockUpdateService) UpdateStock(ctx context.Context, event *domain.OrderItemEvent, mode domain.UpdateMode) (*domain.StockUpdateResult, error) {
	ctx, span := s.tracer.Start(ctx, "engine.UpdateStock")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("order.id", event.OrderID),
		attribute.Int64("item.id", event.ItemID),
		attribute.Int64("item.quantity", event.Quantity),
		attribute.String("update.mode", string(mode)),
	)

	// 前置条件：数量必须为正，且通过配置的准入规则
	if event.Quantity <= 0 {
		span.SetStatus(codes.Error, "non-positive quantity")
		return domain.ResultFromEvent(event, 0, domain.StatusFailed),
			errors.Wrapf(domain.ErrRequestRejected, "quantity must be positive, got %d", event.Quantity)
	}
	if pass, rule, err := s.rules.Check(event); err != nil {
		span.RecordError(err)
		return nil, err
	} else if !pass {
		span.SetStatus(codes.Error, "rejected by admission rule")
		logger.Ctx(ctx).Warn().Int64("orderId", event.OrderID).Int64("itemId", event.ItemID).
			Str("rule", rule).Msg("request rejected by admission rule")
		return domain.ResultFromEvent(event, 0, domain.StatusFailed),
			errors.Wrapf(domain.ErrRequestRejected, "rule %q", rule)
	}

	// 快路径去重：重复投递大多数在这里被吸收。
	// 与并发首写的竞态由租约内的再次检查兜底。
	if replayed, err := s.findReplay(ctx, event); err != nil {
		return nil, err
	} else if replayed != nil {
		span.AddEvent("idempotent replay (fast path)")
		return replayed, nil
	}

	// 有界等待获取商品粒度的租约
	lockStart := time.Now()
	lease, err := s.locks.Acquire(ctx, lock.ItemKey(event.ItemID), s.waitTimeout, s.holdTimeout)
	lockWaitSeconds.Observe(time.Since(lockStart).Seconds())
	if err != nil {
		if errors.Is(err, lock.ErrAcquireTimeout) {
			lockTimeoutTotal.Inc()
			span.SetStatus(codes.Error, "lock acquisition timeout")
			// 本次尝试不写日志，调用方可重试整个操作
			return nil, errors.Wrapf(domain.ErrLockAcquisitionTimeout, "item %d", event.ItemID)
		}
		span.RecordError(err)
		return nil, err
	}
	// 任何退出路径都释放租约。用独立的 context，请求被取消时也要把锁还回去；
	// 万一释放失败，还有锁服务侧的持有上限兜底。
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lease.Release(releaseCtx); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("key", lease.Key()).Msg("failed to release lease")
		}
	}()
	span.AddEvent("lease acquired")

	// 租约内的权威去重：同一商品的 (orderId, itemId) 检查和变更被同一把锁串行化
	if replayed, err := s.findReplay(ctx, event); err != nil {
		return nil, err
	} else if replayed != nil {
		span.AddEvent("idempotent replay (in lease)")
		return replayed, nil
	}

	// 租约内读当前库存
	item, err := s.items.FindByID(ctx, event.ItemID)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			span.SetStatus(codes.Error, "item not found")
			stockUpdateTotal.WithLabelValues(string(mode), string(domain.StatusFailed)).Inc()
			return domain.ResultFromEvent(event, 0, domain.StatusFailed), err
		}
		span.RecordError(err)
		return nil, err
	}

	var applied int64
	var status domain.OrderStatus
	switch mode {
	case domain.ModeStockRestock:
		applied, status = item.Restock(event.Quantity)
	default:
		applied, status = item.ConsumeStock(event.Quantity)
	}

	// 决策先落日志。日志追加失败时决策未被记录，两侧都没有变更，重试是安全的
	entry := domain.NewItemUpdateLog(event.OrderID, event.ItemID, applied, status)
	if err := s.logs.Append(ctx, entry); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update log append failed")
		return nil, errors.Wrapf(err, "failed to append update log for order %d item %d", event.OrderID, event.ItemID)
	}

	// 成功决策才回写库存
	if status == domain.StatusSucceeded && applied != 0 {
		if err := s.items.UpdateStock(ctx, item.ID, item.Stock); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "stock store write failed")
			stockUpdateTotal.WithLabelValues(string(mode), string(domain.StatusFailed)).Inc()
			logger.Ctx(ctx).Error().Err(err).
				Int64("orderId", event.OrderID).Int64("itemId", event.ItemID).
				Msg("stock write failed after decision was logged; update log is authoritative")
			return nil, errors.Wrapf(domain.ErrStoreWriteFailure, "item %d: %v", item.ID, err)
		}
	}

	stockUpdateTotal.WithLabelValues(string(mode), string(status)).Inc()
	logger.Ctx(ctx).Info().
		Int64("orderId", event.OrderID).Int64("itemId", event.ItemID).
		Int64("requested", event.Quantity).Int64("applied", applied).
		Str("status", string(status)).
		Msg("stock update decided")
	span.AddEvent("decision logged", trace.WithAttributes(attribute.String("status", string(status))))

	return domain.ResultFromEvent(event, applied, status), nil
}

// findReplay 查更新日志，存在即返回当时的结果
func (s *StockUpdateService) findReplay(ctx context.Context, event *domain.OrderItemEvent) (*domain.StockUpdateResult, error) {
	entry, err := s.logs.FindByOrderIDAndItemID(ctx, event.OrderID, event.ItemID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to look up update log for order %d item %d", event.OrderID, event.ItemID)
	}
	if entry == nil {
		return nil, nil
	}
	stockUpdateReplayTotal.Inc()
	logger.Ctx(ctx).Info().
		Int64("orderId", event.OrderID).Int64("itemId", event.ItemID).
		Str("status", string(entry.OrderStatus)).
		Msg("duplicate request resolved by idempotent replay")
	return entry.ToResult(), nil
}
