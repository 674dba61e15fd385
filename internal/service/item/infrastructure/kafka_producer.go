// internal/service/item/infrastructure/kafka_producer.go
package infrastructure

import (
	"context"
	"encoding/json"
	"strconv"

	"itemservice/internal/pkg/logger"
	"itemservice/internal/pkg/mq"
	"itemservice/internal/service/item/domain"

	"github.com/segmentio/kafka-go"
)

// ResultProducerAdapter 是 domain.ResultPublisher 的 Kafka 实现。
// 以 itemId 作为消息 key，同一商品的结果落在同一分区。
type ResultProducerAdapter struct {
	writer *kafka.Writer
}

func NewResultProducerAdapter(writer *kafka.Writer) *ResultProducerAdapter {
	return &ResultProducerAdapter{writer: writer}
}

func (p *ResultProducerAdapter) Publish(ctx context.Context, result *domain.StockUpdateResult) error {
	value, err := json.Marshal(result)
	if err != nil {
		return err
	}

	key := []byte(strconv.FormatInt(result.ItemID, 10))
	if err := mq.ProduceMessage(ctx, p.writer, key, value); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Int64("orderId", result.OrderID).Int64("itemId", result.ItemID).
			Msg("failed to publish stock update result")
		return err
	}
	return nil
}
