// internal/pkg/mq/failure_handler.go
package mq

import (
	"context"

	"itemservice/internal/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// FailureHandler 把处理失败的消息转投死信主题（DLT），
// 原始消息体保持不变，失败原因附在 header 上供人工排查。
type FailureHandler struct {
	dltWriter *kafka.Writer
}

func NewFailureHandler(dltWriter *kafka.Writer) *FailureHandler {
	return &FailureHandler{dltWriter: dltWriter}
}

// Handle 投递死信。DLT 写入失败只能记日志，此时消息会随 offset 提交而丢失，
// 依赖更新日志作为最终审计来源。
func (h *FailureHandler) Handle(ctx context.Context, msg kafka.Message, cause error) {
	dltMsg := kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
		Headers: append(msg.Headers, kafka.Header{
			Key:   "x-dlt-reason",
			Value: []byte(cause.Error()),
		}),
	}

	if err := h.dltWriter.WriteMessages(ctx, dltMsg); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("key", string(msg.Key)).
			Str("cause", cause.Error()).
			Msg("failed to forward message to DLT")
		return
	}
	logger.Ctx(ctx).Warn().
		Str("key", string(msg.Key)).
		Str("cause", cause.Error()).
		Msg("message forwarded to DLT")
}
