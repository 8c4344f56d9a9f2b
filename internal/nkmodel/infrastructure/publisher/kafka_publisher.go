// Package publisher 将模拟事件写入 Kafka
package publisher

import (
	"context"

	"github.com/wyfcoding/nkmodel/internal/nkmodel/domain"
)

// producer *mq.KafkaProducer 满足该接口
type producer interface {
	SendMessage(ctx context.Context, topic, key string, value any) error
}

// KafkaEventPublisher 事件发布器，key 为 RunID，保证同一记录的事件有序
type KafkaEventPublisher struct {
	producer producer
}

// NewKafkaEventPublisher 创建事件发布器
func NewKafkaEventPublisher(p producer) domain.EventPublisher {
	return &KafkaEventPublisher{producer: p}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	return p.producer.SendMessage(ctx, topic, key, event)
}

// NoopPublisher kafka 关闭时使用
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, string, any) error { return nil }
