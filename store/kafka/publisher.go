package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/kochabx/docvault/document"
)

// messageWriter 生产者写入接口，*Client 实现该接口
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// ActivityPublisher 将文档活动事件写入 Kafka，消息 key 为所有者
type ActivityPublisher struct {
	writer messageWriter
}

var _ document.ActivityPublisher = (*ActivityPublisher)(nil)

// NewActivityPublisher 事件写入客户端配置的主题
func NewActivityPublisher(c *Client) *ActivityPublisher {
	return &ActivityPublisher{writer: c}
}

// Publish 发布一条活动事件
func (p *ActivityPublisher) Publish(ctx context.Context, a document.Activity) error {
	value, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("kafka: encode activity: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(a.Owner),
		Value: value,
		Time:  a.Timestamp,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(a.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: publish activity: %w", err)
	}
	return nil
}
