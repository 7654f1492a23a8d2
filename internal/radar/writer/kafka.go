package writer

import (
	"context"
	"time"

	"token-radar/internal/radar/model"

	"github.com/bytedance/sonic"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const RETRY_COUNT = 3

// MessageWriter kafka.Writer 的最小接口，便于测试
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// TokenDiscoveredEvent 新 token 事件
type TokenDiscoveredEvent struct {
	Event        string      `json:"event"`
	Token        model.Token `json:"token"`
	DiscoveredAt int64       `json:"discoveredAt"` // 毫秒
}

type KafkaTokenWriter struct {
	mq MessageWriter
	tl *zap.Logger

	topic string
	now   func() time.Time
}

func NewKafkaTokenWriter(mq MessageWriter, tl *zap.Logger, topic string) *KafkaTokenWriter {
	return &KafkaTokenWriter{mq: mq, tl: tl, topic: topic, now: time.Now}
}

func (w *KafkaTokenWriter) BWrite(ctx context.Context, tokens []model.Token) error {
	if len(tokens) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(tokens))
	for _, t := range tokens {
		msg, err := w.marshalToMsg(t)
		if err != nil {
			w.tl.Warn("marshal token event failed", zap.String("address", t.Address), zap.Error(err))
			continue
		}
		msgs = append(msgs, msg)
	}

	newCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	// 重试机制
	var err error
	for attempt := 0; attempt < RETRY_COUNT; attempt++ {
		err = w.mq.WriteMessages(newCtx, msgs...)
		if err == nil {
			break
		}
	}
	if err != nil {
		w.tl.Warn("MQ write failed, exceeded the maximum number of retries", zap.Error(err))
		return err
	}
	return nil
}

func (w *KafkaTokenWriter) Close() error {
	return nil
}

func (w *KafkaTokenWriter) marshalToMsg(t model.Token) (kafka.Message, error) {
	event := TokenDiscoveredEvent{Event: "token.discovered", Token: t, DiscoveredAt: w.now().UnixMilli()}
	jsonData, err := sonic.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Topic: w.topic,
		Key:   []byte(t.Address),
		Value: jsonData,
	}, nil
}

// TokenPublisher 把新 token 投递到异步批量写入器
type TokenPublisher struct {
	async *AsyncBatchWriter[model.Token]
}

func NewTokenPublisher(async *AsyncBatchWriter[model.Token]) *TokenPublisher {
	return &TokenPublisher{async: async}
}

func (p *TokenPublisher) Publish(ctx context.Context, tokens []model.Token) error {
	for _, t := range tokens {
		p.async.Submit(t)
	}
	return nil
}
