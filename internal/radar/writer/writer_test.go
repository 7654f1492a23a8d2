package writer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"token-radar/internal/radar/model"

	"github.com/bytedance/sonic"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBatchWriter struct {
	mu      sync.Mutex
	batches [][]model.Token
	closed  bool
}

func (f *fakeBatchWriter) BWrite(ctx context.Context, batch []model.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, append([]model.Token(nil), batch...))
	return nil
}

func (f *fakeBatchWriter) Close() error {
	f.closed = true
	return nil
}

func (f *fakeBatchWriter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

type fakeMQ struct {
	fails int
	calls int
	msgs  []kafka.Message
}

func (f *fakeMQ) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.calls++
	if f.calls <= f.fails {
		return errors.New("leader not available")
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func TestAsyncBatchWriterFlushesBySize(t *testing.T) {
	fw := &fakeBatchWriter{}
	w := NewAsyncBatchWriter[model.Token](zap.NewNop(), fw, 2, time.Hour, "test", 1)
	w.Start(context.Background())

	for i := 0; i < 5; i++ {
		w.Submit(model.Token{Address: "0x1"})
	}
	require.Eventually(t, func() bool { return fw.count() == 4 }, time.Second, 5*time.Millisecond)

	// Close 写出剩余不满一批的数据
	w.Close()
	assert.Equal(t, 5, fw.count())
	assert.True(t, fw.closed)
}

func TestAsyncBatchWriterFlushesByInterval(t *testing.T) {
	fw := &fakeBatchWriter{}
	w := NewAsyncBatchWriter[model.Token](zap.NewNop(), fw, 100, 10*time.Millisecond, "test", 1)
	w.Start(context.Background())
	defer w.Close()

	w.Submit(model.Token{Address: "0x1"})
	assert.Eventually(t, func() bool { return fw.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestKafkaTokenWriterRetries(t *testing.T) {
	mq := &fakeMQ{fails: 2}
	w := NewKafkaTokenWriter(mq, zap.NewNop(), "token-radar.new-tokens")

	err := w.BWrite(context.Background(), []model.Token{{Address: "0xabc", Symbol: "PEPE"}})
	require.NoError(t, err)
	assert.Equal(t, 3, mq.calls)
	require.Len(t, mq.msgs, 1)
	assert.Equal(t, "0xabc", string(mq.msgs[0].Key))
	assert.Equal(t, "token-radar.new-tokens", mq.msgs[0].Topic)

	var event TokenDiscoveredEvent
	require.NoError(t, sonic.Unmarshal(mq.msgs[0].Value, &event))
	assert.Equal(t, "token.discovered", event.Event)
	assert.Equal(t, "PEPE", event.Token.Symbol)

	mq = &fakeMQ{fails: RETRY_COUNT}
	w = NewKafkaTokenWriter(mq, zap.NewNop(), "t")
	assert.Error(t, w.BWrite(context.Background(), []model.Token{{Address: "0x1"}}))
	assert.NoError(t, w.BWrite(context.Background(), nil))
}

func TestTokenPublisher(t *testing.T) {
	fw := &fakeBatchWriter{}
	async := NewAsyncBatchWriter[model.Token](zap.NewNop(), fw, 10, time.Hour, "publisher", 1)
	async.Start(context.Background())

	p := NewTokenPublisher(async)
	require.NoError(t, p.Publish(context.Background(), []model.Token{{Address: "0x1"}, {Address: "0x2"}}))
	async.Close()
	assert.Equal(t, 2, fw.count())
}
