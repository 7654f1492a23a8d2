package repository

import (
	"testing"

	"token-radar/internal/radar/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRepositoryWithoutBackends(t *testing.T) {
	r := New(config.Config{}, zap.NewNop())
	assert.Nil(t, r.GetDB())
	assert.Nil(t, r.GetRDB())
	assert.Nil(t, r.GetMQ())
	assert.NoError(t, r.Close())
}

func TestRepositoryKafkaWriterIsLazy(t *testing.T) {
	// kafka.Writer 在首次写入前不建立连接
	r := New(config.Config{Kafka: config.KafkaConfig{Brokers: "127.0.0.1:1,127.0.0.1:2"}}, zap.NewNop())
	mq := r.GetMQ()
	if assert.NotNil(t, mq) {
		assert.NotNil(t, mq.Addr)
	}
	assert.NoError(t, r.Close())
}
