package repository

import (
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"
)

type RedisClient = *redis.Client
type DBClient = *gorm.DB
type MQClient = *kafka.Writer

// Repository 外部存储连接，未配置的返回 nil
type Repository interface {
	GetRDB() RedisClient
	GetDB() DBClient
	GetMQ() MQClient
	Close() error
}
