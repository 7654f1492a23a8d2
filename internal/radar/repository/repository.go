package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"token-radar/internal/radar/config"
	"token-radar/internal/radar/dao"
	"token-radar/pkg/database"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func New(cfg config.Config, logger *zap.Logger) Repository {
	r := &repositoryImpl{
		cfg:    cfg,
		logger: logger,
	}
	r.init()
	return r
}

type repositoryImpl struct {
	cfg    config.Config
	logger *zap.Logger
	db     *gorm.DB
	rdb    *redis.Client
	mq     *kafka.Writer
}

// init 各组件均可选，连接失败只记录日志
func (r *repositoryImpl) init() {
	if strings.TrimSpace(r.cfg.Database.DSN) != "" {
		db, err := database.Open(r.cfg.Database.Driver, r.cfg.Database.DSN)
		if err != nil {
			r.logger.Warn("failed to connect to database, continue without mirror", zap.Error(err))
		} else if err := dao.AutoMigrate(db); err != nil {
			r.logger.Warn("failed to migrate tokens table, continue without mirror", zap.Error(err))
		} else {
			r.db = db
		}
	} else {
		r.logger.Info("database dsn empty, skip database initialization")
	}

	if strings.TrimSpace(r.cfg.Redis.Address) != "" {
		r.rdb = redis.NewClient(&redis.Options{
			Addr:     r.cfg.Redis.Address,
			Password: r.cfg.Redis.Password,
			DB:       r.cfg.Redis.DB,
			PoolSize: 20,
		})
		if err := r.rdb.Ping(context.Background()).Err(); err != nil {
			r.logger.Warn("failed to connect to redis, continue", zap.Error(err))
		}
	}

	if strings.TrimSpace(r.cfg.Kafka.Brokers) != "" {
		brokers := strings.Split(r.cfg.Kafka.Brokers, ",")
		r.mq = &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			BatchSize:    100,
			BatchBytes:   1024 * 1024, // 1MB
			RequiredAcks: kafka.RequireOne,
			Compression:  kafka.Snappy,
			MaxAttempts:  5,
			WriteTimeout: 500 * time.Millisecond,
		}
	}
}

func (r *repositoryImpl) GetRDB() *redis.Client {
	return r.rdb
}

func (r *repositoryImpl) GetDB() *gorm.DB {
	return r.db
}

func (r *repositoryImpl) GetMQ() MQClient {
	return r.mq
}

func (r *repositoryImpl) Close() error {
	var errs []error
	if r.mq != nil {
		errs = append(errs, r.mq.Close())
	}
	if r.rdb != nil {
		errs = append(errs, r.rdb.Close())
	}
	if r.db != nil {
		if sqlDB, err := r.db.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
