package logger

import (
	"context"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger   *zap.Logger
	logLevel = zap.NewAtomicLevel()
)

// Options 日志输出配置
type Options struct {
	Dir        string // 日志目录，默认 logs
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Console    bool // 是否同时输出到控制台
}

func DefaultOptions() Options {
	return Options{
		Dir:        "logs",
		MaxSizeMB:  200,
		MaxBackups: 7,
		MaxAgeDays: 7,
		Console:    true,
	}
}

// NewLogger 创建带文件轮转的 root logger
func NewLogger(serviceName string) *zap.Logger {
	return NewLoggerWithOptions(serviceName, DefaultOptions())
}

func NewLoggerWithOptions(serviceName string, opts Options) *zap.Logger {
	if opts.Dir == "" {
		opts.Dir = "logs"
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		panic(err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.LevelKey = "level"
	encoderConfig.MessageKey = "msg"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, serviceName+".log"),
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotator), logLevel),
	}
	if opts.Console {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(os.Stdout),
			zap.InfoLevel,
		))
	}

	logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller()).With(zap.String("service", serviceName))
	return logger
}

// SetLogLevel 运行时调整日志级别，非法级别忽略
func SetLogLevel(level string) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return
	}
	logLevel.SetLevel(zapLevel)
	if logger != nil {
		logger.Info("Log level set to", zap.String("level", level))
	}
}

// Level 当前日志级别
func Level() zapcore.Level {
	return logLevel.Level()
}

// WithTrace 把 ctx 中的 trace/span id 注入 logger
func WithTrace(ctx context.Context, l *zap.Logger) *zap.Logger {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return l
	}
	return l.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}
