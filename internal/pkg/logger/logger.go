// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var root zerolog.Logger

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	root = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Init 设置全局日志级别和服务名字段，由各服务的 main 在启动时调用一次。
func Init(serviceName, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	root = zerolog.New(os.Stderr).
		Level(lvl).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// L 返回根 logger
func L() *zerolog.Logger {
	return &root
}

// Ctx 返回一个附带了当前追踪上下文 (trace_id / span_id) 的 logger，
// 便于在 Jaeger 和日志之间互相跳转。
func Ctx(ctx context.Context) *zerolog.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return &root
	}
	l := root.With().
		Str("trace_id", spanCtx.TraceID().String()).
		Str("span_id", spanCtx.SpanID().String()).
		Logger()
	return &l
}
