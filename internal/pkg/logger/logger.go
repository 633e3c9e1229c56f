// internal/pkg/logger/logger.go

// Package logger 封装全局 zerolog 实例，并在有活跃 Span 时
// 自动给日志附上 trace_id，方便与 Jaeger 中的链路互查。
package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var base = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Init 配置全局日志实例，所有日志带上服务名。
func Init(serviceName string) {
	zerolog.TimeFieldFormat = time.RFC3339
	base = zerolog.New(os.Stderr).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Logger 返回全局日志实例。
func Logger() *zerolog.Logger {
	return &base
}

// Ctx 返回绑定了追踪上下文的日志实例。
func Ctx(ctx context.Context) *zerolog.Logger {
	l := base
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		l = l.With().Str("trace_id", sc.TraceID().String()).Logger()
	}
	return &l
}
