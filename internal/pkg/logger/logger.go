// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// base 是全局的 zerolog 实例。
// 所有服务通过 Init 在启动时配置一次，之后统一通过 Ctx(ctx) 获取。
var base zerolog.Logger

func init() {
	// 未调用 Init 时的兜底配置，保证测试环境下日志可用
	base = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Init 在服务启动时初始化全局日志器。
// service 会作为固定字段出现在每条日志中，便于多服务混合采集时区分来源。
func Init(service string) {
	zerolog.TimeFieldFormat = time.RFC3339
	base = zerolog.New(os.Stderr).With().
		Timestamp().
		Str("service", service).
		Logger()
}

// Logger 返回全局日志器，用于没有请求上下文的场景（启动、关停）。
func Logger() *zerolog.Logger {
	return &base
}

// Ctx 返回一个携带追踪信息的日志器。
// 如果 ctx 中存在有效的 Span，会自动附加 trace_id / span_id 字段，
// 这样日志平台可以和 Jaeger 中的链路互相跳转。
func Ctx(ctx context.Context) *zerolog.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return &base
	}
	l := base.With().
		Str("trace_id", spanCtx.TraceID().String()).
		Str("span_id", spanCtx.SpanID().String()).
		Logger()
	return &l
}
