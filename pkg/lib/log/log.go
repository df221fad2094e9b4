// Package log 提供设备客户端统一日志接口
//
// 基于 Go 标准库 log/slog 封装。组件通过 Logger("组件名") 获取日志器，
// 每条日志自动附带 component 属性。
//
// 环境变量：
//   - DEVCLIENT_LOG_LEVEL: debug / info / warn / error（默认 info）
//   - DEVCLIENT_LOG_FORMAT: text 或 json（默认 text）
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// 日志级别常量（从 slog 导出，方便使用）
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// 环境变量名
const (
	EnvLogLevel  = "DEVCLIENT_LOG_LEVEL"
	EnvLogFormat = "DEVCLIENT_LOG_FORMAT"
)

// SetDefault 设置默认 logger
func SetDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

// New 创建文本格式 logger
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewJSON 创建 JSON 格式 logger
func NewJSON(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard 返回丢弃所有输出的 logger
//
// 主要用于测试。
func Discard() *slog.Logger {
	return New(io.Discard, LevelError)
}

// SetupFromEnv 根据环境变量配置默认 logger，输出到 w
func SetupFromEnv(w io.Writer) *slog.Logger {
	level, _ := ParseLevel(os.Getenv(EnvLogLevel))

	var l *slog.Logger
	if strings.EqualFold(os.Getenv(EnvLogFormat), "json") {
		l = NewJSON(w, level)
	} else {
		l = New(w, level)
	}
	SetDefault(l)
	return l
}

// ParseLevel 解析日志级别字符串
//
// 无法识别时返回 LevelInfo 和 false。
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 懒加载 logger
//
// 每次日志调用时都从 slog.Default() 获取最新的 handler，
// 支持在运行时切换日志输出目标。
//
//	var logger = log.Logger("core/channelmgr")
//	logger.Info("通道已注册", "id", id)
type LazyLogger struct {
	component string
}

// Logger 返回带组件名的 LazyLogger
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

func (l *LazyLogger) current() *slog.Logger {
	return slog.Default().With("component", l.component)
}

// Debug 输出 Debug 级别日志
func (l *LazyLogger) Debug(msg string, args ...any) { l.current().Debug(msg, args...) }

// Info 输出 Info 级别日志
func (l *LazyLogger) Info(msg string, args ...any) { l.current().Info(msg, args...) }

// Warn 输出 Warn 级别日志
func (l *LazyLogger) Warn(msg string, args ...any) { l.current().Warn(msg, args...) }

// Error 输出 Error 级别日志
func (l *LazyLogger) Error(msg string, args ...any) { l.current().Error(msg, args...) }

// DebugContext 带 context 的 Debug 日志
func (l *LazyLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.current().DebugContext(ctx, msg, args...)
}

// WarnContext 带 context 的 Warn 日志
func (l *LazyLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.current().WarnContext(ctx, msg, args...)
}

// With 返回绑定当前默认 handler 的 *slog.Logger
func (l *LazyLogger) With(args ...any) *slog.Logger {
	return l.current().With(args...)
}
