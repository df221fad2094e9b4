package logupload

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	pkgif "github.com/dep2p/go-devclient/pkg/interfaces"
	"github.com/dep2p/go-devclient/pkg/types"
)

// StatusSource 提供日志存储状态
type StatusSource interface {
	Status() StorageStatus
}

// StatusFunc 函数形式的 StatusSource
type StatusFunc func() StorageStatus

// Status 实现 StatusSource
func (f StatusFunc) Status() StorageStatus { return f() }

// Uploader 日志上传调度
type Uploader struct {
	finder   pkgif.ChannelFinder
	strategy Strategy
	source   StatusSource
	clock    clock.Clock
}

// UploaderOption Uploader 选项
type UploaderOption func(*Uploader)

// WithClock 设置时钟
func WithClock(clk clock.Clock) UploaderOption {
	return func(u *Uploader) {
		u.clock = clk
	}
}

// NewUploader 创建日志上传调度
func NewUploader(finder pkgif.ChannelFinder, strategy Strategy, source StatusSource, opts ...UploaderOption) (*Uploader, error) {
	if finder == nil || strategy == nil {
		return nil, fmt.Errorf("%w: finder and strategy are required", types.ErrBadParam)
	}
	if source == nil {
		source = StatusFunc(func() StorageStatus { return StorageStatus{} })
	}

	u := &Uploader{
		finder:   finder,
		strategy: strategy,
		source:   source,
		clock:    clock.New(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u, nil
}

// Check 询问策略，需要上传时请求日志通道同步
//
// 返回是否触发了上传。没有承载日志服务的通道时返回 types.ErrNotFound。
func (u *Uploader) Check() (bool, error) {
	if u.strategy.Decide(u.source.Status()) != DecisionUpload {
		return false, nil
	}

	ch, ok := u.finder.FindChannelForService(types.ServiceLogging)
	if !ok {
		return false, fmt.Errorf("%w: no channel for %s", types.ErrNotFound, types.ServiceLogging)
	}
	if err := ch.Sync([]types.ServiceType{types.ServiceLogging}); err != nil {
		return false, fmt.Errorf("sync logging: %w", err)
	}
	return true, nil
}

// Run 按 interval 周期执行 Check，直到 ctx 取消
func (u *Uploader) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", types.ErrBadParam)
	}

	ticker := u.clock.Ticker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := u.Check(); err != nil {
				logger.Warn("日志上传检查失败", "error", err)
			}
		}
	}
}
