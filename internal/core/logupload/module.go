package logupload

import (
	"context"
	"errors"
	"sync"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-devclient/config"
	pkgif "github.com/dep2p/go-devclient/pkg/interfaces"
	"github.com/dep2p/go-devclient/pkg/lib/log"
)

var logger = log.Logger("core/logupload")

// Params 日志上传依赖参数
type Params struct {
	fx.In

	Finder     pkgif.ChannelFinder
	UnifiedCfg *config.Config `optional:"true"`
	Source     StatusSource   `optional:"true"`
	Clock      clock.Clock    `optional:"true"`
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("logupload",
		fx.Provide(ProvideUploader),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideUploader 按配置创建上传调度
func ProvideUploader(p Params) (*Uploader, error) {
	cfg := config.DefaultLogUploadConfig()
	if p.UnifiedCfg != nil {
		cfg = p.UnifiedCfg.LogUpload
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	strategy := NewPeriodicStrategy(cfg.Period.Duration(), clk)
	return NewUploader(p.Finder, strategy, p.Source, WithClock(clk))
}

type lifecycleInput struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Uploader   *Uploader
	UnifiedCfg *config.Config `optional:"true"`
}

// registerLifecycle 启动时运行上传循环，停止时等待其退出
func registerLifecycle(in lifecycleInput) {
	cfg := config.DefaultLogUploadConfig()
	if in.UnifiedCfg != nil {
		cfg = in.UnifiedCfg.LogUpload
	}
	if !cfg.Enable {
		logger.Debug("日志上传已禁用")
		return
	}

	var (
		cancel context.CancelFunc
		wg     sync.WaitGroup
	)
	in.Lifecycle.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := in.Uploader.Run(ctx, cfg.CheckInterval.Duration()); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("日志上传循环退出", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			wg.Wait()
			return nil
		},
	})
}
