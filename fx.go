package devclient

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-devclient/internal/core/channelmgr"
	"github.com/dep2p/go-devclient/internal/core/logupload"
	"github.com/dep2p/go-devclient/internal/core/transport"
)

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 通道管理器
//  2. 传输层（注册通道）
//  3. 日志上传（查找日志通道）
func buildFxApp(o *options, c *Client) (*fx.App, error) {
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(o.config),
		channelmgr.Module(),
		transport.Module(),
	}

	if o.registerer != nil {
		reg := o.registerer
		modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
	}

	// 时钟同时驱动传输层轮询与日志上传检查
	if o.clock != nil {
		clk := o.clock
		modules = append(modules, fx.Provide(func() clock.Clock { return clk }))
	}

	if o.config.LogUpload.Enable {
		if o.source != nil {
			src := o.source
			modules = append(modules, fx.Provide(func() logupload.StatusSource { return src }))
		}
		modules = append(modules, logupload.Module())
	}

	if len(o.userFxOptions) > 0 {
		modules = append(modules, o.userFxOptions...)
	}

	modules = append(modules,
		fx.Populate(&c.manager, &c.transport),
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.NopLogger,
	)

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}
