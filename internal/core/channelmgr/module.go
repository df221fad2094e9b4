package channelmgr

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-devclient/config"
	pkgif "github.com/dep2p/go-devclient/pkg/interfaces"
	"github.com/dep2p/go-devclient/pkg/lib/log"
)

var logger = log.Logger("core/channelmgr")

// Params 通道管理器依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config        `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("channelmgr",
		fx.Provide(
			ProvideManager,
			func(m *Manager) pkgif.ChannelManager { return m },
			func(m *Manager) pkgif.ChannelFinder { return m },
		),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideManager 提供通道管理器
func ProvideManager(p Params) (*Manager, error) {
	var opts []Option
	if p.Registerer != nil && (p.UnifiedCfg == nil || p.UnifiedCfg.Metrics.Enable) {
		opts = append(opts, WithMetrics(p.Registerer))
	}
	return NewManager(logger, opts...)
}

type lifecycleInput struct {
	fx.In

	Lifecycle fx.Lifecycle
	Manager   *Manager
}

// registerLifecycle 停止时释放所有通道
func registerLifecycle(in lifecycleInput) {
	in.Lifecycle.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return in.Manager.Close()
		},
	})
}
