package channelmgr

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	pkgif "github.com/dep2p/go-devclient/pkg/interfaces"
	"github.com/dep2p/go-devclient/pkg/types"
)

// TestModule_Provides 测试模块提供的类型
func TestModule_Provides(t *testing.T) {
	var (
		mgr    *Manager
		iface  pkgif.ChannelManager
		finder pkgif.ChannelFinder
	)

	app := fxtest.New(t,
		Module(),
		fx.Provide(func() prometheus.Registerer { return prometheus.NewRegistry() }),
		fx.Populate(&mgr, &iface, &finder),
	)
	app.RequireStart()

	require.NotNil(t, mgr)
	assert.Same(t, mgr, iface)
	assert.Same(t, mgr, finder)
	assert.NotNil(t, mgr.metrics)

	ch := newFakeChannel(1, types.ServiceLogging)
	_, err := mgr.Add(ch)
	require.NoError(t, err)

	// 停止时释放所有通道
	app.RequireStop()
	assert.Equal(t, 1, ch.released)
	assert.Equal(t, 0, mgr.Len())
}
