package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-devclient/config"
	"github.com/dep2p/go-devclient/internal/core/channelmgr"
	"github.com/dep2p/go-devclient/pkg/lib/log"
	"github.com/dep2p/go-devclient/pkg/types"
)

func newTestManager(t *testing.T) *channelmgr.Manager {
	t.Helper()
	m, err := channelmgr.NewManager(log.Discard())
	require.NoError(t, err)
	return m
}

// TestTransportManager_StartClose 测试通道注册与移除
func TestTransportManager_StartClose(t *testing.T) {
	mgr := newTestManager(t)
	tm, err := NewTransportManager(NewConfig(), mgr)
	require.NoError(t, err)
	require.Len(t, tm.Channels(), 2)

	require.NoError(t, tm.Start())
	assert.Equal(t, 2, mgr.Len())
	assert.True(t, errors.Is(tm.Start(), ErrAlreadyStarted))

	ch, ok := mgr.FindChannelForService(types.ServiceLogging)
	require.True(t, ok)
	protocol, err := ch.ProtocolID()
	require.NoError(t, err)
	assert.Equal(t, types.ProtocolTCP, protocol)

	require.NoError(t, tm.Close())
	assert.Equal(t, 0, mgr.Len())
	require.NoError(t, tm.Close())
}

func TestTransportManager_Disabled(t *testing.T) {
	cfg := NewConfig()
	cfg.EnableHTTPBootstrap = false
	tm, err := NewTransportManager(cfg, newTestManager(t))
	require.NoError(t, err)
	assert.Len(t, tm.Channels(), 1)

	_, err = NewTransportManager(cfg, nil)
	assert.True(t, errors.Is(err, types.ErrBadParam))

	cfg.TCPAccessPoint = "bad"
	_, err = NewTransportManager(cfg, newTestManager(t))
	assert.True(t, errors.Is(err, types.ErrBadParam))
}

// TestTransportManager_Bootstrap 测试引导消息的发送
func TestTransportManager_Bootstrap(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cfg := NewConfig()
	cfg.BootstrapURL = srv.URL
	mgr := newTestManager(t)
	tm, err := NewTransportManager(cfg, mgr)
	require.NoError(t, err)

	_, err = tm.Bootstrap(context.Background())
	assert.True(t, errors.Is(err, ErrNoTransport))

	require.NoError(t, tm.Start())
	defer tm.Close()

	resp, err := tm.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", string(resp))

	require.Greater(t, len(body), 8)
	assert.Equal(t, []byte{0x35, 0x53, 0xC6, 0x6F, 0x00, 0x01, 0x00, 0x01}, body[:8])

	req, err := channelmgr.DecodeBootstrapRequest(body[8:])
	require.NoError(t, err)
	assert.Equal(t, uint16(1), req.RequestID)
	assert.Equal(t, []types.ProtocolID{types.ProtocolTCP, types.ProtocolHTTPBootstrap}, req.Protocols)
}

func TestTransportManager_BootstrapWithoutExchanger(t *testing.T) {
	cfg := NewConfig()
	cfg.EnableHTTPBootstrap = false
	cfg.TCPServices = []types.ServiceType{types.ServiceBootstrap}
	tm, err := NewTransportManager(cfg, newTestManager(t))
	require.NoError(t, err)
	require.NoError(t, tm.Start())
	defer tm.Close()

	_, err = tm.Bootstrap(context.Background())
	assert.True(t, errors.Is(err, ErrNotExchanger))
}

// TestModule 测试 Fx 模块
// TestTransportManager_PollLoop 测试 Sync 唤醒轮询循环后 TCP 通道连接并发送同步请求
func TestTransportManager_PollLoop(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := NewConfig()
	cfg.EnableHTTPBootstrap = false
	cfg.TCPAccessPoint = ln.Addr().String()
	cfg.PollInterval = 10 * time.Millisecond
	mgr := newTestManager(t)
	tm, err := NewTransportManager(cfg, mgr)
	require.NoError(t, err)
	require.NoError(t, tm.Start())
	defer tm.Close()

	ch, ok := mgr.FindChannelForService(types.ServiceEvent)
	require.True(t, ok)
	require.NoError(t, ch.Sync([]types.ServiceType{types.ServiceEvent}))

	require.NoError(t, ln.(*net.TCPListener).SetDeadline(time.Now().Add(5*time.Second)))
	conn, err := ln.Accept()
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	buf := make([]byte, 16)
	_, err = io.ReadFull(conn, buf)
	require.NoError(t, err)
	assert.Equal(t, byte(0x07), buf[8])

	// Close 等待循环退出后通道已移除
	require.NoError(t, tm.Close())
	assert.Equal(t, 0, mgr.Len())
}

func TestModule(t *testing.T) {
	var tm *TransportManager
	var mgr *channelmgr.Manager

	app := fxtest.New(t,
		channelmgr.Module(),
		Module(),
		fx.Supply(config.NewConfig()),
		fx.Populate(&tm, &mgr),
	)
	app.RequireStart()
	assert.Equal(t, 2, mgr.Len())

	app.RequireStop()
	assert.Equal(t, 0, mgr.Len())
}
