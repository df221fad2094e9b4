package devclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-devclient/config"
	"github.com/dep2p/go-devclient/internal/core/channelmgr"
	"github.com/dep2p/go-devclient/internal/core/transport"
	pkgif "github.com/dep2p/go-devclient/pkg/interfaces"
	"github.com/dep2p/go-devclient/pkg/lib/log"
)

var logger = log.Logger("devclient")

const stopTimeout = 10 * time.Second

// Client 设备客户端
type Client struct {
	mu sync.Mutex

	config *config.Config
	app    *fx.App

	manager   *channelmgr.Manager
	transport *transport.TransportManager

	started bool
	closed  bool
}

// New 创建客户端
//
// 创建客户端但不启动，需要调用 Start() 启动。
//
//	client, err := devclient.New(
//	    devclient.WithConfigFile("devclient.json"),
//	)
func New(opts ...Option) (*Client, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	c := &Client{config: o.config}

	var err error
	c.app, err = buildFxApp(o, c)
	if err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	return c, nil
}

// Start 创建客户端并立即启动
func Start(ctx context.Context, opts ...Option) (*Client, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("start client: %w", err)
	}
	return c, nil
}

// Start 启动客户端，注册所有传输通道
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}
	if c.started {
		return ErrAlreadyStarted
	}

	if err := c.app.Start(ctx); err != nil {
		logger.Error("客户端启动失败", "error", err)
		return err
	}
	c.started = true
	logger.Info("客户端已启动", "channels", c.manager.Len())
	return nil
}

// Close 停止客户端并释放所有通道
//
// 关闭后不可重新启动。
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if !c.started {
		return nil
	}
	c.started = false

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := c.app.Stop(ctx); err != nil {
		logger.Warn("客户端停止出错", "error", err)
		return err
	}
	logger.Info("客户端已关闭")
	return nil
}

// Config 返回客户端配置
func (c *Client) Config() *config.Config {
	return c.config
}

// ChannelManager 返回通道管理器
func (c *Client) ChannelManager() pkgif.ChannelManager {
	return c.manager
}

// Channels 返回已注册的通道
func (c *Client) Channels() []channelmgr.ChannelInfo {
	return c.manager.Channels()
}

// BootstrapMessage 生成完整的引导消息
func (c *Client) BootstrapMessage() ([]byte, error) {
	if err := c.checkStarted(); err != nil {
		return nil, err
	}
	return c.transport.BootstrapMessage()
}

// Bootstrap 向引导服务器发送引导请求，返回响应体
func (c *Client) Bootstrap(ctx context.Context) ([]byte, error) {
	if err := c.checkStarted(); err != nil {
		return nil, err
	}
	return c.transport.Bootstrap(ctx)
}

func (c *Client) checkStarted() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}
	if !c.started {
		return ErrNotStarted
	}
	return nil
}
