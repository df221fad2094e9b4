package httpboot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgif "github.com/dep2p/go-devclient/pkg/interfaces"
	"github.com/dep2p/go-devclient/pkg/lib/log"
	"github.com/dep2p/go-devclient/pkg/types"
)

var logger = log.Logger("core/transport/httpboot")

// maxResponseSize 响应体上限
const maxResponseSize = 1 << 20

// Config HTTP 引导通道配置
type Config struct {
	// URL 引导服务地址
	URL string

	// Timeout 单次请求超时，0 表示使用 Client 的设置
	Timeout time.Duration

	// Client 为空时创建独立的 http.Client
	Client *http.Client
}

// Channel HTTP 引导通道
type Channel struct {
	mu sync.Mutex

	handle  uuid.UUID
	url     string
	client  *http.Client
	pending bool

	released bool
}

var (
	_ pkgif.TransportChannel = (*Channel)(nil)
	_ pkgif.Releaser         = (*Channel)(nil)
)

// New 创建 HTTP 引导通道
func New(cfg Config) (*Channel, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: empty bootstrap url", types.ErrBadParam)
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	}
	if cfg.Timeout > 0 {
		c := *client
		c.Timeout = cfg.Timeout
		client = &c
	}

	return &Channel{
		handle: uuid.New(),
		url:    cfg.URL,
		client: client,
	}, nil
}

// Handle 返回通道句柄
func (c *Channel) Handle() uuid.UUID {
	return c.handle
}

// ProtocolID 返回 HTTP 引导协议
func (c *Channel) ProtocolID() (types.ProtocolID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return types.ProtocolID{}, types.ErrChannelReleased
	}
	return types.ProtocolHTTPBootstrap, nil
}

// SupportedServices 只返回引导服务
func (c *Channel) SupportedServices() ([]types.ServiceType, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return nil, types.ErrChannelReleased
	}
	return []types.ServiceType{types.ServiceBootstrap}, nil
}

// Sync 记录引导同步请求
func (c *Channel) Sync(services []types.ServiceType) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return types.ErrChannelReleased
	}
	if len(services) == 0 {
		return fmt.Errorf("%w: empty service set", types.ErrBadParam)
	}
	if slices.ContainsFunc(services, func(s types.ServiceType) bool { return s != types.ServiceBootstrap }) {
		return fmt.Errorf("%w: only bootstrap is served", types.ErrUnsupportedService)
	}
	c.pending = true
	return nil
}

// PendingServices 取出并清空待同步的服务
func (c *Channel) PendingServices() []types.ServiceType {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.pending {
		return nil
	}
	c.pending = false
	return []types.ServiceType{types.ServiceBootstrap}
}

// Exchange 发送引导请求并返回响应体
func (c *Channel) Exchange(ctx context.Context, body []byte) ([]byte, error) {
	c.mu.Lock()
	released := c.released
	c.mu.Unlock()
	if released {
		return nil, types.ErrChannelReleased
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrBadParam, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrIOError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil, fmt.Errorf("%w: bootstrap server returned %s", types.ErrIOError, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrReadFailed, err)
	}

	logger.Debug("引导请求已完成", "url", c.url, "request", len(body), "response", len(data))
	return data, nil
}

// Release 释放通道并关闭空闲连接
func (c *Channel) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return nil
	}
	c.released = true
	c.pending = false
	c.client.CloseIdleConnections()
	return nil
}
