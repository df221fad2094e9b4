package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/dep2p/go-devclient/internal/core/platform"
	"github.com/dep2p/go-devclient/internal/core/transport/sockutil"
	pkgif "github.com/dep2p/go-devclient/pkg/interfaces"
	"github.com/dep2p/go-devclient/pkg/lib/log"
	"github.com/dep2p/go-devclient/pkg/types"
)

var logger = log.Logger("core/transport/tcp")

// readBufferSize 单次读取缓冲区大小
const readBufferSize = 1024

// State 通道连接状态
type State int

const (
	// StateDisconnected 未连接
	StateDisconnected State = iota
	// StateConnecting 连接中
	StateConnecting
	// StateConnected 已连接
	StateConnected
)

// String 返回状态的字符串表示
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Config TCP 通道配置
type Config struct {
	// AccessPoint 接入点 host:port
	AccessPoint string

	// Services 承载的服务，为空时使用 types.OperationServices()
	Services []types.ServiceType

	// Resolver 主机名解析器，为空时使用系统解析器
	Resolver *sockutil.Resolver

	// DialTimeout 连接超时，0 表示不限制
	DialTimeout time.Duration

	// Clock 时钟，测试时可替换
	Clock clock.Clock

	// Handler 收到服务器数据时调用，可以为空
	Handler func([]byte)
}

// Channel TCP 传输通道
type Channel struct {
	mu sync.Mutex

	handle   uuid.UUID
	host     string
	port     uint16
	services []types.ServiceType
	resolver *sockutil.Resolver
	timeout  time.Duration
	clock    clock.Clock
	handler  func([]byte)
	wake     chan struct{}

	state        State
	fd           sockutil.FD
	dest         netip.AddrPort
	dialStarted  time.Time
	lastActivity time.Time
	pending      map[types.ServiceType]struct{}
	out          []byte
	released     bool
}

var (
	_ pkgif.TransportChannel = (*Channel)(nil)
	_ pkgif.Releaser         = (*Channel)(nil)
)

// New 创建 TCP 通道
func New(cfg Config) (*Channel, error) {
	host, portStr, err := net.SplitHostPort(cfg.AccessPoint)
	if err != nil {
		return nil, fmt.Errorf("%w: access point %q: %v", types.ErrBadParam, cfg.AccessPoint, err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || host == "" {
		return nil, fmt.Errorf("%w: access point %q", types.ErrBadParam, cfg.AccessPoint)
	}

	services := cfg.Services
	if len(services) == 0 {
		services = types.OperationServices()
	}
	for _, s := range services {
		if !s.Valid() {
			return nil, fmt.Errorf("%w: service %s", types.ErrBadParam, s)
		}
	}

	if cfg.Resolver == nil {
		cfg.Resolver = sockutil.NewResolver("", cfg.DialTimeout)
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	return &Channel{
		handle:   uuid.New(),
		host:     host,
		port:     uint16(port),
		services: slices.Clone(services),
		resolver: cfg.Resolver,
		timeout:  cfg.DialTimeout,
		clock:    cfg.Clock,
		handler:  cfg.Handler,
		wake:     make(chan struct{}, 1),
		fd:       -1,
		pending:  make(map[types.ServiceType]struct{}),
	}, nil
}

// Handle 返回通道句柄
func (c *Channel) Handle() uuid.UUID {
	return c.handle
}

// ProtocolID 返回 TCP 通道协议
func (c *Channel) ProtocolID() (types.ProtocolID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return types.ProtocolID{}, types.ErrChannelReleased
	}
	return types.ProtocolTCP, nil
}

// SupportedServices 返回通道承载的服务
func (c *Channel) SupportedServices() ([]types.ServiceType, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return nil, types.ErrChannelReleased
	}
	return slices.Clone(c.services), nil
}

// Sync 记录需要同步的服务
func (c *Channel) Sync(services []types.ServiceType) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return types.ErrChannelReleased
	}
	if len(services) == 0 {
		return fmt.Errorf("%w: empty service set", types.ErrBadParam)
	}
	for _, s := range services {
		if !slices.Contains(c.services, s) {
			return fmt.Errorf("%w: %s", types.ErrUnsupportedService, s)
		}
	}

	for _, s := range services {
		c.pending[s] = struct{}{}
	}
	logger.Debug("同步请求已记录", "services", services, "state", c.state)

	select {
	case c.wake <- struct{}{}:
	default:
	}
	return nil
}

// Wake 有新的同步请求时收到通知
func (c *Channel) Wake() <-chan struct{} {
	return c.wake
}

// PendingServices 取出并清空待同步的服务
func (c *Channel) PendingServices() []types.ServiceType {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]types.ServiceType, 0, len(c.pending))
	for s := range c.pending {
		out = append(out, s)
	}
	clear(c.pending)
	slices.Sort(out)
	return out
}

// State 返回当前连接状态
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect 解析接入点并发起非阻塞连接
//
// 已在连接中或已连接时直接返回。
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return types.ErrChannelReleased
	}
	if c.state != StateDisconnected {
		return nil
	}

	var dst [1]netip.AddrPort
	if _, err := c.resolver.Resolve(ctx, sockutil.ResolveInfo{Hostname: c.host, Port: c.port}, dst[:]); err != nil {
		return fmt.Errorf("resolve %s: %w", c.host, err)
	}

	fd, err := sockutil.OpenTCPSocket(dst[0])
	if err != nil {
		return err
	}

	c.fd = fd
	c.dest = dst[0]
	c.state = StateConnecting
	c.dialStarted = c.clock.Now()
	logger.Debug("开始连接", "dest", c.dest)
	return nil
}

// Poll 推进连接状态
func (c *Channel) Poll() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateConnecting {
		return c.state, nil
	}

	switch sockutil.CheckSocket(c.fd, c.dest) {
	case sockutil.SocketConnected:
		c.state = StateConnected
		c.lastActivity = c.clock.Now()
		logger.Info("TCP 通道已连接", "dest", c.dest)
	case sockutil.SocketError:
		c.disconnectLocked()
		return c.state, fmt.Errorf("%w: %s", types.ErrConnectError, c.dest)
	default:
		if c.timeout > 0 && c.clock.Since(c.dialStarted) > c.timeout {
			c.disconnectLocked()
			return c.state, fmt.Errorf("%w: %s after %s", ErrDialTimeout, c.dest, c.timeout)
		}
	}
	return c.state, nil
}

// Send 非阻塞发送，发送缓冲区满时返回 (0, nil)
func (c *Channel) Send(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sendLocked(p)
}

func (c *Channel) sendLocked(p []byte) (int, error) {
	if c.state != StateConnected {
		return 0, ErrNotConnected
	}

	n, err := sockutil.Write(c.fd, p)
	switch {
	case errors.Is(err, types.ErrWouldBlock):
		return 0, nil
	case err != nil:
		logger.Warn("发送失败，断开连接", "dest", c.dest, "error", err)
		c.disconnectLocked()
		return 0, err
	}
	c.lastActivity = c.clock.Now()
	return n, nil
}

// Receive 非阻塞接收，暂无数据时返回 (0, nil)
//
// 对端关闭时返回 types.ErrEOF 并断开连接。
func (c *Channel) Receive(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.receiveLocked(p)
}

func (c *Channel) receiveLocked(p []byte) (int, error) {
	if c.state != StateConnected {
		return 0, ErrNotConnected
	}

	n, err := sockutil.Read(c.fd, p)
	switch {
	case errors.Is(err, types.ErrWouldBlock):
		return 0, nil
	case err != nil:
		logger.Info("连接已断开", "dest", c.dest, "error", err)
		c.disconnectLocked()
		return 0, err
	}
	c.lastActivity = c.clock.Now()
	return n, nil
}

// IdleFor 返回自上次收发以来的时长，未连接时返回 0
func (c *Channel) IdleFor() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateConnected {
		return 0
	}
	return c.clock.Since(c.lastActivity)
}

// Release 关闭连接并释放通道
func (c *Channel) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return nil
	}
	c.released = true
	c.disconnectLocked()
	clear(c.pending)
	logger.Debug("TCP 通道已释放", "handle", c.handle)
	return nil
}

func (c *Channel) disconnectLocked() {
	if c.fd >= 0 {
		if err := sockutil.Close(c.fd); err != nil {
			logger.Warn("关闭 socket 失败", "error", err)
		}
	}
	c.fd = -1
	c.out = nil
	c.state = StateDisconnected
}

// Step 推进一次通道状态机
//
// 有待同步的服务时按需连接；连接建立后把待同步服务编码为同步请求发送，
// 并读取服务器数据交给 Handler。由传输管理器周期调用。
func (c *Channel) Step(ctx context.Context) error {
	c.mu.Lock()
	idle := c.released || (c.state == StateDisconnected && len(c.pending) == 0)
	disconnected := c.state == StateDisconnected
	c.mu.Unlock()
	if idle {
		return nil
	}

	if disconnected {
		if err := c.Connect(ctx); err != nil {
			return err
		}
	}

	state, err := c.Poll()
	if err != nil || state != StateConnected {
		return err
	}

	if services := c.PendingServices(); len(services) > 0 {
		msg, err := platform.EncodeSyncRequest(services)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.out = append(c.out, msg...)
		c.mu.Unlock()
		logger.Debug("同步请求已排队", "services", services, "size", len(msg))
	}

	if err := c.flush(); err != nil {
		return err
	}
	return c.drain()
}

// flush 发送排队数据，发送缓冲区满时保留剩余部分
func (c *Channel) flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.out) > 0 && c.state == StateConnected {
		n, err := c.sendLocked(c.out)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		c.out = c.out[n:]
	}
	return nil
}

// drain 读取全部可读数据
func (c *Channel) drain() error {
	var buf [readBufferSize]byte
	for {
		c.mu.Lock()
		n, err := c.receiveLocked(buf[:])
		handler := c.handler
		c.mu.Unlock()

		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if handler != nil {
			handler(append([]byte(nil), buf[:n]...))
		}
	}
}
