package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-devclient/config"
	"github.com/dep2p/go-devclient/internal/core/channelmgr"
	"github.com/dep2p/go-devclient/internal/core/platform"
	"github.com/dep2p/go-devclient/internal/core/transport/httpboot"
	"github.com/dep2p/go-devclient/internal/core/transport/sockutil"
	"github.com/dep2p/go-devclient/internal/core/transport/tcp"
	pkgif "github.com/dep2p/go-devclient/pkg/interfaces"
	"github.com/dep2p/go-devclient/pkg/lib/log"
	"github.com/dep2p/go-devclient/pkg/types"
)

var logger = log.Logger("core/transport")

// defaultPollInterval 未配置时的通道轮询间隔
const defaultPollInterval = 200 * time.Millisecond

// Exchanger 支持请求/响应交换的通道
type Exchanger interface {
	Exchange(ctx context.Context, body []byte) ([]byte, error)
}

// Config 传输层配置
type Config struct {
	// TCP 运行期通道
	EnableTCP      bool
	TCPAccessPoint string
	TCPServices    []types.ServiceType
	DNSServer      string
	DialTimeout    time.Duration
	PollInterval   time.Duration

	// Clock 时钟，为空时使用系统时钟
	Clock clock.Clock

	// HTTP 引导通道
	EnableHTTPBootstrap bool
	BootstrapURL        string
	BootstrapTimeout    time.Duration
}

// ConfigFromUnified 从统一配置创建传输配置
func ConfigFromUnified(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return NewConfig(), nil
	}
	services, err := cfg.Transport.TCP.ServiceTypes()
	if err != nil {
		return Config{}, err
	}
	return Config{
		EnableTCP:           cfg.Transport.EnableTCP,
		TCPAccessPoint:      cfg.Transport.TCP.AccessPoint,
		TCPServices:         services,
		DNSServer:           cfg.Transport.TCP.DNSServer,
		DialTimeout:         cfg.Transport.TCP.DialTimeout.Duration(),
		PollInterval:        cfg.Transport.TCP.PollInterval.Duration(),
		EnableHTTPBootstrap: cfg.Transport.EnableHTTPBootstrap,
		BootstrapURL:        cfg.Transport.HTTPBootstrap.URL,
		BootstrapTimeout:    cfg.Transport.HTTPBootstrap.Timeout.Duration(),
	}, nil
}

// NewConfig 创建默认配置
func NewConfig() Config {
	def := config.DefaultTransportConfig()
	return Config{
		EnableTCP:           def.EnableTCP,
		TCPAccessPoint:      def.TCP.AccessPoint,
		DialTimeout:         def.TCP.DialTimeout.Duration(),
		PollInterval:        def.TCP.PollInterval.Duration(),
		EnableHTTPBootstrap: def.EnableHTTPBootstrap,
		BootstrapURL:        def.HTTPBootstrap.URL,
		BootstrapTimeout:    def.HTTPBootstrap.Timeout.Duration(),
	}
}

// driver 需要周期推进的通道
type driver interface {
	Step(ctx context.Context) error
	Wake() <-chan struct{}
}

// TransportManager 传输管理器
type TransportManager struct {
	mu sync.Mutex

	config   Config
	clock    clock.Clock
	manager  *channelmgr.Manager
	channels []pkgif.TransportChannel
	ids      []types.ChannelID
	started  bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTransportManager 创建传输管理器并创建启用的通道
func NewTransportManager(cfg Config, manager *channelmgr.Manager) (*TransportManager, error) {
	if manager == nil {
		return nil, fmt.Errorf("%w: nil channel manager", types.ErrBadParam)
	}
	logger.Debug("创建传输管理器", "enableTCP", cfg.EnableTCP, "enableHTTPBootstrap", cfg.EnableHTTPBootstrap)

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	tm := &TransportManager{config: cfg, clock: clk, manager: manager}

	// 引导通道先创建，TCP 通道后注册因而查找时优先
	if cfg.EnableHTTPBootstrap {
		ch, err := httpboot.New(httpboot.Config{URL: cfg.BootstrapURL, Timeout: cfg.BootstrapTimeout})
		if err != nil {
			return nil, fmt.Errorf("http bootstrap channel: %w", err)
		}
		tm.channels = append(tm.channels, ch)
	}

	if cfg.EnableTCP {
		ch, err := tcp.New(tcp.Config{
			AccessPoint: cfg.TCPAccessPoint,
			Services:    cfg.TCPServices,
			Resolver:    sockutil.NewResolver(cfg.DNSServer, cfg.DialTimeout),
			DialTimeout: cfg.DialTimeout,
			Clock:       clk,
			Handler: func(data []byte) {
				logger.Debug("收到服务器数据", "size", len(data))
			},
		})
		if err != nil {
			return nil, fmt.Errorf("tcp channel: %w", err)
		}
		tm.channels = append(tm.channels, ch)
	}

	logger.Info("传输管理器创建成功", "channelCount", len(tm.channels))
	return tm, nil
}

// Channels 返回创建的通道
func (tm *TransportManager) Channels() []pkgif.TransportChannel {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return append([]pkgif.TransportChannel(nil), tm.channels...)
}

// Start 把通道注册到通道管理器并启动轮询循环
//
// 任一通道注册失败时回滚已注册的通道。
func (tm *TransportManager) Start() error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.started {
		return ErrAlreadyStarted
	}

	ids := make([]types.ChannelID, 0, len(tm.channels))
	for _, ch := range tm.channels {
		id, err := tm.manager.Add(ch)
		if err != nil {
			for _, added := range ids {
				if rerr := tm.manager.Remove(added); rerr != nil {
					logger.Warn("回滚通道失败", "channel", added, "error", rerr)
				}
			}
			return fmt.Errorf("register channel: %w", err)
		}
		ids = append(ids, id)
	}

	tm.ids = ids
	tm.started = true

	ctx, cancel := context.WithCancel(context.Background())
	tm.cancel = cancel
	for _, ch := range tm.channels {
		if d, ok := ch.(driver); ok {
			tm.wg.Add(1)
			go tm.pollLoop(ctx, d)
		}
	}

	logger.Info("传输通道已注册", "count", len(ids))
	return nil
}

// pollLoop 周期推进通道，Sync 唤醒时立即推进
func (tm *TransportManager) pollLoop(ctx context.Context, d driver) {
	defer tm.wg.Done()

	interval := tm.config.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := tm.clock.Ticker(interval)
	defer ticker.Stop()

	for {
		if err := d.Step(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("通道推进失败", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-d.Wake():
		}
	}
}

// Close 停止轮询循环并从通道管理器移除通道
//
// 已被移除的通道忽略。
func (tm *TransportManager) Close() error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if !tm.started {
		return nil
	}

	tm.cancel()
	tm.wg.Wait()
	tm.cancel = nil

	var errs error
	for _, id := range tm.ids {
		if err := tm.manager.Remove(id); err != nil && !errors.Is(err, types.ErrNotFound) {
			errs = multierr.Append(errs, err)
		}
	}
	tm.ids = nil
	tm.started = false
	return errs
}

// Bootstrap 生成引导消息并通过引导通道发送，返回响应体
func (tm *TransportManager) Bootstrap(ctx context.Context) ([]byte, error) {
	ch, ok := tm.manager.FindChannelForService(types.ServiceBootstrap)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoTransport, types.ServiceBootstrap)
	}
	ex, ok := ch.(Exchanger)
	if !ok {
		return nil, ErrNotExchanger
	}

	msg, err := tm.BootstrapMessage()
	if err != nil {
		return nil, err
	}
	if err := ch.Sync([]types.ServiceType{types.ServiceBootstrap}); err != nil {
		return nil, fmt.Errorf("sync bootstrap: %w", err)
	}

	logger.Debug("发送引导请求", "size", len(msg))
	return ex.Exchange(ctx, msg)
}

// BootstrapMessage 生成带消息头的引导请求
func (tm *TransportManager) BootstrapMessage() ([]byte, error) {
	ext, err := tm.manager.BootstrapRequest()
	if err != nil {
		return nil, fmt.Errorf("build bootstrap request: %w", err)
	}
	if ext == nil {
		return nil, fmt.Errorf("%w: no channels registered", ErrNoTransport)
	}

	w := platform.NewWriter(make([]byte, platform.MessageHeaderSize+len(ext)))
	err = w.WriteMessageHeader(platform.MessageHeader{
		ProtocolID:      platform.PlatformProtocolID,
		ProtocolVersion: platform.PlatformProtocolVersion,
		ExtensionCount:  1,
	})
	if err != nil {
		return nil, err
	}
	if err := w.Write(ext); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("transport",
		fx.Provide(
			ProvideConfig,
			NewTransportManager,
		),
		fx.Invoke(registerLifecycle),
	)
}

// ConfigParams 传输配置依赖
type ConfigParams struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Clock      clock.Clock    `optional:"true"`
}

// ProvideConfig 从统一配置提供传输配置
func ProvideConfig(p ConfigParams) (Config, error) {
	cfg, err := ConfigFromUnified(p.UnifiedCfg)
	if err != nil {
		return Config{}, err
	}
	cfg.Clock = p.Clock
	return cfg, nil
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, tm *TransportManager) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return tm.Start()
		},
		OnStop: func(_ context.Context) error {
			return tm.Close()
		},
	})
}
