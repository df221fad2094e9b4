package devclient

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-devclient/config"
	"github.com/dep2p/go-devclient/internal/core/logupload"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	config *config.Config

	registerer prometheus.Registerer
	source     logupload.StatusSource
	clock      clock.Clock

	userFxOptions []fx.Option
}

func newOptions() *options {
	return &options{config: config.NewConfig()}
}

// ============================================================================
//                              配置文件选项
// ============================================================================

// WithConfig 使用完整配置
//
// 之后的选项在此配置基础上修改。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("配置不能为空")
		}
		o.config = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}

// ============================================================================
//                              传输选项
// ============================================================================

// WithAccessPoint 设置 TCP 接入点并启用 TCP 通道
//
//	devclient.New(devclient.WithAccessPoint("10.0.0.5:9997"))
func WithAccessPoint(addr string) Option {
	return func(o *options) error {
		if addr == "" {
			return fmt.Errorf("接入点不能为空")
		}
		o.config.Transport.EnableTCP = true
		o.config.Transport.TCP.AccessPoint = addr
		return nil
	}
}

// WithDNSServer 设置解析接入点使用的 DNS 服务器
func WithDNSServer(server string) Option {
	return func(o *options) error {
		o.config.Transport.TCP.DNSServer = server
		return nil
	}
}

// WithBootstrapURL 设置引导服务地址并启用 HTTP 引导通道
func WithBootstrapURL(url string) Option {
	return func(o *options) error {
		if url == "" {
			return fmt.Errorf("引导地址不能为空")
		}
		o.config.Transport.EnableHTTPBootstrap = true
		o.config.Transport.HTTPBootstrap.URL = url
		return nil
	}
}

// WithoutTCP 禁用 TCP 通道
func WithoutTCP() Option {
	return func(o *options) error {
		o.config.Transport.EnableTCP = false
		return nil
	}
}

// ============================================================================
//                              日志上传选项
// ============================================================================

// WithLogUpload 启用或禁用周期日志上传
func WithLogUpload(enable bool) Option {
	return func(o *options) error {
		o.config.LogUpload.Enable = enable
		return nil
	}
}

// WithLogUploadPeriod 设置日志上传周期
func WithLogUploadPeriod(period time.Duration) Option {
	return func(o *options) error {
		if period <= 0 {
			return fmt.Errorf("上传周期必须大于 0")
		}
		o.config.LogUpload.Period = config.Duration(period)
		return nil
	}
}

// WithLogStatusSource 设置日志存储状态来源
func WithLogStatusSource(source logupload.StatusSource) Option {
	return func(o *options) error {
		o.source = source
		return nil
	}
}

// ============================================================================
//                              其他选项
// ============================================================================

// WithMetrics 在指定 Registerer 上注册指标
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) error {
		if reg == nil {
			return fmt.Errorf("registerer 不能为空")
		}
		o.config.Metrics.Enable = true
		o.registerer = reg
		return nil
	}
}

// WithClock 替换时钟，用于测试
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		o.clock = clk
		return nil
	}
}

// WithFxOptions 追加自定义 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
