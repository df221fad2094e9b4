package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/dep2p/go-devclient/pkg/types"
)

// TransportConfig 传输通道配置
//
// 决定客户端启动时向通道管理器注册哪些通道：
//   - TCP: 运行期通道，承载除引导外的服务
//   - HTTPBootstrap: 引导通道，只承载引导服务
type TransportConfig struct {
	// TCP 配置
	EnableTCP bool      `json:"enable_tcp"`
	TCP       TCPConfig `json:"tcp,omitempty"`

	// HTTP 引导配置
	EnableHTTPBootstrap bool                `json:"enable_http_bootstrap"`
	HTTPBootstrap       HTTPBootstrapConfig `json:"http_bootstrap,omitempty"`
}

// TCPConfig TCP 通道配置
type TCPConfig struct {
	// AccessPoint 接入点，host:port
	AccessPoint string `json:"access_point"`

	// Services 通道承载的服务，为空时使用除引导外的全部服务
	Services []string `json:"services,omitempty"`

	// DNSServer 解析接入点使用的 DNS 服务器 host:port，为空时使用系统解析器
	DNSServer string `json:"dns_server,omitempty"`

	// DialTimeout 连接超时
	DialTimeout Duration `json:"dial_timeout"`

	// PollInterval 通道状态轮询间隔
	PollInterval Duration `json:"poll_interval"`
}

// HTTPBootstrapConfig HTTP 引导通道配置
type HTTPBootstrapConfig struct {
	// URL 引导服务地址
	URL string `json:"url"`

	// Timeout 单次请求超时
	Timeout Duration `json:"timeout"`
}

// DefaultTransportConfig 返回默认传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		EnableTCP: true,
		TCP: TCPConfig{
			AccessPoint: "127.0.0.1:9997",
			DialTimeout:  Duration(10 * time.Second),
			PollInterval: Duration(200 * time.Millisecond),
		},
		EnableHTTPBootstrap: true,
		HTTPBootstrap: HTTPBootstrapConfig{
			URL:     "http://127.0.0.1:9889/bootstrap",
			Timeout: Duration(30 * time.Second),
		},
	}
}

// ServiceTypes 解析 TCP 通道承载的服务
func (c TCPConfig) ServiceTypes() ([]types.ServiceType, error) {
	if len(c.Services) == 0 {
		return types.OperationServices(), nil
	}

	services := make([]types.ServiceType, 0, len(c.Services))
	for _, name := range c.Services {
		s, err := types.ParseServiceType(name)
		if err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, nil
}

// Validate 验证传输配置
func (c TransportConfig) Validate() error {
	if !c.EnableTCP && !c.EnableHTTPBootstrap {
		return errors.New("at least one transport must be enabled")
	}

	if c.EnableTCP {
		if _, _, err := net.SplitHostPort(c.TCP.AccessPoint); err != nil {
			return fmt.Errorf("invalid tcp access point %q: %w", c.TCP.AccessPoint, err)
		}
		if c.TCP.DNSServer != "" {
			if _, _, err := net.SplitHostPort(c.TCP.DNSServer); err != nil {
				return fmt.Errorf("invalid dns server %q: %w", c.TCP.DNSServer, err)
			}
		}
		if c.TCP.DialTimeout < 0 {
			return errors.New("tcp dial timeout must be non-negative")
		}
		if c.TCP.PollInterval < 0 {
			return errors.New("tcp poll interval must be non-negative")
		}
		if _, err := c.TCP.ServiceTypes(); err != nil {
			return err
		}
	}

	if c.EnableHTTPBootstrap {
		u, err := url.Parse(c.HTTPBootstrap.URL)
		if err != nil {
			return fmt.Errorf("invalid bootstrap url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("bootstrap url %q must use http or https", c.HTTPBootstrap.URL)
		}
		if c.HTTPBootstrap.Timeout < 0 {
			return errors.New("bootstrap timeout must be non-negative")
		}
	}
	return nil
}
