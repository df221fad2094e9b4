// Package config 提供设备客户端的统一配置
//
// 主 Config 结构体嵌入所有子配置，每个子配置在独立文件中定义，
// 支持从 JSON 加载。
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Transport.TCP.AccessPoint = "operations.example.com:9997"
//
//	cfg, err := config.LoadFile("client.json")
package config

import "errors"

// Config 设备客户端完整配置
type Config struct {
	// Transport 传输通道配置
	Transport TransportConfig `json:"transport"`

	// LogUpload 日志上传策略配置
	LogUpload LogUploadConfig `json:"log_upload"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Transport: DefaultTransportConfig(),
		LogUpload: DefaultLogUploadConfig(),
		Metrics:   DefaultMetricsConfig(),
	}
}

// Validate 验证配置，返回所有子配置错误的合并结果
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	return errors.Join(
		c.Transport.Validate(),
		c.LogUpload.Validate(),
	)
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enable 是否注册 Prometheus 指标
	Enable bool `json:"enable"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{Enable: true}
}
