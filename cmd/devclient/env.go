package main

import (
	"os"
	"strings"

	"github.com/dep2p/go-devclient/config"
)

// 环境变量（DEVCLIENT_ 前缀）
const (
	envAccessPoint  = "DEVCLIENT_ACCESS_POINT"
	envBootstrapURL = "DEVCLIENT_BOOTSTRAP_URL"
	envDNSServer    = "DEVCLIENT_DNS_SERVER"
	envLogUpload    = "DEVCLIENT_LOG_UPLOAD"
)

// applyEnvOverrides 应用环境变量覆盖配置
//
// 环境变量优先级高于配置文件，但低于命令行参数。
func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv(envAccessPoint); v != "" {
		cfg.Transport.EnableTCP = true
		cfg.Transport.TCP.AccessPoint = v
	}
	if v := os.Getenv(envBootstrapURL); v != "" {
		cfg.Transport.EnableHTTPBootstrap = true
		cfg.Transport.HTTPBootstrap.URL = v
	}
	if v := os.Getenv(envDNSServer); v != "" {
		cfg.Transport.TCP.DNSServer = v
	}
	if v := os.Getenv(envLogUpload); v != "" {
		cfg.LogUpload.Enable = parseBool(v)
	}
}

// parseBool 解析布尔值字符串
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
