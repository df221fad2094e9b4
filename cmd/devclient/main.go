// Package main 提供 devclient 命令行入口
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-devclient"
	"github.com/dep2p/go-devclient/config"
	"github.com/dep2p/go-devclient/pkg/lib/log"
)

var logger = log.Logger("devclient/cmd")

// 命令行参数覆盖配置文件和环境变量
var (
	configFile   = flag.String("config", "", "配置文件路径")
	accessPoint  = flag.String("access-point", "", "TCP 接入点 host:port")
	bootstrapURL = flag.String("bootstrap-url", "", "引导服务地址")
	dnsServer    = flag.String("dns-server", "", "DNS 服务器 host:port")

	metricsAddr   = flag.String("metrics-addr", "", "Prometheus 指标监听地址（为空时不启用）")
	dumpBootstrap = flag.Bool("dump-bootstrap", false, "打印引导请求后退出")
	bootstrapOnce = flag.Bool("bootstrap", false, "启动后发送一次引导请求")

	logFile     = flag.String("log", "", "日志文件路径")
	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println(devclient.VersionInfo())
		return nil
	}

	out := io.Writer(os.Stderr)
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("打开日志文件失败: %w", err)
		}
		defer f.Close()
		out = f
	}
	log.SetupFromEnv(out)

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	opts := []devclient.Option{devclient.WithConfig(cfg)}
	reg := prometheus.NewRegistry()
	if *metricsAddr != "" {
		opts = append(opts, devclient.WithMetrics(reg))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("启动 devclient", "version", devclient.Version, "commit", devclient.GitCommit)
	client, err := devclient.Start(ctx, opts...)
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = client.Close() }()

	if *dumpBootstrap {
		msg, err := client.BootstrapMessage()
		if err != nil {
			return err
		}
		fmt.Println(hex.Dump(msg))
		return nil
	}

	for _, info := range client.Channels() {
		protocol, _ := info.Channel.ProtocolID()
		services, _ := info.Channel.SupportedServices()
		fmt.Printf("通道 %s  协议 %s  服务 %v\n", info.ID, protocol, services)
	}

	if *metricsAddr != "" {
		srv := &http.Server{
			Addr:              *metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("指标服务退出", "error", err)
			}
		}()
		defer srv.Close()
	}

	if *bootstrapOnce {
		resp, err := client.Bootstrap(ctx)
		if err != nil {
			logger.Warn("引导请求失败", "error", err)
		} else {
			logger.Info("引导请求完成", "response", len(resp))
		}
	}

	fmt.Println("客户端已启动，按 Ctrl+C 退出")
	<-ctx.Done()
	fmt.Println("\n正在关闭客户端...")
	return nil
}

// loadConfig 加载配置
//
// 优先级（从高到低）：命令行参数、环境变量、配置文件、默认值。
func loadConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if *configFile != "" {
		var err error
		if cfg, err = config.LoadFile(*configFile); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if *accessPoint != "" {
		cfg.Transport.EnableTCP = true
		cfg.Transport.TCP.AccessPoint = *accessPoint
	}
	if *bootstrapURL != "" {
		cfg.Transport.EnableHTTPBootstrap = true
		cfg.Transport.HTTPBootstrap.URL = *bootstrapURL
	}
	if *dnsServer != "" {
		cfg.Transport.TCP.DNSServer = *dnsServer
	}

	return cfg, cfg.Validate()
}
