// Package devclient 提供物联网设备客户端的传输层入口
//
// 设备客户端通过一个或多个传输通道连接服务器平台。通道管理器登记所有通道，
// 按服务选择通道，并生成引导请求告知服务器设备支持的传输协议。
//
// # 快速开始
//
//	import "github.com/dep2p/go-devclient"
//
//	client, err := devclient.Start(ctx,
//	    devclient.WithAccessPoint("ops.example.com:9997"),
//	    devclient.WithBootstrapURL("https://bootstrap.example.com/bootstrap"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	resp, err := client.Bootstrap(ctx)
//
// # 组件
//
//   - channelmgr: 通道注册表、按服务查找、引导请求编码
//   - transport: TCP 与 HTTP 引导通道
//   - logupload: 周期日志上传
//
// 组件通过 go.uber.org/fx 装配。
package devclient
