// Package transport 管理设备客户端的传输通道
//
// TransportManager 根据配置创建启用的通道（TCP、HTTP 引导），启动时注册到
// 通道管理器，停止时移除。
//
// # 引导
//
// Bootstrap 生成完整的平台消息（消息头 + 引导扩展），通过承载引导服务的
// 通道发送：
//
//	resp, err := tm.Bootstrap(ctx)
//
// 承载引导服务的通道必须实现 Exchanger。
//
// # Fx 模块集成
//
//	app := fx.New(
//	    channelmgr.Module(),
//	    transport.Module(),
//	)
//
// # 并发安全
//
// TransportManager 使用 sync.Mutex 保护已注册通道列表。
package transport
