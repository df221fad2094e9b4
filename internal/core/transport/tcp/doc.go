// Package tcp 提供运行期 TCP 传输通道
//
// TCP 通道承载除引导外的服务（可配置），通过 sockutil 的非阻塞原语建立连接：
//
//	ch, _ := tcp.New(tcp.Config{AccessPoint: "ops.example.com:9997", Resolver: resolver})
//	ch.Connect(ctx)           // 解析并发起连接
//	for {
//	    state, err := ch.Poll() // 推进 connecting → connected
//	    ...
//	}
//
// Send/Receive 把 would-block 映射为 (0, nil)；EOF 和 I/O 错误会断开连接。
// Sync 只记录待同步的服务，同步协议本身由上层实现。
package tcp
