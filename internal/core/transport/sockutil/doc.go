// Package sockutil 提供非阻塞 TCP socket 与 DNS 解析原语
//
// 具体通道实现通过这些原语建立连接，核心通道管理器不直接使用它们。
// 所有操作立即返回，结果词汇统一为：
//
//   - 连接状态：SocketConnecting / SocketConnected / SocketError
//   - 读写：成功字节数、types.ErrWouldBlock、types.ErrEOF（仅读）、types.ErrIOError
//   - 解析：成功地址数、types.ErrBufferTooSmall、types.ErrNotFound、types.ErrIOError
//
// socket 原语基于 golang.org/x/sys/unix，仅在 unix 平台可用；
// 其他平台上所有 socket 调用返回 types.ErrSocketError。
package sockutil

// FD socket 文件描述符
type FD int

// SocketState 连接状态
type SocketState int

const (
	// SocketConnecting 连接进行中
	SocketConnecting SocketState = iota
	// SocketConnected 已连接
	SocketConnected
	// SocketError 连接失败
	SocketError
)

// String 返回连接状态的字符串表示
func (s SocketState) String() string {
	switch s {
	case SocketConnecting:
		return "connecting"
	case SocketConnected:
		return "connected"
	default:
		return "error"
	}
}
