// Package types 定义设备客户端的公共数据结构
//
// 本文件定义所有公共错误类型。
package types

import "errors"

// ============================================================================
//                              结构性错误
// ============================================================================

var (
	// ErrBadParam 参数无效
	ErrBadParam = errors.New("bad parameter")

	// ErrNoMemory 内存分配失败
	ErrNoMemory = errors.New("out of memory")

	// ErrAlreadyExists 对象已存在
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound 对象不存在
	ErrNotFound = errors.New("not found")
)

// ============================================================================
//                              编解码错误
// ============================================================================

var (
	// ErrWriteFailed 写缓冲区空间不足
	ErrWriteFailed = errors.New("write failed")

	// ErrReadFailed 读缓冲区数据不足
	ErrReadFailed = errors.New("read failed")
)

// ============================================================================
//                              Socket 错误
// ============================================================================

var (
	// ErrSocketError 创建或配置 socket 失败
	ErrSocketError = errors.New("socket error")

	// ErrConnectError 连接失败
	ErrConnectError = errors.New("socket connect error")

	// ErrIOError 读写失败
	ErrIOError = errors.New("i/o error")

	// ErrEOF 对端关闭连接
	ErrEOF = errors.New("end of stream")

	// ErrWouldBlock 非阻塞操作暂时无法完成
	ErrWouldBlock = errors.New("operation would block")

	// ErrBufferTooSmall 调用方提供的结果缓冲区不足
	ErrBufferTooSmall = errors.New("result buffer too small")
)

// ============================================================================
//                              通道错误
// ============================================================================

var (
	// ErrChannelReleased 通道已释放
	ErrChannelReleased = errors.New("channel released")

	// ErrUnsupportedService 通道不支持该服务
	ErrUnsupportedService = errors.New("service not supported by channel")
)
