package tcp

import "errors"

var (
	// ErrNotConnected 通道未连接
	ErrNotConnected = errors.New("tcp channel not connected")

	// ErrDialTimeout 连接超时
	ErrDialTimeout = errors.New("tcp channel dial timeout")
)
