package transport

import "errors"

var (
	// ErrNoTransport 没有承载指定服务的通道
	ErrNoTransport = errors.New("no transport channel for service")

	// ErrNotExchanger 通道不支持请求交换
	ErrNotExchanger = errors.New("transport channel cannot exchange requests")

	// ErrAlreadyStarted 已启动
	ErrAlreadyStarted = errors.New("transport manager already started")
)
