// Package interfaces 定义设备客户端公共接口
//
// 本文件定义 TransportChannel 接口，抽象具体的传输通道实现。
package interfaces

import (
	"github.com/google/uuid"

	"github.com/dep2p/go-devclient/pkg/types"
)

// TransportChannel 传输通道能力描述
//
// 任何具体传输（TCP、HTTP 引导等）必须实现该接口才能注册到通道管理器。
type TransportChannel interface {
	// Handle 返回通道上下文句柄
	//
	// 句柄由通道实现持有，在通道生命周期内保持不变；
	// 管理器只引用它，从不复制或释放。
	Handle() uuid.UUID

	// ProtocolID 返回通道使用的传输协议
	ProtocolID() (types.ProtocolID, error)

	// SupportedServices 返回通道支持的服务列表
	//
	// 每次调用重新生成，调用方不应缓存。
	SupportedServices() ([]types.ServiceType, error)

	// Sync 为指定服务触发一次同步
	Sync(services []types.ServiceType) error
}

// Releaser 通道释放钩子（可选）
//
// 通道被移除或管理器关闭时调用且只调用一次。
type Releaser interface {
	Release() error
}

// ChannelFinder 按服务查找通道
type ChannelFinder interface {
	// FindChannelForService 返回最近注册且支持该服务的通道
	FindChannelForService(service types.ServiceType) (TransportChannel, bool)
}

// ChannelManager 通道管理器接口
type ChannelManager interface {
	ChannelFinder

	// Add 注册通道，返回通道标识
	Add(channel TransportChannel) (types.ChannelID, error)

	// Remove 移除通道并调用其释放钩子
	Remove(id types.ChannelID) error

	// BootstrapRequestSize 返回引导请求所需的缓冲区大小
	BootstrapRequestSize() (uint32, error)

	// BootstrapRequest 生成一次完整的引导请求
	BootstrapRequest() ([]byte, error)

	// Close 释放所有通道
	Close() error
}
