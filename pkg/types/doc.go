// Package types 定义设备客户端的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - service.go  - ServiceType 逻辑服务枚举
//   - protocol.go - ProtocolID 传输协议标识, ChannelID 通道标识
//   - errors.go   - 公共错误定义
package types
