// Package interfaces 定义设备客户端的公共接口
//
// 接口文件与实现目录一一对应：
//   - transport.go - 传输通道能力描述与通道管理器（internal/core/channelmgr）
//
// 具体实现位于 internal/ 目录，上层代码只依赖本包中的接口。
package interfaces
