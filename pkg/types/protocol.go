package types

import "fmt"

// ============================================================================
//                              ProtocolID - 传输协议标识
// ============================================================================

// ProtocolID 传输协议标识
//
// 在引导请求中以 {id u32, version u16} 的形式上报。
type ProtocolID struct {
	// ID 协议 ID
	ID uint32

	// Version 协议版本
	Version uint16
}

// 内置传输协议
var (
	// ProtocolTCP 运行期 TCP 通道协议
	ProtocolTCP = ProtocolID{ID: 0x56C8FF92, Version: 1}

	// ProtocolHTTPBootstrap HTTP 引导通道协议
	ProtocolHTTPBootstrap = ProtocolID{ID: 0x3E29F8F7, Version: 1}
)

// String 返回协议的字符串表示
func (p ProtocolID) String() string {
	return fmt.Sprintf("0x%08X/v%d", p.ID, p.Version)
}

// ============================================================================
//                              ChannelID - 通道标识
// ============================================================================

// ChannelID 通道标识
//
// 由通道描述符计算得出，用于注册表去重和查找。
type ChannelID uint32

// String 返回通道标识的字符串表示
func (id ChannelID) String() string {
	return fmt.Sprintf("0x%X", uint32(id))
}
