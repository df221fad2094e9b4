package platform

import "fmt"

const (
	// ExtensionHeaderSize 扩展头长度
	ExtensionHeaderSize = 8

	// MessageHeaderSize 消息头长度
	MessageHeaderSize = 8

	// maxOptions 扩展选项字段为 24 位
	maxOptions = 0xFFFFFF
)

// ExtensionType 扩展类型
type ExtensionType uint8

// 扩展类型定义
const (
	ExtensionBootstrap     ExtensionType = 0x00
	ExtensionMetaData      ExtensionType = 0x01
	ExtensionProfile       ExtensionType = 0x02
	ExtensionUser          ExtensionType = 0x03
	ExtensionLogging       ExtensionType = 0x04
	ExtensionConfiguration ExtensionType = 0x05
	ExtensionNotification  ExtensionType = 0x06
	ExtensionEvent         ExtensionType = 0x07
)

// String 返回扩展类型的字符串表示
func (t ExtensionType) String() string {
	switch t {
	case ExtensionBootstrap:
		return "bootstrap"
	case ExtensionMetaData:
		return "meta-data"
	case ExtensionProfile:
		return "profile"
	case ExtensionUser:
		return "user"
	case ExtensionLogging:
		return "logging"
	case ExtensionConfiguration:
		return "configuration"
	case ExtensionNotification:
		return "notification"
	case ExtensionEvent:
		return "event"
	default:
		return fmt.Sprintf("extension(0x%02X)", uint8(t))
	}
}

// ExtensionHeader 扩展头
type ExtensionHeader struct {
	Type    ExtensionType
	Options uint32 // 低 24 位有效
	Length  uint32
}

// MessageHeader 消息头
type MessageHeader struct {
	ProtocolID      uint32
	ProtocolVersion uint16
	ExtensionCount  uint16
}

// 平台协议标识
const (
	PlatformProtocolID      uint32 = 0x3553C66F
	PlatformProtocolVersion uint16 = 1
)
