package platform

import (
	"fmt"

	"github.com/dep2p/go-devclient/pkg/types"
)

// ExtensionForService 返回服务对应的扩展类型
func ExtensionForService(s types.ServiceType) (ExtensionType, bool) {
	switch s {
	case types.ServiceBootstrap:
		return ExtensionBootstrap, true
	case types.ServiceProfile:
		return ExtensionProfile, true
	case types.ServiceUser:
		return ExtensionUser, true
	case types.ServiceEvent:
		return ExtensionEvent, true
	case types.ServiceLogging:
		return ExtensionLogging, true
	case types.ServiceConfiguration:
		return ExtensionConfiguration, true
	case types.ServiceNotification:
		return ExtensionNotification, true
	default:
		return 0, false
	}
}

// EncodeSyncRequest 生成同步请求消息
//
// 消息头之后每个服务一个空负载的扩展头，扩展顺序与 services 一致。
func EncodeSyncRequest(services []types.ServiceType) ([]byte, error) {
	if len(services) == 0 || len(services) > 0xFFFF {
		return nil, fmt.Errorf("%w: %d services", types.ErrBadParam, len(services))
	}

	w := NewWriter(make([]byte, MessageHeaderSize+len(services)*ExtensionHeaderSize))
	err := w.WriteMessageHeader(MessageHeader{
		ProtocolID:      PlatformProtocolID,
		ProtocolVersion: PlatformProtocolVersion,
		ExtensionCount:  uint16(len(services)),
	})
	if err != nil {
		return nil, err
	}

	for _, s := range services {
		ext, ok := ExtensionForService(s)
		if !ok {
			return nil, fmt.Errorf("%w: service %s", types.ErrBadParam, s)
		}
		if err := w.WriteExtensionHeader(ext, 0, 0); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}
