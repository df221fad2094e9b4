package types

import (
	"fmt"
	"strings"
)

// ============================================================================
//                              ServiceType - 逻辑服务
// ============================================================================

// ServiceType 逻辑服务类型
//
// 每个服务通过某个传输通道与服务端交换数据。
type ServiceType uint8

const (
	// ServiceBootstrap 引导服务
	ServiceBootstrap ServiceType = iota
	// ServiceProfile 终端 Profile 服务
	ServiceProfile
	// ServiceUser 用户服务
	ServiceUser
	// ServiceEvent 事件服务
	ServiceEvent
	// ServiceLogging 日志上传服务
	ServiceLogging
	// ServiceConfiguration 配置服务
	ServiceConfiguration
	// ServiceNotification 通知服务
	ServiceNotification
)

var serviceNames = [...]string{
	ServiceBootstrap:     "bootstrap",
	ServiceProfile:       "profile",
	ServiceUser:          "user",
	ServiceEvent:         "event",
	ServiceLogging:       "logging",
	ServiceConfiguration: "configuration",
	ServiceNotification:  "notification",
}

// String 返回服务的字符串表示
func (s ServiceType) String() string {
	if int(s) < len(serviceNames) {
		return serviceNames[s]
	}
	return fmt.Sprintf("service(%d)", uint8(s))
}

// Valid 检查服务类型是否已定义
func (s ServiceType) Valid() bool {
	return int(s) < len(serviceNames)
}

// ParseServiceType 从字符串解析服务类型（不区分大小写）
func ParseServiceType(s string) (ServiceType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range serviceNames {
		if n == name {
			return ServiceType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown service %q", ErrBadParam, s)
}

// AllServices 返回所有已定义的服务
func AllServices() []ServiceType {
	services := make([]ServiceType, len(serviceNames))
	for i := range serviceNames {
		services[i] = ServiceType(i)
	}
	return services
}

// OperationServices 返回除引导服务外的所有服务
//
// 运行期通道（例如 TCP）默认承载这些服务。
func OperationServices() []ServiceType {
	return AllServices()[1:]
}
