package channelmgr

import (
	"fmt"
	"reflect"

	"github.com/spaolacci/murmur3"

	pkgif "github.com/dep2p/go-devclient/pkg/interfaces"
	"github.com/dep2p/go-devclient/pkg/types"
)

const (
	identitySeed  uint32 = 1
	identityPrime uint32 = 31
)

// ComputeChannelID 计算通道标识
//
// 参与计算的字段依次为：通道句柄、协议查询/服务查询/同步三个行为槽
// （在 Go 中属于同一个方法集，取具体类型名哈希）、释放钩子是否存在。
// 同一通道实例重复注册会产生相同标识；同类型的不同实例句柄不同，可以共存。
//
// 标识只有 32 位，n 个通道中出现碰撞的概率约为 n²/2³³，百个通道时约 1e-6。
// 碰撞由 Manager.Add 顺延标识处理，见 nextChannelID。
func ComputeChannelID(channel pkgif.TransportChannel) (types.ChannelID, error) {
	if isNil(channel) {
		return 0, fmt.Errorf("%w: nil channel", types.ErrBadParam)
	}

	handle := channel.Handle()
	behaviour := murmur3.Sum32([]byte(reflect.TypeOf(channel).String()))

	var release uint32
	if _, ok := channel.(pkgif.Releaser); ok {
		release = 1
	}

	fields := [...]uint32{
		murmur3.Sum32(handle[:]),
		behaviour, // ProtocolID
		behaviour, // SupportedServices
		behaviour, // Sync
		release,
	}

	id := identitySeed
	for _, f := range fields {
		id = identityPrime*id + f
	}
	return types.ChannelID(id), nil
}

// nextChannelID 碰撞时的下一个候选标识
func nextChannelID(id types.ChannelID) types.ChannelID {
	return types.ChannelID(identityPrime*uint32(id) + 1)
}

// sameDescriptor 判断两个通道是否描述同一通道：句柄、具体类型、释放钩子都相同
func sameDescriptor(a, b pkgif.TransportChannel) bool {
	if a.Handle() != b.Handle() || reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	_, ra := a.(pkgif.Releaser)
	_, rb := b.(pkgif.Releaser)
	return ra == rb
}

// isNil 同时识别 nil 接口和包装了 nil 指针的接口
func isNil(x any) bool {
	if x == nil {
		return true
	}
	v := reflect.ValueOf(x)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}
