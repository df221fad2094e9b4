package channelmgr

import (
	"fmt"
	"math"

	"github.com/dep2p/go-devclient/internal/core/platform"
	"github.com/dep2p/go-devclient/pkg/types"
)

const (
	// requestIDSize + channelCountSize
	bootstrapFixedSize = 2 + 2

	// protocol_id u32 + protocol_version u16 + reserved u16
	bootstrapChannelSize = 4 + 2 + 2
)

// syncInfo 引导请求缓存
//
// upToDate 为 true 时，payloadSize 和 channelCount 与当前注册表一致。
type syncInfo struct {
	upToDate     bool
	requestID    uint16
	payloadSize  uint32
	channelCount uint16
}

// BootstrapRequestSize 返回引导请求所需的缓冲区大小（含扩展头）
//
// 注册表为空时返回 0。
func (m *Manager) BootstrapRequestSize() (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestSizeLocked()
}

func (m *Manager) requestSizeLocked() (uint32, error) {
	if m.sync.upToDate {
		if m.sync.channelCount == 0 {
			return 0, nil
		}
		return platform.ExtensionHeaderSize + m.sync.payloadSize, nil
	}

	n := len(m.entries)
	if n == 0 {
		m.sync.payloadSize = 0
		m.sync.channelCount = 0
		return 0, nil
	}
	if n > math.MaxUint16 {
		return 0, fmt.Errorf("%w: %d channels exceed bootstrap request limit", types.ErrBadParam, n)
	}

	size := uint32(platform.ExtensionHeaderSize + bootstrapFixedSize + n*bootstrapChannelSize)

	m.sync.payloadSize = size - platform.ExtensionHeaderSize
	m.sync.channelCount = uint16(n)
	m.sync.upToDate = true
	return size, nil
}

// SerializeBootstrapRequest 将引导请求写入 w
//
// 缓存失效时先重新计算大小。注册表为空时不写入任何内容。
// 任一通道查询协议失败会立即中止，已写入的部分保留在缓冲区中，调用方必须丢弃整个缓冲区。
func (m *Manager) SerializeBootstrapRequest(w *platform.Writer) error {
	if w == nil {
		return fmt.Errorf("%w: nil writer", types.ErrBadParam)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.serializeLocked(w)
}

func (m *Manager) serializeLocked(w *platform.Writer) error {
	if !m.sync.upToDate {
		if _, err := m.requestSizeLocked(); err != nil {
			return err
		}
	}

	if m.sync.payloadSize == 0 || m.sync.channelCount == 0 {
		return nil
	}

	if err := w.WriteExtensionHeader(platform.ExtensionBootstrap, 0, m.sync.payloadSize); err != nil {
		return err
	}

	requestID := m.sync.requestID + 1
	if err := w.WriteUint16(requestID); err != nil {
		return err
	}
	if err := w.WriteUint16(m.sync.channelCount); err != nil {
		return err
	}

	for _, e := range m.entries {
		protocol, err := e.channel.ProtocolID()
		if err != nil {
			m.logger.Error("获取通道协议失败", "id", e.id, "error", err)
			return fmt.Errorf("channel %s protocol id: %w", e.id, err)
		}

		if err := w.WriteUint32(protocol.ID); err != nil {
			return err
		}
		if err := w.WriteUint16(protocol.Version); err != nil {
			return err
		}
		if err := w.WriteUint16(0); err != nil {
			return err
		}
	}

	m.sync.requestID = requestID
	m.metrics.requestSerialized()
	m.logger.Debug("引导请求已序列化", "requestID", requestID, "channels", m.sync.channelCount)
	return nil
}

// BootstrapRequest 计算大小并序列化一次完整的引导请求
//
// 注册表为空时返回 nil, nil。
func (m *Manager) BootstrapRequest() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	size, err := m.requestSizeLocked()
	if err != nil || size == 0 {
		return nil, err
	}

	w := platform.NewWriter(make([]byte, size))
	if err := m.serializeLocked(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// ============================================================================
//                              解码
// ============================================================================

// BootstrapRequest 解码后的引导请求
type BootstrapRequest struct {
	RequestID uint16
	Protocols []types.ProtocolID
}

// DecodeBootstrapRequest 解码引导请求扩展
//
// 与 SerializeBootstrapRequest 的输出逐字节对应，用于服务端解析和校验。
func DecodeBootstrapRequest(b []byte) (*BootstrapRequest, error) {
	r := platform.NewReader(b)

	header, err := r.ReadExtensionHeader()
	if err != nil {
		return nil, err
	}
	if header.Type != platform.ExtensionBootstrap {
		return nil, fmt.Errorf("%w: unexpected extension %s", types.ErrBadParam, header.Type)
	}
	if int64(header.Length) > int64(r.Remaining()) {
		return nil, fmt.Errorf("%w: payload length %d, %d bytes available",
			types.ErrReadFailed, header.Length, r.Remaining())
	}

	requestID, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	count, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}

	if want := uint32(bootstrapFixedSize) + uint32(count)*bootstrapChannelSize; want != header.Length {
		return nil, fmt.Errorf("%w: payload length %d does not match %d channels",
			types.ErrBadParam, header.Length, count)
	}

	req := &BootstrapRequest{
		RequestID: requestID,
		Protocols: make([]types.ProtocolID, 0, count),
	}
	for i := 0; i < int(count); i++ {
		id, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		version, err := r.ReadUint16()
		if err != nil {
			return nil, err
		}
		// reserved
		if _, err := r.ReadUint16(); err != nil {
			return nil, err
		}
		req.Protocols = append(req.Protocols, types.ProtocolID{ID: id, Version: version})
	}
	return req, nil
}
