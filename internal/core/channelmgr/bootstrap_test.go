package channelmgr

import (
	"errors"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-devclient/internal/core/platform"
	"github.com/dep2p/go-devclient/pkg/types"
)

// TestBootstrap_Empty 测试空注册表
func TestBootstrap_Empty(t *testing.T) {
	m := newTestManager(t)

	size, err := m.BootstrapRequestSize()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), size)
	assert.False(t, m.sync.upToDate, "empty registry leaves the cache stale")

	buf := make([]byte, 16)
	w := platform.NewWriter(buf)
	require.NoError(t, m.SerializeBootstrapRequest(w))
	assert.Equal(t, 0, w.Len())

	b, err := m.BootstrapRequest()
	require.NoError(t, err)
	assert.Nil(t, b)
}

// TestBootstrap_SingleChannel 测试单通道请求的字节布局
func TestBootstrap_SingleChannel(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Add(newFakeChannel(0x00000003, types.ServiceProfile))
	require.NoError(t, err)

	size, err := m.BootstrapRequestSize()
	require.NoError(t, err)
	assert.Equal(t, uint32(platform.ExtensionHeaderSize+12), size)

	w := platform.NewWriter(make([]byte, size))
	require.NoError(t, m.SerializeBootstrapRequest(w))

	expected := []byte{
		0x00, 0x00, 0x00, 0x00, // type=bootstrap, options=0
		0x00, 0x00, 0x00, 0x0C, // length=12
		0x00, 0x01, // request_id
		0x00, 0x01, // channel_count
		0x00, 0x00, 0x00, 0x03, // protocol id
		0x00, 0x01, // version
		0x00, 0x00, // reserved
	}
	assert.Equal(t, expected, w.Bytes())
}

// TestBootstrap_PayloadSize 测试 payload = 4 + 8n
func TestBootstrap_PayloadSize(t *testing.T) {
	m := newTestManager(t)

	for n := 1; n <= 6; n++ {
		_, err := m.Add(newFakeChannel(uint32(n), types.ServiceEvent))
		require.NoError(t, err)

		size, err := m.BootstrapRequestSize()
		require.NoError(t, err)
		assert.Equal(t, uint32(platform.ExtensionHeaderSize+4+8*n), size)
		assert.Equal(t, uint16(n), m.sync.channelCount)
		assert.Equal(t, uint32(4+8*n), m.sync.payloadSize)
	}
}

// TestBootstrap_Freshness 测试缓存状态转换
func TestBootstrap_Freshness(t *testing.T) {
	m := newTestManager(t)

	id, err := m.Add(newFakeChannel(1, types.ServiceEvent))
	require.NoError(t, err)
	assert.False(t, m.sync.upToDate)

	size1, err := m.BootstrapRequestSize()
	require.NoError(t, err)
	assert.True(t, m.sync.upToDate)

	// 缓存有效时返回同样的结果
	again, err := m.BootstrapRequestSize()
	require.NoError(t, err)
	assert.Equal(t, size1, again)

	_, err = m.Add(newFakeChannel(2, types.ServiceEvent))
	require.NoError(t, err)
	assert.False(t, m.sync.upToDate)

	size2, err := m.BootstrapRequestSize()
	require.NoError(t, err)
	assert.True(t, m.sync.upToDate)
	assert.Equal(t, size1+8, size2)

	require.NoError(t, m.Remove(id))
	assert.False(t, m.sync.upToDate)

	size3, err := m.BootstrapRequestSize()
	require.NoError(t, err)
	assert.Equal(t, size1, size3)

	// 序列化不改变缓存状态
	_, err = m.BootstrapRequest()
	require.NoError(t, err)
	assert.True(t, m.sync.upToDate)
}

// TestBootstrap_ConsecutiveRequests 测试连续序列化 request_id 递增 1
func TestBootstrap_ConsecutiveRequests(t *testing.T) {
	m := newTestManager(t)
	for i := uint32(1); i <= 3; i++ {
		_, err := m.Add(newFakeChannel(i, types.ServiceUser))
		require.NoError(t, err)
	}

	first, err := m.BootstrapRequest()
	require.NoError(t, err)
	second, err := m.BootstrapRequest()
	require.NoError(t, err)

	r1, err := DecodeBootstrapRequest(first)
	require.NoError(t, err)
	r2, err := DecodeBootstrapRequest(second)
	require.NoError(t, err)

	assert.Equal(t, r1.RequestID+1, r2.RequestID)
	assert.Equal(t, r1.Protocols, r2.Protocols)
	assert.Equal(t, first[:8], second[:8])
	assert.Equal(t, first[10:], second[10:])
}

// TestBootstrap_RequestIDWraps 测试请求序号在 16 位上回绕
func TestBootstrap_RequestIDWraps(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Add(newFakeChannel(1, types.ServiceUser))
	require.NoError(t, err)

	m.sync.requestID = math.MaxUint16 - 1
	b, err := m.BootstrapRequest()
	require.NoError(t, err)
	req, err := DecodeBootstrapRequest(b)
	require.NoError(t, err)
	assert.Equal(t, uint16(math.MaxUint16), req.RequestID)

	b, err = m.BootstrapRequest()
	require.NoError(t, err)
	req, err = DecodeBootstrapRequest(b)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), req.RequestID)
}

// TestBootstrap_TooManyChannels 测试通道数超过 16 位计数时拒绝生成请求
func TestBootstrap_TooManyChannels(t *testing.T) {
	m := newTestManager(t)
	m.entries = make([]entry, math.MaxUint16+1)

	_, err := m.BootstrapRequestSize()
	assert.True(t, errors.Is(err, types.ErrBadParam))

	_, err = m.BootstrapRequest()
	assert.True(t, errors.Is(err, types.ErrBadParam))
	assert.Equal(t, uint16(0), m.sync.requestID)
}

// TestBootstrap_TwoChannelsOrder 测试通道按注册倒序写入
func TestBootstrap_TwoChannelsOrder(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Add(newFakeChannel(1, types.ServiceLogging))
	require.NoError(t, err)
	_, err = m.Add(newFakeChannel(2, types.ServiceLogging))
	require.NoError(t, err)

	b, err := m.BootstrapRequest()
	require.NoError(t, err)

	req, err := DecodeBootstrapRequest(b)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), req.RequestID)
	assert.Equal(t, []types.ProtocolID{{ID: 2, Version: 1}, {ID: 1, Version: 1}}, req.Protocols)
}

// TestBootstrap_SerializeRecomputesStale 测试序列化前强制重新计算
func TestBootstrap_SerializeRecomputesStale(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Add(newFakeChannel(1, types.ServiceLogging))
	require.NoError(t, err)

	_, err = m.BootstrapRequestSize()
	require.NoError(t, err)

	// 注册后未重新计算大小直接序列化
	_, err = m.Add(newFakeChannel(2, types.ServiceLogging))
	require.NoError(t, err)

	w := platform.NewWriter(make([]byte, 64))
	require.NoError(t, m.SerializeBootstrapRequest(w))

	req, err := DecodeBootstrapRequest(w.Bytes())
	require.NoError(t, err)
	assert.Len(t, req.Protocols, 2)
	assert.Equal(t, platform.ExtensionHeaderSize+4+16, w.Len())
}

// TestBootstrap_RemoveLastChannel 测试移除最后一个通道后不再输出
func TestBootstrap_RemoveLastChannel(t *testing.T) {
	m := newTestManager(t)
	id, err := m.Add(newFakeChannel(1, types.ServiceLogging))
	require.NoError(t, err)
	_, err = m.BootstrapRequest()
	require.NoError(t, err)

	require.NoError(t, m.Remove(id))

	w := platform.NewWriter(make([]byte, 64))
	require.NoError(t, m.SerializeBootstrapRequest(w))
	assert.Equal(t, 0, w.Len())
}

// TestBootstrap_ProtocolError 测试协议查询失败中止序列化
func TestBootstrap_ProtocolError(t *testing.T) {
	m := newTestManager(t)

	good := newFakeChannel(1, types.ServiceLogging)
	bad := newFakeChannel(2, types.ServiceLogging)
	errProtocol := errors.New("protocol unavailable")
	bad.protocolErr = errProtocol

	_, err := m.Add(good)
	require.NoError(t, err)
	_, err = m.Add(bad)
	require.NoError(t, err)

	w := platform.NewWriter(make([]byte, 64))
	err = m.SerializeBootstrapRequest(w)
	assert.True(t, errors.Is(err, errProtocol))
	// 扩展头 + request_id + channel_count 已写入
	assert.Equal(t, platform.ExtensionHeaderSize+4, w.Len())

	_, err = m.BootstrapRequest()
	assert.True(t, errors.Is(err, errProtocol))

	bad.protocolErr = nil
	b, err := m.BootstrapRequest()
	require.NoError(t, err)
	req, err := DecodeBootstrapRequest(b)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), req.RequestID, "failed attempts do not consume request ids")
}

func TestBootstrap_WriterTooSmall(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Add(newFakeChannel(1, types.ServiceLogging))
	require.NoError(t, err)

	err = m.SerializeBootstrapRequest(platform.NewWriter(make([]byte, 10)))
	assert.True(t, errors.Is(err, types.ErrWriteFailed))

	err = m.SerializeBootstrapRequest(nil)
	assert.True(t, errors.Is(err, types.ErrBadParam))
}

// TestDecodeBootstrapRequest_Invalid 测试解码异常输入
func TestDecodeBootstrapRequest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{"truncated header", []byte{0x00, 0x00}, types.ErrReadFailed},
		{"wrong extension", []byte{0x04, 0, 0, 0, 0, 0, 0, 4, 0, 1, 0, 0}, types.ErrBadParam},
		{"length exceeds data", []byte{0x00, 0, 0, 0, 0, 0, 0, 12, 0, 1, 0, 1}, types.ErrReadFailed},
		{"count mismatch", []byte{0x00, 0, 0, 0, 0, 0, 0, 4, 0, 1, 0, 1}, types.ErrBadParam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBootstrapRequest(tt.in)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

// TestManager_Metrics 测试指标
func TestManager_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newTestManager(t, WithMetrics(reg))

	a := newFakeChannel(1, types.ServiceLogging)
	_, err := m.Add(a)
	require.NoError(t, err)
	_, err = m.Add(newFakeChannel(2, types.ServiceEvent))
	require.NoError(t, err)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.metrics.channels))

	_, ok := m.FindChannelForService(types.ServiceLogging)
	require.True(t, ok)
	_, ok = m.FindChannelForService(types.ServiceNotification)
	require.False(t, ok)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.metrics.lookups.WithLabelValues("hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.metrics.lookups.WithLabelValues("miss")))

	_, ok = m.FindChannelForService(types.ServiceType(42))
	require.False(t, ok)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.metrics.lookups.WithLabelValues("invalid")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.metrics.lookups.WithLabelValues("miss")))

	_, err = m.BootstrapRequest()
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.metrics.requests))

	require.NoError(t, m.Close())
	assert.Equal(t, float64(0), testutil.ToFloat64(m.metrics.channels))

	// 重复注册同一 Registerer 失败
	_, err = NewManager(m.logger, WithMetrics(reg))
	assert.Error(t, err)
}
