package channelmgr

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/multierr"

	pkgif "github.com/dep2p/go-devclient/pkg/interfaces"
	"github.com/dep2p/go-devclient/pkg/types"
)

// entry 注册表条目
type entry struct {
	id      types.ChannelID
	channel pkgif.TransportChannel
}

// ChannelInfo 已注册通道快照
type ChannelInfo struct {
	ID      types.ChannelID
	Channel pkgif.TransportChannel
}

// Manager 传输通道管理器
type Manager struct {
	mu sync.Mutex

	// entries 按注册倒序排列，entries[0] 为最近注册的通道
	entries []entry
	sync    syncInfo

	logger  Logger
	metrics *metrics
}

var _ pkgif.ChannelManager = (*Manager)(nil)

// Logger 管理器使用的日志接口
//
// *slog.Logger 与 log.LazyLogger 都满足该接口；后者每次调用时解析默认 logger。
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Option 管理器选项
type Option func(*Manager) error

// NewManager 创建通道管理器
func NewManager(logger Logger, opts ...Option) (*Manager, error) {
	if isNil(logger) {
		return nil, fmt.Errorf("%w: nil logger", types.ErrBadParam)
	}

	m := &Manager{logger: logger}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Add 注册传输通道
//
// 同一通道已注册时返回 types.ErrAlreadyExists，注册表保持不变。
func (m *Manager) Add(channel pkgif.TransportChannel) (types.ChannelID, error) {
	id, err := ComputeChannelID(channel)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// 相同描述重复注册报错；不同描述的标识碰撞时顺延到下一个空闲标识
	for i := m.indexOf(id); i >= 0; i = m.indexOf(id) {
		if sameDescriptor(m.entries[i].channel, channel) {
			m.logger.Warn("传输通道已存在", "id", id)
			return 0, fmt.Errorf("%w: channel %s", types.ErrAlreadyExists, id)
		}
		m.logger.Debug("通道标识碰撞", "id", id)
		id = nextChannelID(id)
	}

	m.entries = slices.Insert(m.entries, 0, entry{id: id, channel: channel})
	m.sync.upToDate = false
	m.metrics.setChannels(len(m.entries))

	m.logger.Info("传输通道已添加", "id", id)
	return id, nil
}

// Remove 移除传输通道
//
// 通道的释放钩子会被调用；钩子返回的错误只记录日志，不影响移除结果。
func (m *Manager) Remove(id types.ChannelID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		m.logger.Warn("传输通道不存在", "id", id)
		return fmt.Errorf("%w: channel %s", types.ErrNotFound, id)
	}

	e := m.entries[i]
	m.entries = slices.Delete(m.entries, i, i+1)
	m.sync.upToDate = false
	m.metrics.setChannels(len(m.entries))

	if err := release(e); err != nil {
		m.logger.Warn("释放传输通道失败", "id", id, "error", err)
	}

	m.logger.Info("传输通道已移除", "id", id)
	return nil
}

// FindChannelForService 查找支持指定服务的通道
//
// 按注册倒序返回第一个匹配的通道。查询服务列表失败或列表为空的通道被跳过。
// 无效的服务类型直接返回未找到，不遍历注册表。
func (m *Manager) FindChannelForService(service types.ServiceType) (pkgif.TransportChannel, bool) {
	if !service.Valid() {
		m.logger.Warn("无效的服务类型", "service", service)
		m.metrics.lookup(lookupInvalid)
		return nil, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		services, err := e.channel.SupportedServices()
		if err != nil || len(services) == 0 {
			m.logger.Warn("获取通道支持的服务失败", "id", e.id, "error", err)
			continue
		}

		if slices.Contains(services, service) {
			m.logger.Debug("找到服务对应的传输通道", "service", service, "id", e.id)
			m.metrics.lookup(lookupHit)
			return e.channel, true
		}
	}

	m.logger.Warn("未找到服务对应的传输通道", "service", service)
	m.metrics.lookup(lookupMiss)
	return nil, false
}

// Channels 返回已注册通道的快照，顺序与查找顺序一致
func (m *Manager) Channels() []ChannelInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	infos := make([]ChannelInfo, len(m.entries))
	for i, e := range m.entries {
		infos[i] = ChannelInfo{ID: e.id, Channel: e.channel}
	}
	return infos
}

// Len 返回已注册通道数量
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close 释放所有通道并重置引导请求状态
//
// 返回所有释放钩子错误的合并结果。可重复调用。
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs error
	for _, e := range m.entries {
		if err := release(e); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("release channel %s: %w", e.id, err))
		}
	}

	if len(m.entries) > 0 {
		m.logger.Info("通道管理器已关闭", "released", len(m.entries))
	}

	m.entries = nil
	m.sync = syncInfo{}
	m.metrics.setChannels(0)
	return errs
}

// indexOf 返回第一个匹配条目的下标，未找到返回 -1
func (m *Manager) indexOf(id types.ChannelID) int {
	return slices.IndexFunc(m.entries, func(e entry) bool { return e.id == id })
}

func release(e entry) error {
	if r, ok := e.channel.(pkgif.Releaser); ok {
		return r.Release()
	}
	return nil
}
