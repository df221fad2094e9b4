package logupload

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Decision 上传决策
type Decision int

const (
	// DecisionNoop 不做处理
	DecisionNoop Decision = iota
	// DecisionUpload 需要上传
	DecisionUpload
)

// String 返回决策的字符串表示
func (d Decision) String() string {
	if d == DecisionUpload {
		return "upload"
	}
	return "noop"
}

// StorageStatus 日志存储状态
type StorageStatus struct {
	// RecordCount 未上传的记录数
	RecordCount uint64

	// ConsumedVolume 未上传记录占用的字节数
	ConsumedVolume uint64
}

// Strategy 上传策略
type Strategy interface {
	Decide(status StorageStatus) Decision
}

// PeriodicStrategy 周期上传策略
//
// 距上次上传达到 period 时返回 DecisionUpload，并以当前时间作为新的参考点。
// 参考点从创建时开始计算。
type PeriodicStrategy struct {
	mu sync.Mutex

	clock      clock.Clock
	period     time.Duration
	lastUpload time.Time
}

var _ Strategy = (*PeriodicStrategy)(nil)

// NewPeriodicStrategy 创建周期上传策略
func NewPeriodicStrategy(period time.Duration, clk clock.Clock) *PeriodicStrategy {
	if clk == nil {
		clk = clock.New()
	}
	return &PeriodicStrategy{
		clock:      clk,
		period:     period,
		lastUpload: clk.Now(),
	}
}

// Decide 根据距上次上传的时长做出决策
func (s *PeriodicStrategy) Decide(status StorageStatus) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if now.Sub(s.lastUpload) < s.period {
		return DecisionNoop
	}

	logger.Info("需要上传日志",
		"records", status.RecordCount,
		"volume", status.ConsumedVolume,
		"lastUpload", s.lastUpload,
		"period", s.period)
	s.lastUpload = now
	return DecisionUpload
}

// Period 返回上传周期
func (s *PeriodicStrategy) Period() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.period
}

// SetPeriod 修改上传周期，参考点不变
func (s *PeriodicStrategy) SetPeriod(period time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.period = period
}
