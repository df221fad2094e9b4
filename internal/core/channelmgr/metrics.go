package channelmgr

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "devclient"

// metrics 管理器指标
//
// nil 接收者上的方法均为空操作，未启用指标时无需判空。
type metrics struct {
	channels prometheus.Gauge
	requests prometheus.Counter
	lookups  *prometheus.CounterVec
}

// WithMetrics 在 reg 上注册管理器指标
func WithMetrics(reg prometheus.Registerer) Option {
	return func(m *Manager) error {
		mt, err := newMetrics(reg)
		if err != nil {
			return err
		}
		m.metrics = mt
		return nil
	}
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	mt := &metrics{
		channels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "channels",
			Help:      "Number of registered transport channels.",
		}),
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "bootstrap_requests_total",
			Help:      "Number of bootstrap requests serialized.",
		}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "channel_lookups_total",
			Help:      "Channel lookups by service, partitioned by result.",
		}, []string{"result"}),
	}

	if reg == nil {
		return mt, nil
	}
	for _, c := range []prometheus.Collector{mt.channels, mt.requests, mt.lookups} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return mt, nil
}

func (mt *metrics) setChannels(n int) {
	if mt == nil {
		return
	}
	mt.channels.Set(float64(n))
}

func (mt *metrics) requestSerialized() {
	if mt == nil {
		return
	}
	mt.requests.Inc()
}

// 查找结果标签
const (
	lookupHit     = "hit"
	lookupMiss    = "miss"
	lookupInvalid = "invalid"
)

func (mt *metrics) lookup(result string) {
	if mt == nil {
		return
	}
	mt.lookups.WithLabelValues(result).Inc()
}
