// monitor/monitor.go
package monitor

import (
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/arl/statsviz"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wfunc/mahjongtable/logger"
)

type Metrics struct {
	EventsReceived       *prometheus.CounterVec
	SceneInitializations prometheus.Counter
	InitFailures         prometheus.Counter
	DuplicateInits       prometheus.Counter
	TileEntities         *prometheus.GaugeVec
	SceneInitialized     prometheus.Gauge
	EventLatency         prometheus.Histogram
}

func NewMetrics(namespace string, registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_events_received_total",
			Help:      "Number of state-sync events received, by event name",
		}, []string{"event"}),
		SceneInitializations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scene_initializations_total",
			Help:      "Number of completed scene constructions",
		}),
		InitFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scene_init_failures_total",
			Help:      "Number of aborted scene construction attempts",
		}),
		DuplicateInits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scene_init_ignored_total",
			Help:      "Qualifying events that arrived after the scene was built",
		}),
		TileEntities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tile_entities",
			Help:      "Live tile entities, by group",
		}, []string{"group"}),
		SceneInitialized: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scene_initialized",
			Help:      "1 once the scene has been built",
		}),
		EventLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_handle_seconds",
			Help:      "State-sync event handling latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}

	registerer.MustRegister(
		m.EventsReceived,
		m.SceneInitializations,
		m.InitFailures,
		m.DuplicateInits,
		m.TileEntities,
		m.SceneInitialized,
		m.EventLatency,
	)

	return m
}

type Monitor struct {
	metrics     *Metrics
	registry    *prometheus.Registry
	startTime   time.Time
	eventCount  int64
	mutex       sync.Mutex
}

// expvar 名称全局唯一，只发布第一个 Monitor
var publishOnce sync.Once

// NewMonitor 使用独立的 registry，便于同一进程内创建多个实例
func NewMonitor(namespace string) *Monitor {
	registry := prometheus.NewRegistry()
	return &Monitor{
		metrics:   NewMetrics(namespace, registry),
		registry:  registry,
		startTime: time.Now(),
	}
}

func (m *Monitor) Metrics() *Metrics {
	return m.metrics
}

// Handler returns the HTTP mux serving /metrics and /debug/statsviz/.
func (m *Monitor) Handler() (http.Handler, error) {
	publishOnce.Do(func() {
		expvar.Publish("uptime", expvar.Func(func() interface{} {
			return time.Since(m.startTime).Seconds()
		}))
		expvar.Publish("state_events", expvar.Func(func() interface{} {
			m.mutex.Lock()
			defer m.mutex.Unlock()
			return m.eventCount
		}))
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.Handle("/debug/vars", expvar.Handler())
	if err := statsviz.Register(mux); err != nil {
		return nil, err
	}
	return mux, nil
}

func (m *Monitor) StartServer(addr string) error {
	handler, err := m.Handler()
	if err != nil {
		return err
	}

	go func() {
		logger.Log.Infof("Monitor listening on %s", addr)
		if err := http.ListenAndServe(addr, handler); err != nil {
			logger.Log.Errorf("Monitor server stopped: %v", err)
		}
	}()
	return nil
}

func (m *Monitor) IncEvent(name string) {
	m.metrics.EventsReceived.WithLabelValues(name).Inc()
	m.mutex.Lock()
	m.eventCount++
	m.mutex.Unlock()
}

func (m *Monitor) ObserveEventLatency(duration time.Duration) {
	m.metrics.EventLatency.Observe(duration.Seconds())
}

func (m *Monitor) SceneBuilt(wallTiles, handTiles int) {
	m.metrics.SceneInitializations.Inc()
	m.metrics.SceneInitialized.Set(1)
	m.metrics.TileEntities.WithLabelValues("wall").Set(float64(wallTiles))
	m.metrics.TileEntities.WithLabelValues("hand").Set(float64(handTiles))
}

func (m *Monitor) SceneFailed() {
	m.metrics.InitFailures.Inc()
}

func (m *Monitor) SceneIgnored() {
	m.metrics.DuplicateInits.Inc()
}
