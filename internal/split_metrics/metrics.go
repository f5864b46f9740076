package split_metrics

import (
	"record-splitter/internal/partitioner"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const namespace = "record_splitter"

type Metrics struct {
	registry *prometheus.Registry

	inputRecords    prometheus.Counter
	excludedRecords prometheus.Counter
	sets            *prometheus.CounterVec
	groupRecords    *prometheus.GaugeVec
	largestSet      prometheus.Gauge
	publishFailures prometheus.Counter
}

// NewMetrics создаёт собственный реестр и регистрирует в нём метрики прогона.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		inputRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_records_total",
			Help:      "Records read from the record source.",
		}),
		excludedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "excluded_records_total",
			Help:      "Records removed by the exclusion filter.",
		}),
		sets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sets_total",
			Help:      "Sets produced, by group and split policy.",
		}, []string{"group", "mode"}),
		groupRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "group_records",
			Help:      "Records assigned to each group.",
		}, []string{"group"}),
		largestSet: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "largest_set_records",
			Help:      "Record count of the largest produced set.",
		}),
		publishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_failures_total",
			Help:      "Sets that could not be written to their sink.",
		}),
	}

	collectors := []prometheus.Collector{
		m.inputRecords,
		m.excludedRecords,
		m.sets,
		m.groupRecords,
		m.largestSet,
		m.publishFailures,
	}
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			zap.L().Error(err.Error())
			return nil, err
		}
	}

	return m, nil
}

// ObserveInput учитывает прочитанные и исключённые записи.
func (m *Metrics) ObserveInput(input, excluded int) {
	m.inputRecords.Add(float64(input))
	m.excludedRecords.Add(float64(excluded))
}

// ObserveGroup фиксирует количество записей, попавших в группу.
func (m *Metrics) ObserveGroup(group string, records int) {
	m.groupRecords.WithLabelValues(group).Set(float64(records))
}

// ObserveResult учитывает наборы результата разбиения.
func (m *Metrics) ObserveResult(res *partitioner.Result) {
	largest := 0
	for _, s := range res.Sets {
		m.sets.WithLabelValues(s.Group, modeLabel(s)).Inc()
		largest = max(largest, len(s.Records))
	}
	m.largestSet.Set(float64(largest))
}

func (m *Metrics) ObservePublishFailure() {
	m.publishFailures.Inc()
}

// WriteFile сохраняет метрики в textfile-формате node_exporter.
func (m *Metrics) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		zap.L().Error(err.Error())
		return err
	}
	return nil
}

func modeLabel(s partitioner.Set) string {
	if s.Mode == "" {
		return "none"
	}
	return string(s.Mode)
}
