package metric

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()

	assert.NotNil(t, registry)
	assert.NotNil(t, registry.PrometheusRegistry())
	assert.NotNil(t, registry.CoreMetrics())
}

func TestMetricsRegistry_RegisterCounter(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_counter",
		Help: "A test counter",
	})

	err := registry.RegisterCounter("test-service", "test_counter", counter)
	require.NoError(t, err)

	counter.Inc()

	metricFamilies, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range metricFamilies {
		if mf.GetName() == "test_counter" {
			found = true
			break
		}
	}
	assert.True(t, found, "Counter should be registered in Prometheus registry")
}

func TestMetricsRegistry_DuplicateRegistration(t *testing.T) {
	registry := NewMetricsRegistry()

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_gauge",
		Help: "A test gauge",
	})

	require.NoError(t, registry.RegisterGauge("svc", "test_gauge", gauge))

	other := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_gauge_other",
		Help: "Another test gauge",
	})
	err := registry.RegisterGauge("svc", "test_gauge", other)
	require.Error(t, err, "duplicate service.metric key should be rejected")
}

func TestMetricsRegistry_RegisterCollector(t *testing.T) {
	registry := NewMetricsRegistry()

	value := 7.0
	gaugeFunc := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "scheduler_unprocessed_tasks",
		Help: "Tasks on-ramped but not yet handled",
	}, func() float64 { return value })

	require.NoError(t, registry.RegisterCollector("wiring", "scheduler_unprocessed_tasks", gaugeFunc))

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() == "scheduler_unprocessed_tasks" {
			require.Len(t, mf.GetMetric(), 1)
			assert.Equal(t, 7.0, mf.GetMetric()[0].GetGauge().GetValue())
			return
		}
	}
	t.Fatal("gauge func not gathered")
}

func TestMetricsRegistry_Unregister(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "removable_counter",
		Help: "A removable counter",
	})
	require.NoError(t, registry.RegisterCounter("svc", "removable_counter", counter))

	assert.True(t, registry.Unregister("svc", "removable_counter"))
	assert.False(t, registry.Unregister("svc", "removable_counter"))
}

func TestMetricsRegistry_GenerateDocumentation(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "documented_counter",
		Help: "Counts documented things",
	})
	require.NoError(t, registry.RegisterCounter("svc", "documented_counter", counter))
	counter.Inc()

	doc, err := registry.GenerateDocumentation()
	require.NoError(t, err)
	assert.Contains(t, doc, "documented_counter")
	assert.Contains(t, doc, "Counts documented things")

	// One metric per line, sorted.
	lines := strings.Split(doc, "\n")
	for i := 1; i < len(lines); i++ {
		assert.LessOrEqual(t, lines[i-1], lines[i])
	}
}

func TestMetricsRegistry_ConcurrentRegistration(t *testing.T) {
	registry := NewMetricsRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("concurrent_counter_%d", i)
			counter := prometheus.NewCounter(prometheus.CounterOpts{
				Name: name,
				Help: "A concurrently registered counter",
			})
			assert.NoError(t, registry.RegisterCounter("svc", name, counter))
		}(i)
	}
	wg.Wait()
}
