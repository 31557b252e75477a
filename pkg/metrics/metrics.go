package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var HistogramBuckets = []float64{
	// --- Fast responses (0 - 500ms) ---
	25, 50, 75, 100, 150, 200, 300, 400, 500,

	// --- Medium responses around 700ms (500ms - 2s) ---
	750, 1000, 1250, 1500, 1750, 2000,

	// --- Slow responses (2s - 15s) ---
	2500, 3000, 4000, 5000, 7500, 10000, 15000,

	// --- Extended range: covers 60000ms+ (15s - 75s) ---
	20000,  // 20s
	30000,  // 30s
	45000,  // 45s
	60000,  // 60s
	75000,  // 75s
	90000,  // 90s
	120000, // 120s
}

// Metric is a definition for the name, description, type, ID, and
// prometheus.Collector type (i.e. CounterVec, Summary, etc) of each metric
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric associates prometheus.Collector based on Metric.Type
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	var metric prometheus.Collector
	switch m.Type {
	case "counter_vec":
		metric = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
			m.Args,
		)
	case "counter":
		metric = prometheus.NewCounter(
			prometheus.CounterOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
		)
	case "gauge_vec":
		metric = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
			m.Args,
		)
	case "gauge":
		metric = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
		)
	case "histogram_vec":
		metric = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
				Buckets:   HistogramBuckets,
			},
			m.Args,
		)
	case "histogram":
		metric = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
				Buckets:   HistogramBuckets,
			},
		)
	case "summary_vec":
		metric = prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
			m.Args,
		)
	case "summary":
		metric = prometheus.NewSummary(
			prometheus.SummaryOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
		)
	}
	return metric
}

// Register registers the collector built from m, reusing an already
// registered collector of the same name.
func Register(reg prometheus.Registerer, m *Metric, subsystem string) (prometheus.Collector, error) {
	c := NewMetric(m, subsystem)
	if c == nil {
		return nil, fmt.Errorf("unknown metric type %q for %s", m.Type, m.Name)
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			c = are.ExistingCollector
		} else {
			return nil, err
		}
	}
	m.MetricCollector = c
	return c, nil
}

var MetricsGeneratedRows = &Metric{
	ID:          "genRows",
	Name:        "generated_rows_total",
	Description: "Rows produced by the generator, partitioned by table.",
	Type:        "counter_vec",
	Args:        []string{"table"},
}

var MetricsStageDuration = &Metric{
	ID:          "stageDur",
	Name:        "stage_dur_ms",
	Description: "Generation stage latency in milliseconds.",
	Type:        "histogram_vec",
	Args:        []string{"stage"},
}

var MetricsRuns = &Metric{
	ID:          "runs",
	Name:        "runs_total",
	Description: "Generation runs, partitioned by outcome.",
	Type:        "counter_vec",
	Args:        []string{"outcome"},
}

const (
	RefererKey = "X-Referer"

	GeneratorSubsystem = "saasgen"
)

// Generator holds the collectors updated by the generation pipeline.
type Generator struct {
	rows     *prometheus.CounterVec
	stageDur *prometheus.HistogramVec
	runs     *prometheus.CounterVec
}

func NewGenerator(reg prometheus.Registerer) (*Generator, error) {
	rows, err := Register(reg, MetricsGeneratedRows, GeneratorSubsystem)
	if err != nil {
		return nil, err
	}
	stageDur, err := Register(reg, MetricsStageDuration, GeneratorSubsystem)
	if err != nil {
		return nil, err
	}
	runs, err := Register(reg, MetricsRuns, GeneratorSubsystem)
	if err != nil {
		return nil, err
	}
	return &Generator{
		rows:     rows.(*prometheus.CounterVec),
		stageDur: stageDur.(*prometheus.HistogramVec),
		runs:     runs.(*prometheus.CounterVec),
	}, nil
}

func (g *Generator) ObserveStage(stage string, started time.Time) {
	if g == nil {
		return
	}
	g.stageDur.WithLabelValues(stage).Observe(MillisecondsSince(started))
}

func (g *Generator) AddRows(table string, n int) {
	if g == nil {
		return
	}
	g.rows.WithLabelValues(table).Add(float64(n))
}

func (g *Generator) Run(outcome string) {
	if g == nil {
		return
	}
	g.runs.WithLabelValues(outcome).Inc()
}

// MillisecondsSince returns the elapsed time in fractional milliseconds.
func MillisecondsSince(t time.Time) float64 {
	return float64(time.Since(t)) / float64(time.Millisecond)
}

func provideRegisterer() prometheus.Registerer { return prometheus.DefaultRegisterer }

func provideGatherer() prometheus.Gatherer { return prometheus.DefaultGatherer }

var Module = fx.Options(
	fx.Provide(provideRegisterer, provideGatherer),
	fx.Provide(NewGenerator),
)
